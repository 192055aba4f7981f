// Package automation manages the connection to a running Visual Studio
// instance and exposes typed operations over its automation object model.
package automation

import (
	"errors"
	"fmt"
	"log"
)

var (
	// ErrNotConnected means no running IDE instance could be resolved.
	ErrNotConnected = errors.New("no Visual Studio instance found")
	// ErrPaneNotFound means no Output window pane matched the requested name.
	ErrPaneNotFound = errors.New("output pane not found")
	// ErrNoSolution means the IDE has no solution open.
	ErrNoSolution = errors.New("no solution is open")
)

// Connector owns the single cached Handle of the process. Every operation
// runs on the Executor, so the handle is only ever touched from one thread.
type Connector struct {
	resolver Resolver
	exec     Executor
	progIDs  []string
	logger   *log.Logger

	// Accessed only on the executor.
	handle      Handle
	lastID      string
	unreachable bool
}

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the logger for connection state changes.
func WithLogger(l *log.Logger) Option {
	return func(c *Connector) {
		c.logger = l
	}
}

// NewConnector returns a Connector that resolves handles by trying progIDs
// in order.
func NewConnector(r Resolver, exec Executor, progIDs []string, opts ...Option) *Connector {
	c := &Connector{
		resolver: r,
		exec:     exec,
		progIDs:  progIDs,
		logger:   log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// acquire returns the cached handle if it still answers the probe, and
// otherwise resolves a new one. It returns nil when no instance is running.
func (c *Connector) acquire() Handle {
	if c.handle != nil {
		if _, err := c.handle.Version(); err == nil {
			return c.handle
		}
		c.logger.Printf("lost connection to %s, reconnecting", c.lastID)
		c.handle.Release()
		c.handle = nil
	}

	var lastErr error
	for _, id := range c.progIDs {
		h, err := c.resolver.Resolve(id)
		if err != nil || h == nil {
			lastErr = err
			continue
		}
		c.logger.Printf("connected to %s", id)
		c.handle = h
		c.lastID = id
		c.unreachable = false
		return h
	}

	if !c.unreachable {
		c.logger.Printf("no Visual Studio instance found (tried %v): %v", c.progIDs, lastErr)
		c.unreachable = true
	}
	return nil
}

// run acquires a handle and calls fn with it, all on the executor.
func (c *Connector) run(fn func(h Handle) error) error {
	var err error
	if xerr := c.exec.Do(func() {
		h := c.acquire()
		if h == nil {
			err = ErrNotConnected
			return
		}
		err = fn(h)
	}); xerr != nil {
		return xerr
	}
	return err
}

// Connected reports whether a running instance can be reached.
func (c *Connector) Connected() bool {
	return c.run(func(Handle) error { return nil }) == nil
}

// Close releases the cached handle.
func (c *Connector) Close() error {
	return c.exec.Do(func() {
		if c.handle != nil {
			c.handle.Release()
			c.handle = nil
		}
	})
}

// PaneNames lists the Output window panes.
func (c *Connector) PaneNames() ([]string, error) {
	var names []string
	err := c.run(func(h Handle) error {
		var err error
		names, err = h.PaneNames()
		if err != nil {
			return fmt.Errorf("listing output panes: %w", err)
		}
		return nil
	})
	return names, err
}

// ReadPane returns the text of the first pane whose name contains name,
// ignoring case, truncated to the last maxLines lines. maxLines <= 0 returns
// everything.
func (c *Connector) ReadPane(name string, maxLines int) (string, error) {
	var text string
	err := c.run(func(h Handle) error {
		names, err := h.PaneNames()
		if err != nil {
			return fmt.Errorf("listing output panes: %w", err)
		}
		idx := MatchPane(names, name)
		if idx < 0 {
			return ErrPaneNotFound
		}
		full, err := h.PaneText(idx)
		if err != nil {
			return fmt.Errorf("reading pane %q: %w", names[idx], err)
		}
		text = Truncate(full, maxLines)
		return nil
	})
	return text, err
}

// ErrorItems returns the Error List with a severity on every item.
func (c *Connector) ErrorItems() ([]ErrorItem, error) {
	var items []ErrorItem
	err := c.run(func(h Handle) error {
		var err error
		items, err = h.ErrorItems()
		if err != nil {
			return fmt.Errorf("reading error list: %w", err)
		}
		for i := range items {
			if items[i].Severity == "" {
				items[i].Severity = inferSeverity(items[i].Description)
			}
		}
		return nil
	})
	return items, err
}

// SolutionInfo describes the open solution, or returns ErrNoSolution.
func (c *Connector) SolutionInfo() (*SolutionInfo, error) {
	var info *SolutionInfo
	err := c.run(func(h Handle) error {
		path, projects, err := h.Solution()
		if err != nil {
			return fmt.Errorf("reading solution: %w", err)
		}
		if path == "" {
			return ErrNoSolution
		}
		info = &SolutionInfo{
			SolutionPath: path,
			SolutionName: BaseName(path),
			Projects:     []string{},
		}
		for _, p := range projects {
			if p != "" {
				info.Projects = append(info.Projects, p)
			}
		}
		return nil
	})
	return info, err
}

// BuildSolution builds the open solution. With wait it reports the outcome;
// otherwise it only reports that the build started.
func (c *Connector) BuildSolution(wait bool) (BuildResult, error) {
	var res BuildResult
	err := c.run(func(h Handle) error {
		path, err := h.SolutionFile()
		if err != nil {
			return fmt.Errorf("reading solution: %w", err)
		}
		if path == "" {
			res = BuildResult{Message: "No solution is open"}
			return nil
		}

		failed, err := h.Build(wait)
		if err != nil {
			return fmt.Errorf("building solution: %w", err)
		}
		switch {
		case !wait:
			res = BuildResult{Success: true, Message: "Build started"}
		case failed == 0:
			res = BuildResult{Success: true, Message: "Build succeeded"}
		default:
			res = BuildResult{ErrorCount: failed, Message: fmt.Sprintf("Build failed with %d error(s)", failed)}
		}
		return nil
	})
	return res, err
}

// DebuggerState reports the debugger mode and, at a breakpoint, the current
// location.
func (c *Connector) DebuggerState() (DebuggerState, error) {
	var state DebuggerState
	err := c.run(func(h Handle) error {
		mode, err := h.DebugMode()
		if err != nil {
			return fmt.Errorf("reading debugger mode: %w", err)
		}
		var frame StackFrame
		if mode == BreakMode {
			// A frame that cannot be read still reports break mode.
			frame, _ = h.CurrentFrame()
		}
		state = newDebuggerState(mode, frame)
		return nil
	})
	return state, err
}

// StartDebugging starts a debugging session, or continues if stopped at a
// breakpoint.
func (c *Connector) StartDebugging() (string, error) {
	var msg string
	err := c.run(func(h Handle) error {
		mode, err := h.DebugMode()
		if err != nil {
			return fmt.Errorf("reading debugger mode: %w", err)
		}
		switch mode {
		case RunMode:
			msg = "Already running"
			return nil
		case BreakMode:
			msg = "Continued from breakpoint"
		default:
			msg = "Started debugging"
		}
		if err := h.Go(); err != nil {
			return fmt.Errorf("starting debugger: %w", err)
		}
		return nil
	})
	return msg, err
}

// StartWithoutDebugging launches the startup project without the debugger.
func (c *Connector) StartWithoutDebugging() (string, error) {
	err := c.run(func(h Handle) error {
		if err := h.ExecuteCommand("Debug.StartWithoutDebugging"); err != nil {
			return fmt.Errorf("starting without debugging: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return "Started without debugging", nil
}

// ContinueDebugging resumes execution from a breakpoint.
func (c *Connector) ContinueDebugging() (string, error) {
	var msg string
	err := c.run(func(h Handle) error {
		mode, err := h.DebugMode()
		if err != nil {
			return fmt.Errorf("reading debugger mode: %w", err)
		}
		if mode != BreakMode {
			msg = fmt.Sprintf("Not at a breakpoint (%s)", newDebuggerState(mode, StackFrame{}).Message)
			return nil
		}
		if err := h.Go(); err != nil {
			return fmt.Errorf("continuing: %w", err)
		}
		msg = "Continued from breakpoint"
		return nil
	})
	return msg, err
}

// StopDebugging ends the current debugging session.
func (c *Connector) StopDebugging() (string, error) {
	var msg string
	err := c.run(func(h Handle) error {
		mode, err := h.DebugMode()
		if err != nil {
			return fmt.Errorf("reading debugger mode: %w", err)
		}
		if mode == DesignMode {
			msg = "Not currently debugging"
			return nil
		}
		if err := h.Stop(); err != nil {
			return fmt.Errorf("stopping debugger: %w", err)
		}
		msg = "Stopped debugging"
		return nil
	})
	return msg, err
}

// CallStack returns the current thread's frames. It is empty unless the
// debugger is stopped at a breakpoint.
func (c *Connector) CallStack() ([]StackFrame, error) {
	frames := []StackFrame{}
	err := c.run(func(h Handle) error {
		mode, err := h.DebugMode()
		if err != nil {
			return fmt.Errorf("reading debugger mode: %w", err)
		}
		if mode != BreakMode {
			return nil
		}
		raw, err := h.StackFrames()
		if err != nil {
			return fmt.Errorf("reading call stack: %w", err)
		}
		for _, f := range raw {
			f.FileName = BaseName(f.FileName)
			frames = append(frames, f)
		}
		return nil
	})
	return frames, err
}

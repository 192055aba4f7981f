// Package automationtest provides an in-memory IDE for tests.
package automationtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deixis/vsbridge/internal/automation"
)

// ErrNotRunning is returned by Resolver for unknown ProgIDs.
var ErrNotRunning = errors.New("operation unavailable: no active object")

// Pane is one Output window pane.
type Pane struct {
	Name string
	Text string
}

// IDE is a fake automation handle. Set fields before handing it to a
// Connector; every method reads them under mu.
type IDE struct {
	VersionString string
	Panes         []Pane
	Errors        []automation.ErrorItem
	SolutionPath  string
	Projects      []string
	FailedBuilds  int
	Mode          automation.DebugMode
	Frame         automation.StackFrame
	Frames        []automation.StackFrame

	// ProbeErr makes Version fail, simulating a closed IDE.
	ProbeErr error
	// CallErr makes every call other than Version fail.
	CallErr error
	// ProjectsErr makes project enumeration fail while the solution path
	// still reads.
	ProjectsErr error

	mu       sync.Mutex
	Probes   int
	Builds   []bool
	GoCalls  int
	Stops    int
	Commands []string
	Released bool
}

var _ automation.Handle = (*IDE)(nil)

// NewIDE returns an IDE in design mode with no solution.
func NewIDE() *IDE {
	return &IDE{VersionString: "18.0", Mode: automation.DesignMode}
}

func (f *IDE) Version() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Probes++
	if f.ProbeErr != nil {
		return "", f.ProbeErr
	}
	return f.VersionString, nil
}

func (f *IDE) PaneNames() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return nil, f.CallErr
	}
	names := make([]string, len(f.Panes))
	for i, p := range f.Panes {
		names[i] = p.Name
	}
	return names, nil
}

func (f *IDE) PaneText(index int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return "", f.CallErr
	}
	if index < 0 || index >= len(f.Panes) {
		return "", fmt.Errorf("pane index %d out of range", index)
	}
	return f.Panes[index].Text, nil
}

func (f *IDE) ErrorItems() ([]automation.ErrorItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return nil, f.CallErr
	}
	return append([]automation.ErrorItem(nil), f.Errors...), nil
}

func (f *IDE) Solution() (string, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return "", nil, f.CallErr
	}
	if f.ProjectsErr != nil && f.SolutionPath != "" {
		return "", nil, f.ProjectsErr
	}
	return f.SolutionPath, append([]string(nil), f.Projects...), nil
}

func (f *IDE) SolutionFile() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return "", f.CallErr
	}
	return f.SolutionPath, nil
}

func (f *IDE) Build(wait bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return 0, f.CallErr
	}
	f.Builds = append(f.Builds, wait)
	if !wait {
		return 0, nil
	}
	return f.FailedBuilds, nil
}

func (f *IDE) DebugMode() (automation.DebugMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return "", f.CallErr
	}
	return f.Mode, nil
}

func (f *IDE) CurrentFrame() (automation.StackFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return automation.StackFrame{}, f.CallErr
	}
	return f.Frame, nil
}

func (f *IDE) StackFrames() ([]automation.StackFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return nil, f.CallErr
	}
	return append([]automation.StackFrame(nil), f.Frames...), nil
}

func (f *IDE) Go() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return f.CallErr
	}
	f.GoCalls++
	f.Mode = automation.RunMode
	return nil
}

func (f *IDE) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return f.CallErr
	}
	f.Stops++
	f.Mode = automation.DesignMode
	return nil
}

func (f *IDE) ExecuteCommand(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CallErr != nil {
		return f.CallErr
	}
	f.Commands = append(f.Commands, name)
	return nil
}

func (f *IDE) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Released = true
}

// SetMode switches the debugger mode of a running fake.
func (f *IDE) SetMode(m automation.DebugMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Mode = m
}

// Resolver resolves ProgIDs to fake IDEs and records every attempt.
type Resolver struct {
	mu        sync.Mutex
	instances map[string]*IDE
	attempts  []string
}

// NewResolver returns a Resolver with no running instances.
func NewResolver() *Resolver {
	return &Resolver{instances: make(map[string]*IDE)}
}

// Register makes ide resolvable under progID.
func (r *Resolver) Register(progID string, ide *IDE) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[progID] = ide
}

// Unregister removes progID, as if the instance exited.
func (r *Resolver) Unregister(progID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, progID)
}

// Resolve implements automation.Resolver.
func (r *Resolver) Resolve(progID string) (automation.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, progID)
	ide, ok := r.instances[progID]
	if !ok {
		return nil, fmt.Errorf("resolving %s: %w", progID, ErrNotRunning)
	}
	return ide, nil
}

// Attempts returns the ProgIDs passed to Resolve, in order.
func (r *Resolver) Attempts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.attempts...)
}

// Inline is an automation.Executor that runs calls on the caller's goroutine.
type Inline struct{}

func (Inline) Do(fn func()) error {
	fn()
	return nil
}

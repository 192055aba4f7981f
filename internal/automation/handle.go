package automation

// Handle is a live reference to one running IDE's automation surface.
// Implementations are not safe for concurrent use; the Connector calls them
// only from its executor.
type Handle interface {
	// Version is the cheap probe used to validate a cached handle.
	Version() (string, error)

	// PaneNames lists Output window panes in enumeration order.
	PaneNames() ([]string, error)
	// PaneText returns the full text of the pane at index (0-based,
	// enumeration order).
	PaneText(index int) (string, error)

	// ErrorItems lists the Error List. Severity is empty when the object
	// model exposes no error level for an item.
	ErrorItems() ([]ErrorItem, error)

	// Solution returns the open solution's full path (empty if none is
	// open) and its project names.
	Solution() (path string, projects []string, err error)
	// SolutionFile returns the open solution's full path without
	// enumerating its projects.
	SolutionFile() (string, error)
	// Build builds the solution. When wait is true it blocks until the build
	// finishes and returns the number of projects that failed.
	Build(wait bool) (failed int, err error)

	DebugMode() (DebugMode, error)
	// CurrentFrame is valid only in BreakMode.
	CurrentFrame() (StackFrame, error)
	// StackFrames returns the current thread's frames. Unreadable fields are
	// left at their zero value.
	StackFrames() ([]StackFrame, error)
	// Go resumes or starts debugging.
	Go() error
	// Stop ends the debugging session.
	Stop() error
	// ExecuteCommand runs a named IDE command.
	ExecuteCommand(name string) error

	// Release drops the reference. The handle is unusable afterwards.
	Release()
}

// Resolver finds a running IDE by a well-known identifier. It never
// launches a new instance.
type Resolver interface {
	Resolve(progID string) (Handle, error)
}

// Executor runs fn on the thread that owns the automation objects and
// waits for it to return.
type Executor interface {
	Do(fn func()) error
}

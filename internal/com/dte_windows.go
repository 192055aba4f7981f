//go:build windows

package com

import (
	"errors"
	"fmt"
	"strconv"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/deixis/vsbridge/internal/automation"
)

// dbgDebugMode values.
const (
	dbgDesignMode = 1
	dbgBreakMode  = 2
	dbgRunMode    = 3
)

// dte implements automation.Handle over the late-bound DTE2 object.
type dte struct {
	disp *ole.IDispatch
}

var _ automation.Handle = (*dte)(nil)

func (d *dte) Version() (string, error) {
	return getString(d.disp, "Version")
}

func (d *dte) PaneNames() ([]string, error) {
	panes, err := getDispatch(d.disp, "ToolWindows", "OutputWindow", "OutputWindowPanes")
	if err != nil {
		return nil, err
	}
	defer panes.Release()

	var names []string
	err = eachItem(panes, func(_ int, pane *ole.IDispatch) error {
		name, err := getString(pane, "Name")
		if err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	return names, err
}

func (d *dte) PaneText(index int) (string, error) {
	panes, err := getDispatch(d.disp, "ToolWindows", "OutputWindow", "OutputWindowPanes")
	if err != nil {
		return "", err
	}
	defer panes.Release()

	pane, err := itemAt(panes, index)
	if err != nil {
		return "", err
	}
	defer pane.Release()

	doc, err := getDispatch(pane, "TextDocument")
	if err != nil {
		return "", err
	}
	defer doc.Release()

	start, err := getDispatch(doc, "StartPoint")
	if err != nil {
		return "", err
	}
	defer start.Release()

	end, err := getDispatch(doc, "EndPoint")
	if err != nil {
		return "", err
	}
	defer end.Release()

	ev, err := oleutil.CallMethod(start, "CreateEditPoint")
	if err != nil {
		return "", fmt.Errorf("CreateEditPoint: %w", err)
	}
	edit := ev.ToIDispatch()
	if edit == nil {
		return "", errors.New("CreateEditPoint returned no object")
	}
	defer edit.Release()

	tv, err := oleutil.CallMethod(edit, "GetText", end)
	if err != nil {
		return "", fmt.Errorf("GetText: %w", err)
	}
	defer tv.Clear()
	return tv.ToString(), nil
}

func (d *dte) ErrorItems() ([]automation.ErrorItem, error) {
	list, err := getDispatch(d.disp, "ToolWindows", "ErrorList", "ErrorItems")
	if err != nil {
		return nil, err
	}
	defer list.Release()

	items := []automation.ErrorItem{}
	err = eachItem(list, func(_ int, it *ole.IDispatch) error {
		desc, err := getString(it, "Description")
		if err != nil {
			return err
		}
		item := automation.ErrorItem{Description: desc}
		item.FileName, _ = getString(it, "FileName")
		item.Line, _ = getInt(it, "Line")
		item.Column, _ = getInt(it, "Column")
		item.Project, _ = getString(it, "Project")
		if level, err := getInt(it, "ErrorLevel"); err == nil {
			item.Severity = severityFromLevel(level)
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func (d *dte) Solution() (string, []string, error) {
	sln, err := getDispatch(d.disp, "Solution")
	if err != nil {
		return "", nil, err
	}
	defer sln.Release()

	path, err := getString(sln, "FullName")
	if err != nil || path == "" {
		return "", nil, err
	}

	projects, err := getDispatch(sln, "Projects")
	if err != nil {
		return "", nil, err
	}
	defer projects.Release()

	var names []string
	err = eachItem(projects, func(_ int, p *ole.IDispatch) error {
		// Unloaded projects fail to report a name; they are listed as empty.
		name, _ := getString(p, "Name")
		names = append(names, name)
		return nil
	})
	return path, names, err
}

func (d *dte) SolutionFile() (string, error) {
	sln, err := getDispatch(d.disp, "Solution")
	if err != nil {
		return "", err
	}
	defer sln.Release()
	return getString(sln, "FullName")
}

func (d *dte) Build(wait bool) (int, error) {
	build, err := getDispatch(d.disp, "Solution", "SolutionBuild")
	if err != nil {
		return 0, err
	}
	defer build.Release()

	if _, err := oleutil.CallMethod(build, "Build", wait); err != nil {
		return 0, fmt.Errorf("Build: %w", err)
	}
	if !wait {
		return 0, nil
	}
	return getInt(build, "LastBuildInfo")
}

func (d *dte) debugger() (*ole.IDispatch, error) {
	return getDispatch(d.disp, "Debugger")
}

func (d *dte) DebugMode() (automation.DebugMode, error) {
	dbg, err := d.debugger()
	if err != nil {
		return "", err
	}
	defer dbg.Release()

	mode, err := getInt(dbg, "CurrentMode")
	if err != nil {
		return "", err
	}
	switch mode {
	case dbgDesignMode:
		return automation.DesignMode, nil
	case dbgBreakMode:
		return automation.BreakMode, nil
	case dbgRunMode:
		return automation.RunMode, nil
	}
	return automation.DebugMode("dbgDebugMode(" + strconv.Itoa(mode) + ")"), nil
}

func (d *dte) CurrentFrame() (automation.StackFrame, error) {
	frame, err := getDispatch(d.disp, "Debugger", "CurrentStackFrame")
	if err != nil {
		return automation.StackFrame{}, err
	}
	defer frame.Release()
	return readFrame(frame), nil
}

func (d *dte) StackFrames() ([]automation.StackFrame, error) {
	frames, err := getDispatch(d.disp, "Debugger", "CurrentThread", "StackFrames")
	if err != nil {
		return nil, err
	}
	defer frames.Release()

	n, err := getInt(frames, "Count")
	if err != nil {
		return nil, err
	}
	// Frames in native or external code may refuse Item; they are skipped.
	return collectReadable(n, func(i int) (automation.StackFrame, error) {
		f, err := itemAt(frames, i)
		if err != nil {
			return automation.StackFrame{}, err
		}
		defer f.Release()
		return readFrame(f), nil
	}), nil
}

// readFrame reads the fields a frame exposes. StackFrame2 reports FileName
// and LineNumber; older frames expose neither and read as zero values.
func readFrame(f *ole.IDispatch) automation.StackFrame {
	str := func(name string) (string, error) { return getString(f, name) }
	num := func(name string) (int, error) { return getInt(f, name) }

	var sf automation.StackFrame
	sf.FunctionName, _ = getString(f, "FunctionName")
	sf.Language, _ = getString(f, "Language")
	sf.FileName = firstString(str, frameFileProps...)
	sf.LineNumber = firstInt(num, frameLineProps...)
	return sf
}

func (d *dte) Go() error {
	dbg, err := d.debugger()
	if err != nil {
		return err
	}
	defer dbg.Release()
	if _, err := oleutil.CallMethod(dbg, "Go", false); err != nil {
		return fmt.Errorf("Debugger.Go: %w", err)
	}
	return nil
}

func (d *dte) Stop() error {
	dbg, err := d.debugger()
	if err != nil {
		return err
	}
	defer dbg.Release()
	if _, err := oleutil.CallMethod(dbg, "Stop", false); err != nil {
		return fmt.Errorf("Debugger.Stop: %w", err)
	}
	return nil
}

func (d *dte) ExecuteCommand(name string) error {
	if _, err := oleutil.CallMethod(d.disp, "ExecuteCommand", name, ""); err != nil {
		return fmt.Errorf("ExecuteCommand(%s): %w", name, err)
	}
	return nil
}

func (d *dte) Release() {
	if d.disp != nil {
		d.disp.Release()
		d.disp = nil
	}
}

// getDispatch follows a chain of object-valued properties. Intermediate
// objects are released; the caller owns the result.
func getDispatch(disp *ole.IDispatch, path ...string) (*ole.IDispatch, error) {
	cur := disp
	cur.AddRef()
	for _, name := range path {
		v, err := oleutil.GetProperty(cur, name)
		cur.Release()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		next := v.ToIDispatch()
		if next == nil {
			v.Clear()
			return nil, fmt.Errorf("%s: not an object", name)
		}
		cur = next
	}
	return cur, nil
}

func getString(disp *ole.IDispatch, name string) (string, error) {
	v, err := oleutil.GetProperty(disp, name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	defer v.Clear()
	return v.ToString(), nil
}

func getInt(disp *ole.IDispatch, name string) (int, error) {
	v, err := oleutil.GetProperty(disp, name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	defer v.Clear()
	return variantInt(v.Value())
}

// eachItem calls fn for every element of a 1-based automation collection.
func eachItem(coll *ole.IDispatch, fn func(i int, item *ole.IDispatch) error) error {
	n, err := getInt(coll, "Count")
	if err != nil {
		return err
	}
	for i := range n {
		item, err := itemAt(coll, i)
		if err != nil {
			return err
		}
		err = fn(i, item)
		item.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

// itemAt returns the element at 0-based index.
func itemAt(coll *ole.IDispatch, index int) (*ole.IDispatch, error) {
	v, err := oleutil.CallMethod(coll, "Item", index+1)
	if err != nil {
		return nil, fmt.Errorf("Item(%d): %w", index+1, err)
	}
	item := v.ToIDispatch()
	if item == nil {
		v.Clear()
		return nil, fmt.Errorf("Item(%d): not an object", index+1)
	}
	return item, nil
}

//go:build windows

package com

import (
	"errors"
	"fmt"

	ole "github.com/go-ole/go-ole"

	"github.com/deixis/vsbridge/internal/apartment"
	"github.com/deixis/vsbridge/internal/automation"
)

// sFalse is returned by CoInitializeEx when the thread already has an
// apartment; it still needs a matching CoUninitialize.
const sFalse = 1

// ApartmentHooks initializes a single-threaded apartment with a message
// filter applying p, and tears both down again.
func ApartmentHooks(p FilterPolicy) apartment.Hooks {
	var filter *MessageFilter
	return apartment.Hooks{
		Setup: func() error {
			if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
				var oleErr *ole.OleError
				if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
					return fmt.Errorf("initializing COM: %w", err)
				}
			}
			f, err := RegisterMessageFilter(p)
			if err != nil {
				ole.CoUninitialize()
				return fmt.Errorf("registering message filter: %w", err)
			}
			filter = f
			return nil
		},
		Teardown: func() {
			if filter != nil {
				revokeFilter(filter.Revoke)
				filter = nil
			}
			ole.CoUninitialize()
		},
	}
}

// Resolver finds running Visual Studio instances in the running object
// table.
type Resolver struct{}

// NewResolver returns a Resolver. It must be used from the apartment thread.
func NewResolver() Resolver {
	return Resolver{}
}

// Resolve returns the active object registered for progID.
func (Resolver) Resolve(progID string) (automation.Handle, error) {
	clsid, err := ole.CLSIDFromProgID(progID)
	if err != nil {
		return nil, fmt.Errorf("CLSIDFromProgID(%s): %w", progID, err)
	}
	unk, err := ole.GetActiveObject(clsid, ole.IID_IUnknown)
	if err != nil {
		return nil, fmt.Errorf("GetActiveObject(%s): %w", progID, err)
	}
	defer unk.Release()

	disp, err := unk.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("querying IDispatch on %s: %w", progID, err)
	}
	return &dte{disp: disp}, nil
}

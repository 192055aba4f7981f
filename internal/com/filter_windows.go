//go:build windows

package com

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

var (
	modole32                    = windows.NewLazySystemDLL("ole32.dll")
	procCoRegisterMessageFilter = modole32.NewProc("CoRegisterMessageFilter")

	iidIOleMessageFilter = ole.NewGUID("{00000016-0000-0000-C000-000000000046}")
)

const (
	sOK          = 0
	eNoInterface = 0x80004002
)

type messageFilterVtbl struct {
	QueryInterface     uintptr
	AddRef             uintptr
	Release            uintptr
	HandleInComingCall uintptr
	RetryRejectedCall  uintptr
	MessagePending     uintptr
}

// messageFilterObject is a COM object allocated by Go. lpVtbl must be the
// first field.
type messageFilterObject struct {
	lpVtbl *messageFilterVtbl
	refs   int32
	policy FilterPolicy
}

var (
	vtblOnce sync.Once
	vtbl     *messageFilterVtbl
)

// filterVtbl builds the vtable once; Windows limits the number of callbacks
// a process may create.
func filterVtbl() *messageFilterVtbl {
	vtblOnce.Do(func() {
		vtbl = &messageFilterVtbl{
			QueryInterface:     windows.NewCallback(filterQueryInterface),
			AddRef:             windows.NewCallback(filterAddRef),
			Release:            windows.NewCallback(filterRelease),
			HandleInComingCall: windows.NewCallback(filterHandleInComingCall),
			RetryRejectedCall:  windows.NewCallback(filterRetryRejectedCall),
			MessagePending:     windows.NewCallback(filterMessagePending),
		}
	})
	return vtbl
}

func filterQueryInterface(this *messageFilterObject, riid *ole.GUID, ppv *uintptr) uintptr {
	if ole.IsEqualGUID(riid, ole.IID_IUnknown) || ole.IsEqualGUID(riid, iidIOleMessageFilter) {
		*ppv = uintptr(unsafe.Pointer(this))
		atomic.AddInt32(&this.refs, 1)
		return sOK
	}
	*ppv = 0
	return eNoInterface
}

func filterAddRef(this *messageFilterObject) uintptr {
	return uintptr(atomic.AddInt32(&this.refs, 1))
}

// filterRelease only counts; the Go side owns the memory and unpins it on
// Revoke.
func filterRelease(this *messageFilterObject) uintptr {
	return uintptr(atomic.AddInt32(&this.refs, -1))
}

func filterHandleInComingCall(this *messageFilterObject, callType uint32, hTaskCaller uintptr, tickCount uint32, interfaceInfo uintptr) uintptr {
	return uintptr(this.policy.handleInComingCall())
}

func filterRetryRejectedCall(this *messageFilterObject, hTaskCallee uintptr, tickCount uint32, rejectType uint32) uintptr {
	elapsed := time.Duration(tickCount) * time.Millisecond
	return uintptr(uint32(this.policy.retryRejectedCall(rejectType, elapsed)))
}

func filterMessagePending(this *messageFilterObject, hTaskCallee uintptr, tickCount uint32, pendingType uint32) uintptr {
	return uintptr(this.policy.messagePending())
}

// MessageFilter is an IOleMessageFilter registered for the calling thread's
// apartment. Register and Revoke must run on the same thread.
type MessageFilter struct {
	obj    *messageFilterObject
	pinner runtime.Pinner
}

// RegisterMessageFilter installs a filter applying p on the current
// single-threaded apartment.
func RegisterMessageFilter(p FilterPolicy) (*MessageFilter, error) {
	f := &MessageFilter{obj: &messageFilterObject{lpVtbl: filterVtbl(), refs: 1, policy: p}}
	f.pinner.Pin(f.obj)
	f.pinner.Pin(f.obj.lpVtbl)

	var previous *ole.IUnknown
	hr, _, _ := procCoRegisterMessageFilter.Call(
		uintptr(unsafe.Pointer(f.obj)),
		uintptr(unsafe.Pointer(&previous)),
	)
	if int32(hr) < 0 {
		f.pinner.Unpin()
		return nil, ole.NewError(hr)
	}
	if previous != nil {
		previous.Release()
	}
	return f, nil
}

// Revoke removes the filter from the apartment.
func (f *MessageFilter) Revoke() error {
	var previous *ole.IUnknown
	hr, _, _ := procCoRegisterMessageFilter.Call(0, uintptr(unsafe.Pointer(&previous)))
	f.pinner.Unpin()
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

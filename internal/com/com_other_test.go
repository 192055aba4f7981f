//go:build !windows

package com

import (
	"errors"
	"testing"

	"github.com/deixis/vsbridge/internal/apartment"
)

func TestResolve_Unsupported(t *testing.T) {
	h, err := NewResolver().Resolve("VisualStudio.DTE")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Resolve err = %v, want ErrUnsupported", err)
	}
	if h != nil {
		t.Errorf("Resolve handle = %v, want nil", h)
	}
}

func TestApartmentHooks_NoOp(t *testing.T) {
	th, err := apartment.Start(ApartmentHooks(FilterPolicy{}))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	th.Close()
}

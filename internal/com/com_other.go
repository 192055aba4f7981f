//go:build !windows

package com

import (
	"errors"
	"fmt"

	"github.com/deixis/vsbridge/internal/apartment"
	"github.com/deixis/vsbridge/internal/automation"
)

// ErrUnsupported is returned by Resolve on platforms without COM.
var ErrUnsupported = errors.New("COM automation requires Windows")

// ApartmentHooks returns no-op hooks; there is no apartment to set up.
func ApartmentHooks(FilterPolicy) apartment.Hooks {
	return apartment.Hooks{}
}

// Resolver never finds an instance.
type Resolver struct{}

// NewResolver returns a Resolver.
func NewResolver() Resolver {
	return Resolver{}
}

// Resolve always fails with ErrUnsupported.
func (Resolver) Resolve(progID string) (automation.Handle, error) {
	return nil, fmt.Errorf("resolving %s: %w", progID, ErrUnsupported)
}

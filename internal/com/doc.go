// Package com reaches Visual Studio through COM automation.
//
// On Windows it resolves running instances by ProgID with GetActiveObject,
// drives the DTE object model through late-bound IDispatch calls, and
// installs an IOleMessageFilter so calls the IDE rejects while busy are
// retried instead of failing. On other platforms Resolve always fails and
// every instance lookup reports that no IDE is running.
package com

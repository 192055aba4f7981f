// Package vsbridge connects MCP clients to a running Visual Studio instance.
package vsbridge

// Version is the vsbridge release, overridable at link time.
var Version = "v0.1.0"

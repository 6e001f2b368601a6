// Package plugin provides the public API for vecprep tracer plugins.
package plugin

import (
	"context"
)

// TracerPlugin is the interface that tracer plugins must implement for go-plugin RPC.
type TracerPlugin interface {
	// Trace turns segmented regions into output files, keyed by file name.
	Trace(ctx context.Context, req TraceRequest) (map[string][]byte, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo

	// GetFlagHelp returns help information for plugin flags.
	GetFlagHelp() []FlagHelp
}

// Package protocol defines the plugin protocol version and compatibility checking.
package protocol

import (
	"github.com/jmylchreest/vecprep/pkg/plugin"
)

// Handshake is the go-plugin handshake shared with tracer binaries.
//
// NOTE: go-plugin's ProtocolVersion is a single uint that must match exactly.
// The full semantic version check (including MinCompatibleVersion) happens
// separately via the --plugin-info query and IsCompatible().
var Handshake = plugin.Handshake

// PluginType defines the type of plugin communication protocol.
type PluginType = plugin.PluginType

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin = plugin.PluginTypeGoPlugin

	// PluginTypeJSON indicates the plugin uses simple JSON over stdin/stdout.
	PluginTypeJSON = plugin.PluginTypeJSON
)

// Type aliases so host code can stay on this package.
type (
	TraceRequest = plugin.TraceRequest
	RegionData   = plugin.RegionData
	BoundsData   = plugin.BoundsData
	Run          = plugin.Run
	RGBColour    = plugin.RGBColour
	FlagHelp     = plugin.FlagHelp
	TracerPlugin = plugin.TracerPlugin
	TracerRPC    = plugin.TracerPluginRPC
	TracerClient = plugin.TracerPluginRPCClient
)

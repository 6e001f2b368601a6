// Package plugin provides the public API for vecprep tracer plugins.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion is the tracer plugin API version (MAJOR.MINOR.PATCH).
	ProtocolVersion = "0.1.0"

	// MinCompatibleVersion is the oldest protocol version this vecprep version can work with.
	MinCompatibleVersion = "0.1.0"

	// PluginName is the name under which the tracer is dispensed over go-plugin.
	PluginName = "tracer"
)

// Handshake is the go-plugin handshake shared by vecprep and its tracers.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0, // Major version from ProtocolVersion
	MagicCookieKey:   "VECPREP_TRACER_PLUGIN",
	MagicCookieValue: "vecprep_region_tracer",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the plugin uses simple JSON over stdin/stdout.
	PluginTypeJSON PluginType = "json-stdio"
)

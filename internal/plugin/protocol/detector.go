// Package protocol defines the plugin protocol version and compatibility checking.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/jmylchreest/vecprep/pkg/plugin"
)

// InfoFlag is the argument plugins answer with their PluginInfo as JSON.
const InfoFlag = "--plugin-info"

// DetectTimeout bounds the --plugin-info query.
const DetectTimeout = 5 * time.Second

// DetectorResult contains information about a detected plugin protocol.
type DetectorResult struct {
	// Type indicates which protocol the plugin uses.
	Type PluginType

	// SupportsGoPlugin indicates if the plugin binary has go-plugin support.
	SupportsGoPlugin bool

	// PluginInfo contains metadata from --plugin-info.
	PluginInfo PluginInfo
}

// PluginInfo is a type alias to the public plugin.PluginInfo type.
// External plugins should import github.com/jmylchreest/vecprep/pkg/plugin directly.
type PluginInfo = plugin.PluginInfo

// DetectProtocol detects which protocol a plugin uses by querying it.
func DetectProtocol(pluginPath string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DetectTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, pluginPath, InfoFlag).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin: %w", err)
	}
	return ParseInfo(output)
}

// ParseInfo interprets the --plugin-info output of a plugin. The protocol version
// must be compatible with this host.
func ParseInfo(output []byte) (*DetectorResult, error) {
	var info PluginInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse plugin info: %w", err)
	}

	result := &DetectorResult{
		PluginInfo: info,
	}

	// Determine protocol type from plugin_protocol field.
	switch info.PluginProtocol {
	case string(PluginTypeGoPlugin):
		result.Type = PluginTypeGoPlugin
		result.SupportsGoPlugin = true
	case string(PluginTypeJSON), "":
		// Empty defaults to json-stdio.
		result.Type = PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	if info.ProtocolVersion != "" {
		if ok, err := IsCompatible(info.ProtocolVersion); !ok {
			return nil, fmt.Errorf("plugin %q: %w", info.Name, err)
		}
	}

	return result, nil
}

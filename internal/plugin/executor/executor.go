// Package executor runs tracer plugins regardless of their underlying protocol
// (go-plugin RPC or JSON-stdio).
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/vecprep/internal/plugin/protocol"
	pluginapi "github.com/jmylchreest/vecprep/pkg/plugin"
)

// DefaultOutputName is the file name given to raw stdout from a JSON-stdio tracer.
const DefaultOutputName = "output.svg"

// PluginExecutor provides a unified interface for executing tracer plugins.
type PluginExecutor struct {
	path         string
	protocolType protocol.PluginType
	info         protocol.PluginInfo
	client       *plugin.Client
	rpcClient    *protocol.TracerClient
	runner       ProcessRunner
	logger       hclog.Logger
}

// New creates a new PluginExecutor by detecting the plugin's protocol.
func New(ctx context.Context, pluginPath string, logger hclog.Logger) (*PluginExecutor, error) {
	return NewWithRunner(ctx, pluginPath, logger, NewRealProcessRunner())
}

// NewWithRunner creates a PluginExecutor that runs JSON-stdio plugins and the
// protocol query through runner.
func NewWithRunner(ctx context.Context, pluginPath string, logger hclog.Logger, runner ProcessRunner) (*PluginExecutor, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	detectCtx, cancel := context.WithTimeout(ctx, protocol.DetectTimeout)
	defer cancel()

	stdout, stderr, err := runner.Run(detectCtx, pluginPath, []string{protocol.InfoFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin: %w%s", err, stderrSuffix(stderr))
	}

	result, err := protocol.ParseInfo(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to detect plugin protocol: %w", err)
	}

	logger.Debug("tracer plugin detected", "path", pluginPath, "name", result.PluginInfo.Name,
		"protocol", result.Type, "version", result.PluginInfo.Version)

	// go-plugin clients are started lazily on first use.
	return &PluginExecutor{
		path:         pluginPath,
		protocolType: result.Type,
		info:         result.PluginInfo,
		runner:       runner,
		logger:       logger,
	}, nil
}

// Info returns the metadata reported by --plugin-info.
func (e *PluginExecutor) Info() protocol.PluginInfo {
	return e.info
}

// Protocol returns the detected plugin protocol.
func (e *PluginExecutor) Protocol() protocol.PluginType {
	return e.protocolType
}

// Trace sends the segmented image to the plugin and returns the generated files.
func (e *PluginExecutor) Trace(ctx context.Context, req protocol.TraceRequest) (map[string][]byte, error) {
	switch e.protocolType {
	case protocol.PluginTypeGoPlugin:
		client, err := e.getRPCClient()
		if err != nil {
			return nil, err
		}
		return client.Trace(ctx, req)
	case protocol.PluginTypeJSON:
		return e.traceJSON(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// GetFlagHelp returns the plugin's flag help. JSON-stdio plugins report none.
func (e *PluginExecutor) GetFlagHelp() ([]protocol.FlagHelp, error) {
	switch e.protocolType {
	case protocol.PluginTypeGoPlugin:
		client, err := e.getRPCClient()
		if err != nil {
			return nil, err
		}
		return client.GetFlagHelp(), nil
	case protocol.PluginTypeJSON:
		return []protocol.FlagHelp{}, nil
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", e.protocolType)
	}
}

// Close cleans up any resources held by the executor.
func (e *PluginExecutor) Close() {
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
}

// --- Go-Plugin RPC implementation ---

func (e *PluginExecutor) getRPCClient() (*protocol.TracerClient, error) {
	if e.rpcClient != nil {
		return e.rpcClient, nil
	}

	e.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: protocol.Handshake,
		Plugins: map[string]plugin.Plugin{
			pluginapi.PluginName: &protocol.TracerRPC{},
		},
		Cmd:              exec.Command(e.path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           e.logger.ResetNamed("plugin"),
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(pluginapi.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*protocol.TracerClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin dispensed unexpected type %T", raw)
	}
	e.rpcClient = client
	return client, nil
}

// --- JSON-stdio implementation ---

// traceJSON writes the request to the plugin's stdin. A JSON object on stdout maps
// file names to base64 content; any other output is returned as DefaultOutputName.
func (e *PluginExecutor) traceJSON(ctx context.Context, req protocol.TraceRequest) (map[string][]byte, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trace request: %w", err)
	}

	stdout, stderr, err := e.runner.Run(ctx, e.path, nil, bytes.NewReader(reqJSON))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("plugin execution cancelled: %w", ctxErr)
		}
		return nil, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}

	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var files map[string][]byte
		if err := json.Unmarshal(trimmed, &files); err != nil {
			return nil, fmt.Errorf("failed to parse plugin output: %w", err)
		}
		return files, nil
	}

	result := make(map[string][]byte)
	if len(stdout) > 0 {
		result[DefaultOutputName] = stdout
	}
	return result, nil
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	return "\nStderr: " + msg
}

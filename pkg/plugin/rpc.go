// Package plugin provides the public API for vecprep tracer plugins.
package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// TracerPluginRPC implements the go-plugin Plugin interface for tracer plugins.
type TracerPluginRPC struct {
	plugin.Plugin
	Impl TracerPlugin
}

// Server returns an RPC server for this plugin.
func (p *TracerPluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &TracerPluginRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *TracerPluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &TracerPluginRPCClient{client: c}, nil
}

// TracerPluginRPCServer is the RPC server implementation for tracer plugins.
type TracerPluginRPCServer struct {
	Impl TracerPlugin
}

// Trace implements the RPC method for region tracing.
func (s *TracerPluginRPCServer) Trace(req TraceRequest, resp *map[string][]byte) error {
	result, err := s.Impl.Trace(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = result
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *TracerPluginRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// GetFlagHelp implements the RPC method for fetching flag help.
func (s *TracerPluginRPCServer) GetFlagHelp(_ any, resp *[]FlagHelp) error {
	*resp = s.Impl.GetFlagHelp()
	return nil
}

// TracerPluginRPCClient is the RPC client implementation for tracer plugins.
type TracerPluginRPCClient struct {
	client *rpc.Client
}

// Trace calls the remote Trace method.
func (c *TracerPluginRPCClient) Trace(_ context.Context, req TraceRequest) (map[string][]byte, error) {
	var result map[string][]byte
	if err := c.client.Call("Plugin.Trace", req, &result); err != nil {
		return nil, &RPCError{Message: err.Error()}
	}
	return result, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *TracerPluginRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// GetFlagHelp calls the remote GetFlagHelp method.
func (c *TracerPluginRPCClient) GetFlagHelp() []FlagHelp {
	var help []FlagHelp
	err := c.client.Call("Plugin.GetFlagHelp", new(any), &help)
	if err != nil {
		return []FlagHelp{}
	}
	return help
}

// Serve runs impl as a go-plugin tracer. Plugin binaries call it from main.
func Serve(impl TracerPlugin) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &TracerPluginRPC{Impl: impl},
		},
	})
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}

package mcp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	serverproto "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp/server"
	"go.uber.org/zap"

	"mcp-chatbot/internal/config"
)

// startTestServer runs an in-process MCP server with one echo tool and
// returns its listen address.
func startTestServer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	handler := serverproto.WithDefaultHandler(ctx, func(h *serverproto.DefaultHandler) error {
		type EchoInput struct {
			Text string `json:"text"`
		}
		type EchoOutput struct {
			Text string `json:"text"`
		}
		return serverproto.RegisterTool[*EchoInput, *EchoOutput](h.Registry, "echo", "Echo text back", func(ctx context.Context, input *EchoInput) (*schema.CallToolResult, *jsonrpc.Error) {
			out := &EchoOutput{Text: input.Text}
			data, err := json.Marshal(out)
			if err != nil {
				return nil, jsonrpc.NewInternalError(err.Error(), nil)
			}
			return &schema.CallToolResult{Content: []schema.CallToolResultContentElem{
				{Type: "text", Text: string(data)},
			}}, nil
		})
	})
	srv, err := server.New(
		server.WithNewHandler(handler),
		server.WithImplementation(schema.Implementation{Name: "test", Version: "0.1"}),
	)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpSrv := srv.HTTP(ctx, ln.Addr().String())
	go func() { _ = httpSrv.Serve(ln) }()
	return ln.Addr().String(), func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		cancel()
	}
}

func TestConnectAndCallTool(t *testing.T) {
	ctx := context.Background()
	addr, shutdown := startTestServer(t, ctx)
	defer shutdown()

	session, err := Connect(ctx, config.MCP{
		Transport: config.TransportSSE,
		ServerURL: "http://" + addr + "/sse",
	}, zap.NewNop())
	require.NoError(t, err)
	defer session.Close()

	tools := session.Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "Echo text back", tools[0].Description)
	assert.NotEmpty(t, tools[0].InputSchema)

	listed, err := session.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, tools[0].Name, listed[0].Name)

	result, err := session.CallTool(ctx, "echo", map[string]interface{}{"text": "hello"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	assert.Contains(t, result.Content[0].Text, "hello")
}

func TestConnectFailsWhenServerUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := Connect(ctx, config.MCP{
		Transport: config.TransportSSE,
		ServerURL: "http://127.0.0.1:1/sse",
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestCloseCancelsTransportContext(t *testing.T) {
	cancelled := false
	s := &session{cancel: func() { cancelled = true }}

	require.NoError(t, s.Close())
	assert.True(t, cancelled, "Close must cancel the transport context")
}

func TestLauncherFor(t *testing.T) {
	cmd, err := launcherFor("weather.py")
	require.NoError(t, err)
	assert.Equal(t, "python", cmd)

	cmd, err = launcherFor("weather.js")
	require.NoError(t, err)
	assert.Equal(t, "node", cmd)

	_, err = launcherFor("weather.sh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".py or .js")
}

func TestNewTransportUnknown(t *testing.T) {
	_, err := newTransport(context.Background(), config.MCP{Transport: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown MCP transport")
}

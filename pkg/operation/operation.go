package operation

import (
	"github.com/go-training/oauth-playground/pkg/oauthflow"
	"github.com/go-training/oauth-playground/pkg/operation/authorize"

	"github.com/mark3labs/mcp-go/server"
)

/*
RegisterFlowTools registers the authorization flow helper tools to the specified MCPServer instance.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.
  - provider: The OAuth2 provider the generated URLs point at.

None of the tools read or write the ephemeral credential store.
*/
func RegisterFlowTools(s *server.MCPServer, provider oauthflow.Provider) {
	tool := &Tool{}

	tool.Register(server.ServerTool{
		Tool:    authorize.BuildAuthorizationURLTool,
		Handler: authorize.HandleBuildAuthorizationURLTool(provider),
	})
	tool.Register(server.ServerTool{
		Tool:    authorize.ParseScopesTool,
		Handler: authorize.HandleParseScopesTool,
	})

	s.AddTools(tool.Tools()...)
}

// Tool collects tools before they are added to an MCPServer, in registration order.
type Tool struct {
	tools []server.ServerTool
}

// Register adds a ServerTool to the collection.
func (t *Tool) Register(s server.ServerTool) {
	t.tools = append(t.tools, s)
}

// Tools returns all registered tools.
func (t *Tool) Tools() []server.ServerTool {
	return t.tools
}

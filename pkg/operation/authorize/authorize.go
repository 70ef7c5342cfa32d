// Package authorize provides MCP tools that help an operator prepare an
// authorization code flow without handling any client secret.
package authorize

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-training/oauth-playground/pkg/core"
	"github.com/go-training/oauth-playground/pkg/oauthflow"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// BuildAuthorizationURLTool defines the MCP tool that renders the provider redirect URL.
var BuildAuthorizationURLTool = mcp.NewTool("build_authorization_url",
	mcp.WithDescription("Build the provider authorization URL for a client ID, origin and scope list"),
	mcp.WithString("client_id",
		mcp.Description("OAuth client ID registered with the provider"),
		mcp.Required(),
	),
	mcp.WithString("origin",
		mcp.Description("Origin of the playground deployment, e.g. http://localhost:8095"),
		mcp.Required(),
	),
	mcp.WithString("scopes",
		mcp.Description("Comma-separated scopes"),
	),
)

// ParseScopesTool defines the MCP tool that normalizes a comma-separated scope list.
var ParseScopesTool = mcp.NewTool("parse_scopes",
	mcp.WithDescription("Split a comma-separated scope list the way the capture form does"),
	mcp.WithString("scopes",
		mcp.Description("Comma-separated scopes"),
		mcp.Required(),
	),
)

// HandleBuildAuthorizationURLTool returns a handler bound to provider.
// Nothing is staged in the ephemeral store.
func HandleBuildAuthorizationURLTool(provider oauthflow.Provider) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := core.LoggerFromCtx(ctx)
		logger.Info("Handling build_authorization_url tool")

		args := request.GetArguments()
		clientID, _ := args["client_id"].(string)
		origin, _ := args["origin"].(string)
		if clientID == "" || origin == "" {
			logger.Error("Missing client_id or origin argument")
			return nil, fmt.Errorf("client_id and origin are required")
		}
		rawScopes, _ := args["scopes"].(string)

		req := oauthflow.NewAuthorizationRequest(clientID, oauthflow.CallbackURI(origin), oauthflow.ParseScopes(rawScopes))
		return mcp.NewToolResultText(provider.AuthorizationURL(req)), nil
	}
}

// HandleParseScopesTool returns the parsed scopes as a JSON array.
func HandleParseScopesTool(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	rawScopes, ok := request.GetArguments()["scopes"].(string)
	if !ok {
		core.LoggerFromCtx(ctx).Error("Missing scopes argument")
		return nil, fmt.Errorf("missing scopes")
	}

	data, err := json.Marshal(oauthflow.ParseScopes(rawScopes))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

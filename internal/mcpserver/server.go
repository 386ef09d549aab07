// Package mcpserver exposes an operation catalog as MCP tools over stdio:
// tools/list returns the catalog, tools/call dispatches an invocation as
// an HTTP request against the described API.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mark3labs/openapi2mcp/internal/catalog"
	"github.com/mark3labs/openapi2mcp/internal/dispatch"
	"github.com/mark3labs/openapi2mcp/internal/spec"
)

// Options configures a server run.
type Options struct {
	// Doc is the resolved API description. Required.
	Doc *spec.Document
	// BaseURL overrides the description's servers and the environment.
	BaseURL string
	// Name and Version identify the MCP server implementation.
	Name    string
	Version string
}

const serverInstructions = `Each tool corresponds to one operation of the upstream HTTP API. ` +
	`Arguments named after path parameters are substituted into the URL; other arguments ` +
	`become query parameters; the reserved "body" argument is sent as the JSON request body.`

// Run builds the catalog, registers one MCP tool per descriptor, and
// serves stdio until the client disconnects or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Doc == nil {
		return fmt.Errorf("mcpserver: nil document")
	}
	cfg := loadConfig()

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	engine := dispatch.New(dispatch.Config{
		BaseURL:    opts.Doc.BaseURL(baseURL),
		APIKey:     cfg.APIKey,
		APIVersion: cfg.APIVersion,
		Client:     &http.Client{Timeout: cfg.HTTPTimeout},
	})

	name := opts.Name
	if name == "" {
		name = "openapi2mcp"
	}
	server := mcp.NewServer(
		&mcp.Implementation{Name: name, Version: opts.Version},
		&mcp.ServerOptions{Instructions: serverInstructions},
	)
	registerTools(server, engine, opts.Doc)
	return server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds one tool per catalog descriptor. Duplicate
// identities register once; dispatch resolves first-match anyway, so the
// later duplicates could never be called.
func registerTools(server *mcp.Server, engine *dispatch.Engine, doc *spec.Document) {
	seen := make(map[string]bool)
	for _, d := range catalog.Build(doc) {
		if seen[d.Identity] {
			continue
		}
		seen[d.Identity] = true
		identity := d.Identity
		server.AddTool(&mcp.Tool{
			Name:        identity,
			Description: d.Summary,
			InputSchema: toJSONSchema(d.InputSchema),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return toCallResult(invokeRaw(ctx, engine, doc, identity, req.Params.Arguments)), nil
		})
	}
}

// invokeRaw decodes the raw argument object and hands it to the engine.
// Numbers decode as json.Number so their literal form survives path and
// query stringification. Panics are converted to a structured failure;
// nothing escapes the invocation boundary.
func invokeRaw(ctx context.Context, engine *dispatch.Engine, doc *spec.Document, identity string, raw json.RawMessage) (res dispatch.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = dispatch.Result{Err: &dispatch.Error{
				Kind:    dispatch.UnexpectedFailure,
				Message: fmt.Sprintf("invoke %s: %v", identity, r),
			}}
		}
	}()

	args := map[string]any{}
	if len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return dispatch.Result{Err: &dispatch.Error{
				Kind:    dispatch.UnexpectedFailure,
				Message: fmt.Sprintf("decode arguments: %v", err),
			}}
		}
	}
	return engine.Invoke(ctx, doc, identity, args)
}

// toCallResult maps a dispatch result onto the MCP wire shape: text
// content on success, IsError plus a single message on failure.
func toCallResult(res dispatch.Result) *mcp.CallToolResult {
	if !res.OK() {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: res.Err.Message}},
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
	}
}

// toJSONSchema converts a descriptor's schema object into the SDK's
// schema type. A descriptor schema that fails conversion degrades to an
// unconstrained object rather than dropping the tool.
func toJSONSchema(m map[string]any) *jsonschema.Schema {
	s := new(jsonschema.Schema)
	b, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(b, s)
	}
	if err != nil {
		return &jsonschema.Schema{Type: "object"}
	}
	return s
}

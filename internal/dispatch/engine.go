// Package dispatch turns a requested operation identity and an argument
// map into a real HTTP request against the described API, and maps the
// response (or failure) to a structured result.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mark3labs/openapi2mcp/internal/catalog"
	"github.com/mark3labs/openapi2mcp/internal/spec"
)

// VersionHeader is the fixed API-version header sent with every call.
const VersionHeader = "X-API-Version"

// Config carries the process-wide call settings. The credential is an
// explicit value here rather than ambient state so tests can inject fakes
// and multiple engines can coexist in one process.
type Config struct {
	// BaseURL for all outbound calls. Required.
	BaseURL string
	// APIKey is substituted into the Authorization header verbatim. An
	// empty key is sent as-is and surfaces as an upstream auth failure.
	APIKey string
	// APIVersion is sent in the VersionHeader header.
	APIVersion string
	// Client used for outbound calls. Defaults to http.DefaultClient; no
	// timeout or cancellation is layered on top of it.
	Client *http.Client
	// Logger for request/response diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// Engine executes invocations. It holds no mutable state: each call
// re-derives its match from the immutable description, so concurrent
// invocations never race.
type Engine struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New returns an engine for the given config.
func New(cfg Config) *Engine {
	e := &Engine{cfg: cfg, client: cfg.Client, logger: cfg.Logger}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Invoke resolves identity against the description, reconstructs the HTTP
// request, executes it, and interprets the response. All failures come
// back inside the Result.
func (e *Engine) Invoke(ctx context.Context, doc *spec.Document, identity string, args map[string]any) Result {
	match, ok := catalog.FindByIdentity(doc, identity)
	if !ok {
		return failure(OperationNotFound, fmt.Sprintf("Tool not found: %s", identity))
	}

	reqURL := e.buildURL(match.Path, args)

	var body io.Reader
	hasBody := false
	if raw, ok := args["body"]; ok {
		payload, err := json.Marshal(raw)
		if err != nil {
			return failure(UnexpectedFailure, fmt.Sprintf("encode body: %v", err))
		}
		body = bytes.NewReader(payload)
		hasBody = true
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(match.Method), reqURL, body)
	if err != nil {
		return failure(UnexpectedFailure, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", e.cfg.APIKey)
	req.Header.Set(VersionHeader, e.cfg.APIVersion)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}

	e.logger.Debug("dispatching operation", "identity", identity, "method", req.Method, "url", reqURL)

	resp, err := e.client.Do(req)
	if err != nil {
		return failure(UnexpectedFailure, fmt.Sprintf("call %s: %v", identity, err))
	}
	defer resp.Body.Close()

	return e.interpret(identity, resp)
}

// buildURL joins the base URL with the path template, substitutes path
// placeholders from the arguments, and appends the leftovers (minus the
// reserved "body" key) as query parameters. Placeholders with no matching
// argument stay in the URL; the upstream rejects them, not us.
func (e *Engine) buildURL(pathTemplate string, args map[string]any) string {
	u := strings.TrimSuffix(e.cfg.BaseURL, "/") + pathTemplate

	consumed := make(map[string]bool, len(args))
	for _, k := range sortedKeys(args) {
		placeholder := "{" + k + "}"
		if strings.Contains(u, placeholder) {
			u = strings.ReplaceAll(u, placeholder, Stringify(args[k]))
			consumed[k] = true
		}
	}

	query := url.Values{}
	for _, k := range sortedKeys(args) {
		if consumed[k] || k == "body" {
			continue
		}
		query.Set(k, Stringify(args[k]))
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// interpret parses the payload as JSON regardless of status. Final
// statuses under 400 succeed (net/http has already followed redirects);
// anything else is an upstream failure carrying the parsed error payload.
func (e *Engine) interpret(identity string, resp *http.Response) Result {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(UnexpectedFailure, fmt.Sprintf("read response: %v", err))
	}

	var payload any
	parsed := json.Unmarshal(raw, &payload) == nil

	if resp.StatusCode >= 400 {
		e.logger.Warn("upstream call failed", "identity", identity, "status", resp.Status, "body", string(raw))
		res := failure(UpstreamCallFailed, fmt.Sprintf("API call failed: %s", resp.Status))
		if parsed {
			res.Err.Payload = payload
		}
		return res
	}

	if !parsed {
		return Result{Text: string(raw)}
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return Result{Text: string(raw)}
	}
	return Result{Text: string(pretty)}
}

// sortedKeys gives a deterministic argument order; Go maps carry no
// insertion order to preserve.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

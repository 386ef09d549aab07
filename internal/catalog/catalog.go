// Package catalog derives callable operation descriptors from a resolved
// OpenAPI description. Build and FindByIdentity share one traversal so the
// listed catalog and dispatch resolution always agree on which (path,
// method) pair an identity names.
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/openapi2mcp/internal/spec"
)

// Descriptor is the catalog-facing representation of one path+method pair:
// a stable identity, human text, and an object schema describing the
// arguments an invocation accepts. It carries the originating (path,
// method) pair instead of a live handler; dispatch re-derives the match
// from the description.
type Descriptor struct {
	Identity    string
	Summary     string
	InputSchema map[string]any
	Path        string
	Method      string // lowercase
}

// Match is the outcome of resolving an identity back to its description
// entry.
type Match struct {
	Path   string
	Method string // lowercase
	Item   *openapi3.PathItem
	Op     *openapi3.Operation
}

// methodOrder is the fixed traversal order for methods on a path item.
// Other methods never produce a descriptor.
var methodOrder = []struct {
	name string
	pick func(*openapi3.PathItem) *openapi3.Operation
}{
	{"get", func(it *openapi3.PathItem) *openapi3.Operation { return it.Get }},
	{"put", func(it *openapi3.PathItem) *openapi3.Operation { return it.Put }},
	{"post", func(it *openapi3.PathItem) *openapi3.Operation { return it.Post }},
	{"delete", func(it *openapi3.PathItem) *openapi3.Operation { return it.Delete }},
	{"patch", func(it *openapi3.PathItem) *openapi3.Operation { return it.Patch }},
}

// walk visits every operation in catalog order: paths in declaration
// order, methods in methodOrder. It stops early when fn returns false.
func walk(doc *spec.Document, fn func(path, method string, item *openapi3.PathItem, op *openapi3.Operation) bool) {
	if doc == nil || doc.OpenAPI == nil || doc.OpenAPI.Paths == nil {
		return
	}
	for _, p := range doc.OrderedPaths() {
		item := doc.OpenAPI.Paths[p]
		if item == nil {
			continue
		}
		for _, m := range methodOrder {
			op := m.pick(item)
			if op == nil {
				continue
			}
			if !fn(p, m.name, item, op) {
				return
			}
		}
	}
}

// Build walks the description once and returns all operation descriptors
// in traversal order. Duplicate identities are kept: dispatch resolves to
// the first match, so later duplicates are listed but unreachable. Build
// never fails; malformed entries degrade to best-effort defaults.
func Build(doc *spec.Document) []Descriptor {
	var out []Descriptor
	walk(doc, func(path, method string, item *openapi3.PathItem, op *openapi3.Operation) bool {
		out = append(out, Descriptor{
			Identity:    Identity(method, path, op),
			Summary:     summaryFor(method, path, op),
			InputSchema: inputSchema(item, op),
			Path:        path,
			Method:      method,
		})
		return true
	})
	return out
}

// FindByIdentity resolves an identity to the first (path, method) pair in
// traversal order whose derived identity matches. Shared by catalog build
// and dispatch so both agree on first-match semantics.
func FindByIdentity(doc *spec.Document, identity string) (Match, bool) {
	var found Match
	ok := false
	walk(doc, func(path, method string, item *openapi3.PathItem, op *openapi3.Operation) bool {
		if Identity(method, path, op) != identity {
			return true
		}
		found = Match{Path: path, Method: method, Item: item, Op: op}
		ok = true
		return false
	})
	return found, ok
}

// Identity returns the operation's catalog name: the declared operationId
// verbatim when present, otherwise a name synthesized from method + path.
func Identity(method, path string, op *openapi3.Operation) string {
	if op != nil && op.OperationID != "" {
		return op.OperationID
	}
	return synthesizeIdentity(method, path)
}

// synthesizeIdentity derives a name from the path template:
// "get" + "/users/{id}/orders" → "getUsersIdOrders". Each segment is
// stripped of its brace wrapping, first letter upper-cased, remainder
// lower-cased.
func synthesizeIdentity(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		if seg == "" {
			continue
		}
		r := []rune(seg)
		b.WriteString(strings.ToUpper(string(r[0])))
		b.WriteString(strings.ToLower(string(r[1:])))
	}
	return b.String()
}

func summaryFor(method, path string, op *openapi3.Operation) string {
	if op != nil {
		if op.Description != "" {
			return op.Description
		}
		if op.Summary != "" {
			return op.Summary
		}
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(method), path)
}

// inputSchema builds the descriptor's object schema: one property per
// parameter (path-level first, then operation-level, same-name
// operation-level entries overriding by map insertion), plus a "body"
// property when the operation declares a JSON request body.
func inputSchema(item *openapi3.PathItem, op *openapi3.Operation) map[string]any {
	properties := make(map[string]any)
	var required []string

	addParams := func(params openapi3.Parameters) {
		for _, pref := range params {
			if pref == nil || pref.Value == nil {
				// Unresolved reference; the description is assumed
				// de-referenced, so a surviving ref is dropped.
				continue
			}
			p := pref.Value
			prop := schemaToMap(p.Schema)
			if p.Description != "" {
				prop["description"] = p.Description
			}
			if p.Example != nil {
				prop["example"] = p.Example
			}
			properties[p.Name] = prop
			if p.Required || ParseLocation(p.In) == InPath {
				required = appendUnique(required, p.Name)
			}
		}
	}
	if item != nil {
		addParams(item.Parameters)
	}
	if op != nil {
		addParams(op.Parameters)
	}

	if op != nil && op.RequestBody != nil && op.RequestBody.Value != nil {
		rb := op.RequestBody.Value
		if mt := rb.Content.Get("application/json"); mt != nil && mt.Schema != nil {
			prop := schemaToMap(mt.Schema)
			if rb.Description != "" {
				prop["description"] = rb.Description
			}
			properties["body"] = prop
			if rb.Required {
				required = appendUnique(required, "body")
			}
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// schemaToMap renders a kin-openapi schema as a plain JSON-schema object.
// The round-trip through encoding/json keeps exactly what the schema
// would serialize to, refs included.
func schemaToMap(ref *openapi3.SchemaRef) map[string]any {
	if ref == nil {
		return map[string]any{}
	}
	b, err := json.Marshal(ref)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

package spec

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is used when the description declares no servers and the
// caller provides no override.
const DefaultBaseURL = "https://api.example.com"

// Document is a resolved API description plus the path declaration order
// recovered from the raw bytes. kin-openapi models Paths as a map, which
// loses document order; the catalog's traversal order depends on it.
type Document struct {
	OpenAPI *openapi3.T

	// pathOrder holds path templates in raw-document declaration order.
	// Empty when the document was constructed without raw bytes.
	pathOrder []string
}

func newDocument(doc *openapi3.T, raw []byte) *Document {
	return &Document{OpenAPI: doc, pathOrder: pathOrderFromRaw(raw)}
}

// FromT wraps an already-parsed document. Path order falls back to sorted
// path templates since the raw bytes are not available.
func FromT(doc *openapi3.T) *Document {
	return &Document{OpenAPI: doc}
}

// OrderedPaths returns the document's path templates in declaration order
// where known, with any stragglers (and all paths, when order is unknown)
// appended in sorted order.
func (d *Document) OrderedPaths() []string {
	if d.OpenAPI == nil || d.OpenAPI.Paths == nil {
		return nil
	}
	seen := make(map[string]bool, len(d.pathOrder))
	out := make([]string, 0, len(d.OpenAPI.Paths))
	for _, p := range d.pathOrder {
		if _, ok := d.OpenAPI.Paths[p]; ok && !seen[p] {
			out = append(out, p)
			seen[p] = true
		}
	}
	rest := make([]string, 0, len(d.OpenAPI.Paths))
	for p := range d.OpenAPI.Paths {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// BaseURL resolves the base URL for outbound calls: explicit override,
// else the first declared server, else DefaultBaseURL.
func (d *Document) BaseURL(override string) string {
	if override != "" {
		return override
	}
	if d.OpenAPI != nil {
		for _, s := range d.OpenAPI.Servers {
			if s != nil && s.URL != "" {
				return s.URL
			}
		}
	}
	return DefaultBaseURL
}

// pathOrderFromRaw walks the raw YAML/JSON node tree and returns the keys
// of the top-level "paths" mapping in the order they were written.
func pathOrderFromRaw(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "paths" {
			continue
		}
		paths := top.Content[i+1]
		if paths.Kind != yaml.MappingNode {
			return nil
		}
		order := make([]string, 0, len(paths.Content)/2)
		for j := 0; j+1 < len(paths.Content); j += 2 {
			order = append(order, paths.Content[j].Value)
		}
		return order
	}
	return nil
}

package spec

import (
	"context"
	"reflect"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

const orderedSpec = `openapi: 3.0.0
info:
  title: Ordered API
  version: "1.0.0"
servers:
  - url: https://first.example.com/v1
  - url: https://second.example.com
paths:
  /zebras:
    get:
      responses: { "200": { description: ok } }
  /apples:
    get:
      responses: { "200": { description: ok } }
  /mangoes/{id}:
    get:
      parameters:
        - in: path
          name: id
          required: true
          schema: { type: string }
      responses: { "200": { description: ok } }
`

func TestOrderedPathsPreservesDeclarationOrder(t *testing.T) {
	t.Parallel()
	doc, err := LoadFromData(context.Background(), []byte(orderedSpec), "inline")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"/zebras", "/apples", "/mangoes/{id}"}
	if got := doc.OrderedPaths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ordered paths: got %v, want %v", got, want)
	}
}

func TestOrderedPathsFallsBackToSorted(t *testing.T) {
	t.Parallel()
	doc := FromT(&openapi3.T{
		Paths: openapi3.Paths{
			"/zebras": &openapi3.PathItem{},
			"/apples": &openapi3.PathItem{},
		},
	})
	want := []string{"/apples", "/zebras"}
	if got := doc.OrderedPaths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ordered paths: got %v, want %v", got, want)
	}
}

func TestPathOrderFromRawJSON(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"openapi":"3.0.0","paths":{"/b":{},"/a":{}}}`)
	want := []string{"/b", "/a"}
	if got := pathOrderFromRaw(raw); !reflect.DeepEqual(got, want) {
		t.Fatalf("path order: got %v, want %v", got, want)
	}
}

func TestBaseURLResolution(t *testing.T) {
	t.Parallel()
	doc, err := LoadFromData(context.Background(), []byte(orderedSpec), "inline")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := doc.BaseURL(""); got != "https://first.example.com/v1" {
		t.Errorf("declared server: got %q", got)
	}
	if got := doc.BaseURL("https://override.test"); got != "https://override.test" {
		t.Errorf("override: got %q", got)
	}

	bare := FromT(&openapi3.T{})
	if got := bare.BaseURL(""); got != DefaultBaseURL {
		t.Errorf("default: got %q", got)
	}
}

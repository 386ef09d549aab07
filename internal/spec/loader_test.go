package spec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const v2Spec = `swagger: "2.0"
info:
  title: Legacy API
  version: "1.0.0"
basePath: /v1
paths:
  /widgets:
    get:
      summary: List widgets
      responses:
        "200":
          description: ok
`

func TestDetectSpecVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"v3", `openapi: "3.0.1"`, 3, false},
		{"v2", `swagger: "2.0"`, 2, false},
		{"unknown", `asyncapi: "2.0"`, 0, true},
		{"garbage", `: [`, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := detectSpecVersion([]byte(tc.raw))
			if tc.wantErr != (err != nil) {
				t.Fatalf("err: got %v", err)
			}
			if got != tc.want {
				t.Errorf("version: got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLoadFromDataConvertsV2(t *testing.T) {
	t.Parallel()
	doc, err := LoadFromData(context.Background(), []byte(v2Spec), "inline")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.OpenAPI.Paths["/widgets"] == nil {
		t.Fatalf("converted doc: missing /widgets")
	}
	if doc.OpenAPI.Paths["/widgets"].Get == nil {
		t.Fatalf("converted doc: missing GET /widgets")
	}
}

func TestLoadRejectsEmptyInput(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "   ")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("err: got %v, want InputError", err)
	}
}

func TestLoadRejectsUnsupportedScheme(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), "ftp://example.com/spec.yaml")
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("err: got %v, want InputError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != InputError {
		t.Fatalf("err: got %v, want InputError", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "api.yaml")
	if err := os.WriteFile(path, []byte(orderedSpec), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.OrderedPaths()) != 3 {
		t.Fatalf("paths: got %v", doc.OrderedPaths())
	}
}

func TestLoadFromURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(orderedSpec))
	}))
	t.Cleanup(srv.Close)

	doc, err := Load(context.Background(), srv.URL+"/openapi.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := doc.BaseURL(""); got != "https://first.example.com/v1" {
		t.Errorf("base url: got %q", got)
	}
}

func TestLoadRetriesTransientFailures(t *testing.T) {
	t.Parallel()
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(orderedSpec))
	}))
	t.Cleanup(srv.Close)

	_, err := Load(context.Background(), srv.URL+"/openapi.yaml", WithBackoffBase(1), WithMaxRetries(5))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestLoadDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := Load(context.Background(), srv.URL+"/openapi.yaml", WithBackoffBase(1))
	var se *SpecError
	if !errors.As(err, &se) || se.Code != NetworkError {
		t.Fatalf("err: got %v, want NetworkError", err)
	}
	if attempts != 1 {
		t.Errorf("attempts: got %d, want 1", attempts)
	}
}

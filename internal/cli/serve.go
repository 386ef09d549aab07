package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi2mcp/internal/mcpserver"
	"github.com/mark3labs/openapi2mcp/internal/spec"
)

// ServeConfig captures all inputs that influence the serve command after
// merging defaults, config file values, and CLI overrides.
type ServeConfig struct {
	Spec       string
	BaseURL    string
	ServerName string
	ConfigPath string
	Verbose    bool
}

// fileConfig mirrors the YAML config file layout shared by serve and tools.
type fileConfig struct {
	Spec       string `yaml:"spec"`
	BaseURL    string `yaml:"baseUrl"`
	ServerName string `yaml:"serverName"`
}

var serveRunner = runServe

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the operation catalog over MCP stdio",
		Long: "Serve the operation catalog over MCP stdio. Each documented operation becomes " +
			"one tool; tool calls are dispatched as HTTP requests against the described API.",
		Example: strings.TrimSpace(`  openapi2mcp serve --spec api.yaml
  openapi2mcp serve --spec https://example.com/openapi.json --base-url https://api.example.com
  openapi2mcp --config config.yaml serve`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveServeConfig(cmd)
			if err != nil {
				return err
			}
			return serveRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("spec", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("base-url", "", "Base URL for outbound API calls (defaults to the document's first server)")
	flags.String("server-name", "", "MCP server name reported to clients")

	return cmd
}

func resolveServeConfig(cmd *cobra.Command) (*ServeConfig, error) {
	cfg := &ServeConfig{}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = strings.TrimSpace(configPath)
	if cfg.ConfigPath != "" {
		fc, err := readFileConfig(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Spec = fc.Spec
		cfg.BaseURL = fc.BaseURL
		cfg.ServerName = fc.ServerName
	}

	// Flags override config file values only when set on the command line.
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "spec":
			cfg.Spec = strings.TrimSpace(f.Value.String())
		case "base-url":
			cfg.BaseURL = strings.TrimSpace(f.Value.String())
		case "server-name":
			cfg.ServerName = strings.TrimSpace(f.Value.String())
		}
	})
	if v, err := cmd.Flags().GetBool("verbose"); err == nil {
		cfg.Verbose = v
	}

	if cfg.Spec == "" {
		return nil, newUsageError("serve: --spec is required (flag or config file)\n\n" + cmd.UsageString())
	}
	return cfg, nil
}

func readFileConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

func runServe(ctx context.Context, cfg *ServeConfig) error {
	configureLogging(cfg.Verbose)

	doc, err := spec.Load(ctx, cfg.Spec)
	if err != nil {
		// Description load failure is fatal; nothing can be served.
		return fmt.Errorf("load spec: %w", err)
	}

	return mcpserver.Run(ctx, mcpserver.Options{
		Doc:     doc,
		BaseURL: cfg.BaseURL,
		Name:    cfg.ServerName,
		Version: Version,
	})
}

// configureLogging routes slog to stderr; stdout belongs to the MCP
// transport.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

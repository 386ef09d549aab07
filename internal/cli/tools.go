package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/openapi2mcp/internal/catalog"
	"github.com/mark3labs/openapi2mcp/internal/spec"
)

// toolListing is the printable form of one catalog entry.
type toolListing struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	InputSchema map[string]any `json:"inputSchema" yaml:"inputSchema"`
}

var toolsRunner = runTools

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the operation catalog without serving",
		Long: "Print the operation catalog derived from an OpenAPI/Swagger document: one entry " +
			"per operation with its tool name, description, and input schema, in catalog order.",
		Example: strings.TrimSpace(`  openapi2mcp tools --spec api.yaml
  openapi2mcp tools --spec api.yaml --format yaml`),
		RunE: func(cmd *cobra.Command, args []string) error {
			specArg, err := cmd.Flags().GetString("spec")
			if err != nil {
				return err
			}
			if configPath, cerr := cmd.Flags().GetString("config"); cerr == nil && strings.TrimSpace(configPath) != "" && strings.TrimSpace(specArg) == "" {
				fc, ferr := readFileConfig(strings.TrimSpace(configPath))
				if ferr != nil {
					return ferr
				}
				specArg = fc.Spec
			}
			if strings.TrimSpace(specArg) == "" {
				return newUsageError("tools: --spec is required (flag or config file)\n\n" + cmd.UsageString())
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			switch format {
			case "json", "yaml":
			default:
				return newUsageError(fmt.Sprintf("tools: unsupported format %q (json|yaml)\n\n%s", format, cmd.UsageString()))
			}
			return toolsRunner(cmd.Context(), cmd, strings.TrimSpace(specArg), format)
		},
	}

	flags := cmd.Flags()
	flags.String("spec", "", "Path or URL to the OpenAPI/Swagger document")
	flags.String("format", "json", "Output format (json|yaml)")

	return cmd
}

func runTools(ctx context.Context, cmd *cobra.Command, specArg, format string) error {
	doc, err := spec.Load(ctx, specArg)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}

	descriptors := catalog.Build(doc)
	listings := make([]toolListing, 0, len(descriptors))
	for _, d := range descriptors {
		listings = append(listings, toolListing{
			Name:        d.Identity,
			Description: d.Summary,
			InputSchema: d.InputSchema,
		})
	}

	var out []byte
	if format == "yaml" {
		out, err = yaml.Marshal(listings)
	} else {
		out, err = json.MarshalIndent(listings, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

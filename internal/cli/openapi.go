package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entryd/entryd/internal/apidoc"
	"github.com/entryd/entryd/internal/handler"
	"github.com/entryd/entryd/internal/repository"
	"github.com/entryd/entryd/internal/service"
)

const (
	defaultCollection = "entries"
	defaultMountPath  = "/api/v1"
)

// NewOpenAPICommand creates the openapi command.
func NewOpenAPICommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of the entry routes",
		Long: `Print the OpenAPI document that entryd serves on /openapi.json.

No storage connection is made; only the collection name and mount path
shape the document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(format) {
				return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
			}

			collection := orDefault(rootOpts.Collection, defaultCollection)
			mount := orDefault(rootOpts.MountPath, defaultMountPath)

			doc, err := buildDocument(cmd, collection, mount)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json|yaml)")

	return cmd
}

func buildDocument(cmd *cobra.Command, collection, mount string) (*openapi3.T, error) {
	if err := repository.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	svc := service.NewEntryService(repository.NewMemory(collection), nil)
	routes := handler.EntryRoutes(handler.NewEntryHandler(svc, nil, nil))

	return apidoc.Build(cmd.Context(), apidoc.Info{
		Title:       "entryd",
		Version:     handler.Version,
		Description: "Validated CRUD over the " + collection + " collection.",
		MountPath:   mount,
	}, routes)
}

func writeDocument(w io.Writer, doc *openapi3.T, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entryd/entryd/internal/config"
	"github.com/entryd/entryd/internal/repository"
	"github.com/entryd/entryd/internal/schema"
	"github.com/entryd/entryd/internal/service"
)

// ImportResult is printed after a successful import.
type ImportResult struct {
	Collection string   `json:"collection"`
	Imported   int      `json:"imported"`
	Keys       []string `json:"keys"`
}

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	File       string
	Driver     string
	SQLitePath string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import --file <entries.json>",
		Short: "Bulk-load entries from a JSON file",
		Long: `Load a JSON file holding one entry object or an array of entries.

The file is validated exactly like a create request body: if any element is
invalid nothing is stored. Storage settings come from the environment
(STORAGE_DRIVER, DATABASE_URL, REDIS_URL, SQLITE_PATH) unless overridden.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "path to the JSON file")
	cmd.Flags().StringVar(&opts.Driver, "driver", "", "storage driver override (postgres|redis|sqlite|memory)")
	cmd.Flags().StringVar(&opts.SQLitePath, "sqlite-path", "", "SQLite database path override")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *ImportOptions) error {
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.File, err)
	}

	req, err := schema.DecodeCreateRequest(data)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", f.Field, f.Error)
			}
		}
		return fmt.Errorf("%s: %w", opts.File, err)
	}

	cfg, err := importConfig(rootOpts, opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	coll, err := repository.Open(ctx, repository.Options{
		Driver:      cfg.StorageDriver,
		Collection:  cfg.CollectionName,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer coll.Close()

	docs, err := service.NewEntryService(coll, nil).Create(ctx, req)
	result := ImportResult{
		Collection: coll.Name(),
		Imported:   len(docs),
		Keys:       make([]string, 0, len(docs)),
	}
	for _, doc := range docs {
		result.Keys = append(result.Keys, doc.Key())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return encErr
	}
	return err
}

// importConfig loads the service configuration and applies flag overrides.
func importConfig(rootOpts *RootOptions, opts *ImportOptions) (*config.Config, error) {
	cfg, err := config.Parse(rootOpts.EnvFile)
	if err != nil {
		return nil, err
	}

	if opts.Driver != "" {
		cfg.StorageDriver = opts.Driver
	}
	if opts.SQLitePath != "" {
		cfg.SQLitePath = opts.SQLitePath
	}
	if rootOpts.Collection != "" {
		cfg.CollectionName = rootOpts.Collection
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

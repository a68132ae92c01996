// Package cli implements the entryctl command line tool.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Collection string
	MountPath  string
	EnvFile    string
}

// NewRootCommand creates the root command for entryctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "entryctl",
		Short: "entryctl - tooling for the entryd service",
		Long:  "Print the entry route contract and bulk-load entries into a collection.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.MountPath != "" && opts.MountPath[0] != '/' {
				return fmt.Errorf("invalid mount path %q: must start with /", opts.MountPath)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Collection, "collection", "", "collection name (default from COLLECTION_NAME)")
	cmd.PersistentFlags().StringVar(&opts.MountPath, "mount", "", "mount path of the entry routes (default from MOUNT_PATH)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "optional .env file to load")

	cmd.AddCommand(NewOpenAPICommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// ValidFormats defines the allowed output formats of the openapi command.
var ValidFormats = []string{"json", "yaml"}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cschleiden/go-taskmapper/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	envFiles []string

	env *env
}

// NewRootCommand returns the taskmapper command with all its subcommands.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "taskmapper",
		Short:         "Map workflow tasks and manage task definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.envFiles...)
			if err != nil {
				return err
			}

			e, err := newEnv(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			o.env = e

			return nil
		},
	}

	cmd.PersistentFlags().StringSliceVar(&o.envFiles, "env-file", []string{".env"}, "files to load environment variables from")

	cmd.AddCommand(
		newMapCommand(o),
		newTaskDefCommand(o),
	)

	return cmd
}

// run wraps a command so that the environment is closed after it ran, even if it failed.
func (o *rootOptions) run(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := o.env.close(cmd.Context()); err == nil {
				err = cerr
			}
		}()

		return fn(cmd, args)
	}
}

// readDocument decodes a YAML or JSON document from path, or from stdin if path is "-".
func readDocument(cmd *cobra.Command, path string, v any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		r = f
	}

	if err := yaml.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding %v: %w", path, err)
	}

	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

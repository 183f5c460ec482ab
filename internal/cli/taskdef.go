package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newTaskDefCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "taskdef",
		Aliases: []string{"taskdefs"},
		Short:   "Manage task definitions in the configured store",
	}

	cmd.AddCommand(
		newTaskDefPutCommand(o),
		newTaskDefGetCommand(o),
		newTaskDefListCommand(o),
		newTaskDefDeleteCommand(o),
	)

	return cmd
}

func newTaskDefPutCommand(o *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Create or replace task definitions",
		Args:  cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, args []string) error {
			defs, err := readTaskDefs(cmd, file)
			if err != nil {
				return err
			}

			for _, def := range defs {
				if err := o.env.store.PutTaskDef(cmd.Context(), def); err != nil {
					return fmt.Errorf("storing %q: %w", def.Name, err)
				}

				o.env.logger.InfoContext(cmd.Context(), "Stored task definition", slog.String(log.TaskDefNameKey, def.Name))
			}

			return nil
		}),
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "YAML or JSON file with a task definition or a list of them")

	return cmd
}

func newTaskDefGetCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Print a task definition",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, args []string) error {
			def, err := o.env.store.GetTaskDef(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeJSON(cmd, def)
		}),
	}
}

func newTaskDefListCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all task definitions",
		Args:  cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, args []string) error {
			defs, err := o.env.store.ListTaskDefs(cmd.Context())
			if err != nil {
				return err
			}

			return writeJSON(cmd, defs)
		}),
	}
}

func newTaskDefDeleteCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a task definition",
		Args:  cobra.ExactArgs(1),
		RunE: o.run(func(cmd *cobra.Command, args []string) error {
			return o.env.store.DeleteTaskDef(cmd.Context(), args[0])
		}),
	}
}

// readTaskDefs accepts either a single definition or a list of them.
func readTaskDefs(cmd *cobra.Command, path string) ([]*core.TaskDefinition, error) {
	var node yaml.Node
	if err := readDocument(cmd, path, &node); err != nil {
		return nil, err
	}

	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	var defs []*core.TaskDefinition

	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&defs); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		def := &core.TaskDefinition{}
		if err := doc.Decode(def); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	default:
		return nil, errors.New("expected a task definition or a list of task definitions")
	}

	return defs, nil
}

package cli

import (
	"fmt"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/cschleiden/go-taskmapper/mapper"
	"github.com/cschleiden/go-taskmapper/params"
	"github.com/cschleiden/go-taskmapper/planner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type mapOptions struct {
	workflowFile string
	inputFile    string
	taskDefsFile string
	ref          string
	workflowID   string
	retryCount   int
}

func newMapCommand(o *rootOptions) *cobra.Command {
	mo := &mapOptions{}

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Map a task of a workflow definition and print the scheduled tasks",
		Long: "Map a task of a workflow definition and print the scheduled tasks.\n\n" +
			"Without --ref the first task of the workflow is mapped. Task definitions are read from the configured\n" +
			"store, --taskdefs stores additional definitions before mapping.",
		Args: cobra.NoArgs,
		RunE: o.run(func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, o.env, mo)
		}),
	}

	cmd.Flags().StringVarP(&mo.workflowFile, "workflow", "w", "", "YAML or JSON workflow definition")
	cmd.Flags().StringVarP(&mo.inputFile, "input", "i", "", "YAML or JSON workflow input")
	cmd.Flags().StringVar(&mo.taskDefsFile, "taskdefs", "", "YAML or JSON task definitions to store before mapping")
	cmd.Flags().StringVarP(&mo.ref, "ref", "r", "", "reference name of the task to map")
	cmd.Flags().StringVar(&mo.workflowID, "workflow-id", "", "id of the workflow run, random if empty")
	cmd.Flags().IntVar(&mo.retryCount, "retry-count", 0, "map the task as the given retry")
	_ = cmd.MarkFlagRequired("workflow")

	return cmd
}

func runMap(cmd *cobra.Command, e *env, mo *mapOptions) error {
	ctx := cmd.Context()

	if mo.taskDefsFile != "" {
		defs, err := readTaskDefs(cmd, mo.taskDefsFile)
		if err != nil {
			return err
		}

		for _, def := range defs {
			if err := e.store.PutTaskDef(ctx, def); err != nil {
				return fmt.Errorf("storing %q: %w", def.Name, err)
			}
		}
	}

	def := &core.WorkflowDefinition{}
	if err := readDocument(cmd, mo.workflowFile, def); err != nil {
		return err
	}

	var input map[string]any
	if mo.inputFile != "" {
		if err := readDocument(cmd, mo.inputFile, &input); err != nil {
			return err
		}
	}

	if mo.workflowID == "" {
		mo.workflowID = uuid.NewString()
	}

	wf := core.NewWorkflow(mo.workflowID, def, input)

	registry, err := mapper.NewDefaultRegistry(params.NewTemplateResolver(), e.store,
		mapper.WithLogger(e.logger),
		mapper.WithMetrics(e.metrics),
		mapper.WithTracerProvider(e.tracerProvider),
	)
	if err != nil {
		return err
	}

	p := planner.New(registry, e.store,
		planner.WithLogger(e.logger),
		planner.WithMetrics(e.metrics),
		planner.WithTracerProvider(e.tracerProvider),
		planner.WithLookupRetries(e.cfg.LookupRetries, planner.DefaultOptions.LookupBackoff),
	)

	var tasks []*core.Task

	switch {
	case mo.ref == "":
		tasks, err = p.PlanStart(ctx, wf)

	case mo.retryCount > 0:
		wt := def.TaskByRef(mo.ref)
		if wt == nil {
			return fmt.Errorf("%w: %q", planner.ErrUnknownTask, mo.ref)
		}

		tasks, err = p.PlanRetry(ctx, wf, &core.Task{
			TaskID:            uuid.NewString(),
			ReferenceTaskName: mo.ref,
			Status:            core.TaskStatusFailed,
			RetryCount:        mo.retryCount - 1,
			WorkflowTask:      wt,
		})

	default:
		wt := def.TaskByRef(mo.ref)
		if wt == nil {
			return fmt.Errorf("%w: %q", planner.ErrUnknownTask, mo.ref)
		}

		tasks, err = p.Plan(ctx, wf, wt)
	}
	if err != nil {
		return err
	}

	return writeJSON(cmd, tasks)
}

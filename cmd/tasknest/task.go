package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yukikurage/tasknest/internal/app"
	"github.com/yukikurage/tasknest/internal/constants"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/utils"
)

func newTaskCmd(opts *cliOptions) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	taskCmd.AddCommand(
		newTaskAddCmd(opts),
		newTaskListCmd(opts),
		newTaskShowCmd(opts),
		newTaskDoneCmd(opts),
		newTaskEditCmd(opts),
		newTaskRmCmd(opts),
	)

	return taskCmd
}

func newTaskAddCmd(opts *cliOptions) *cobra.Command {
	var (
		priority string
		tagIDs   []uint
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new task",
		Long: `Create a new task with the given title.

Priority is one of low, medium (default) or high.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.CreateTask(ctx, services.CreateTaskInput{
					Title:    args[0],
					Priority: models.Priority(priority),
					TagIDs:   toUint64s(tagIDs),
				})
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task, opts.jsonOutput)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.PriorityMedium), "Task priority (low, medium, high)")
	cmd.Flags().UintSliceVarP(&tagIDs, "tag", "t", nil, "Tag ID to attach (repeatable)")

	return cmd
}

func newTaskListCmd(opts *cliOptions) *cobra.Command {
	var (
		completed bool
		priority  string
		page      int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List active tasks, newest first.

--completed lists completed tasks by completion time instead, and --priority
narrows active tasks to one priority. --page paginates either list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completed && priority != "" {
				return fmt.Errorf("--completed and --priority cannot be combined")
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var (
					tasks      []models.Task
					pagination *utils.PaginationResponse
					err        error
				)

				switch {
				case priority != "":
					tasks, err = a.Tasks.ListTasksByPriority(ctx, models.Priority(priority))
				case page > 0:
					params := utils.NewPaginationParams(page, limit)
					var total int64
					tasks, total, err = a.Tasks.PaginateTasks(ctx, &completed, params.Page, params.Limit)
					if err == nil {
						resp := utils.NewPaginationResponse(params, total)
						pagination = &resp
					}
				case completed:
					tasks, err = a.Tasks.ListCompletedTasks(ctx)
				default:
					tasks, err = a.Tasks.ListActiveTasks(ctx)
				}
				if err != nil {
					return err
				}

				printTaskList(cmd.OutOrStdout(), tasks, pagination, opts.jsonOutput)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "List completed tasks")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only active tasks with this priority")
	cmd.Flags().IntVar(&page, "page", 0, "Page number (enables pagination)")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "Items per page")

	return cmd
}

func newTaskShowCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.GetTask(ctx, id)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task, opts.jsonOutput)
				return nil
			})
		},
	}
}

func newTaskDoneCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.CompleteTask(ctx, id)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task, opts.jsonOutput)
				return nil
			})
		},
	}
}

func newTaskEditCmd(opts *cliOptions) *cobra.Command {
	var (
		title     string
		priority  string
		tagIDs    []uint
		clearTags bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Long: `Edit a task's title, priority or tags. Only the given flags change.

--tags replaces the full tag set; --clear-tags removes every tag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if clearTags && cmd.Flags().Changed("tags") {
				return fmt.Errorf("--tags and --clear-tags cannot be combined")
			}

			var input services.UpdateTaskInput
			if cmd.Flags().Changed("title") {
				input.Title = &title
			}
			if cmd.Flags().Changed("priority") {
				p := models.Priority(priority)
				input.Priority = &p
			}
			if cmd.Flags().Changed("tags") {
				ids := toUint64s(tagIDs)
				input.TagIDs = &ids
			}
			if clearTags {
				ids := []uint64{}
				input.TagIDs = &ids
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				task, err := a.Tasks.UpdateTask(ctx, id, input)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task, opts.jsonOutput)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority")
	cmd.Flags().UintSliceVar(&tagIDs, "tags", nil, "Replace tags with these tag IDs")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "Remove every tag")

	return cmd
}

func newTaskRmCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if _, err := a.Tasks.DeleteTask(ctx, id); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Task %d deleted", id), opts.jsonOutput)
				return nil
			})
		},
	}
}

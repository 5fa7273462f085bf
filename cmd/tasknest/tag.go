package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yukikurage/tasknest/internal/app"
	"github.com/yukikurage/tasknest/internal/services"
)

func newTagCmd(opts *cliOptions) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	tagCmd.AddCommand(
		newTagAddCmd(opts),
		newTagListCmd(opts),
		newTagRmCmd(opts),
	)

	return tagCmd
}

func newTagAddCmd(opts *cliOptions) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				tag, err := a.Tags.CreateTag(ctx, services.CreateTagInput{
					Name:  args[0],
					Color: color,
				})
				if err != nil {
					return err
				}
				printTag(cmd.OutOrStdout(), tag, opts.jsonOutput)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&color, "color", "c", "", "Hex color such as #FF8800")

	return cmd
}

func newTagListCmd(opts *cliOptions) *cobra.Command {
	var (
		search  string
		popular int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags",
		Long: `List tags by name, optionally filtered with --search.

--popular N lists the N most used tags with their task counts instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popularSet := cmd.Flags().Changed("popular")
			if popularSet && search != "" {
				return fmt.Errorf("--search and --popular cannot be combined")
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if popularSet {
					tags, err := a.Tags.PopularTags(ctx, popular)
					if err != nil {
						return err
					}
					printTagCounts(cmd.OutOrStdout(), tags, opts.jsonOutput)
					return nil
				}

				tags, err := a.Tags.ListTags(ctx, search)
				if err != nil {
					return err
				}
				printTagList(cmd.OutOrStdout(), tags, opts.jsonOutput)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only tags whose name contains this text")
	cmd.Flags().IntVar(&popular, "popular", 0, "List the N most used tags")

	return cmd
}

func newTagRmCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a tag and detach it from its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if _, err := a.Tags.DeleteTag(ctx, id); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Tag %d deleted", id), opts.jsonOutput)
				return nil
			})
		},
	}
}

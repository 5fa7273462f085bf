package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yukikurage/tasknest/internal/dto"
	"github.com/yukikurage/tasknest/internal/models"
	"github.com/yukikurage/tasknest/internal/services"
	"github.com/yukikurage/tasknest/internal/utils"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// printTask prints a single task to the writer
func printTask(w io.Writer, task *models.Task, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dto.ToTaskDTO(*task))
		return
	}

	status := "active"
	if task.IsCompleted {
		status = "completed"
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", task.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", task.Title)
	fmt.Fprintf(tw, "Priority:\t%s\n", task.Priority.Label())
	fmt.Fprintf(tw, "Status:\t%s\n", status)
	if len(task.Tags) > 0 {
		fmt.Fprintf(tw, "Tags:\t%s\n", tagNames(task.Tags))
	}
	fmt.Fprintf(tw, "Created:\t%s\n", task.CreatedAt.Format(timeLayout))
	fmt.Fprintf(tw, "Updated:\t%s\n", task.UpdatedAt.Format(timeLayout))
	tw.Flush()
}

// printTaskList prints tasks as a table; pagination may be nil
func printTaskList(w io.Writer, tasks []models.Task, pagination *utils.PaginationResponse, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dto.ToTaskListResponse(tasks, pagination))
		return
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTITLE\tPRIORITY\tTAGS\n")
	fmt.Fprintf(tw, "--\t-----\t--------\t----\n")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			task.ID, truncate(task.Title, 40), task.Priority, tagNames(task.Tags))
	}
	tw.Flush()

	if pagination != nil && pagination.TotalPages > 1 {
		fmt.Fprintf(w, "\nPage %d of %d (%d total tasks)\n",
			pagination.Page, pagination.TotalPages, pagination.Total)
	}
}

func printTag(w io.Writer, tag *models.Tag, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dto.ToTagDTO(*tag))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", tag.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", tag.Name)
	fmt.Fprintf(tw, "Color:\t%s\n", tag.Color)
	tw.Flush()
}

func printTagList(w io.Writer, tags []models.Tag, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dto.ToTagListResponse(tags))
		return
	}

	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tCOLOR\n")
	fmt.Fprintf(tw, "--\t----\t-----\n")
	for _, tag := range tags {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", tag.ID, tag.Name, tag.Color)
	}
	tw.Flush()
}

func printTagCounts(w io.Writer, tags []models.TagCount, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dto.ToTagCountListResponse(tags, nil))
		return
	}

	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNAME\tTASKS\n")
	fmt.Fprintf(tw, "--\t----\t-----\n")
	for _, tag := range tags {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", tag.ID, tag.Name, tag.TaskCount)
	}
	tw.Flush()
}

func printStats(w io.Writer, stats services.TaskStats, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, dto.ToTaskStatsDTO(stats))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Active:\t%d\n", stats.ActiveCount)
	fmt.Fprintf(tw, "Completed:\t%d\n", stats.CompletedCount)
	for level := len(models.Priorities); level >= 1; level-- {
		p, _ := models.PriorityFromLevel(level)
		if count, ok := stats.CountsByPriority[p]; ok {
			fmt.Fprintf(tw, "  %s:\t%d\n", p.Label(), count)
		}
	}
	tw.Flush()
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"message": err.Error(),
			},
		})
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		printJSON(w, map[string]interface{}{
			"message": message,
		})
		return
	}

	fmt.Fprintln(w, message)
}

func tagNames(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return strings.Join(names, ", ")
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

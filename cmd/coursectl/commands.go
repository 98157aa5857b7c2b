package main

import (
	"fmt"
	"lessonhub/internal/catalog"
	"lessonhub/internal/domain"
	"strconv"

	"github.com/spf13/cobra"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default course catalog, skipping slugs that already exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.ensureBackend(cmd.Context())
			if err != nil {
				return err
			}
			result, err := b.Courses.SeedCourses(cmd.Context(), catalog.Default())
			if err != nil {
				return fmt.Errorf("seed courses: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Inserted: %d\n", len(result.Inserted))
			for _, slug := range result.Inserted {
				fmt.Fprintf(out, "  + %s\n", slug)
			}
			fmt.Fprintf(out, "Skipped: %d\n", len(result.Skipped))
			for _, slug := range result.Skipped {
				fmt.Fprintf(out, "  = %s\n", slug)
			}
			return nil
		},
	}
}

func newCoursesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List courses in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.ensureBackend(cmd.Context())
			if err != nil {
				return err
			}
			courses, err := b.Courses.ListCourses(cmd.Context())
			if err != nil {
				return fmt.Errorf("list courses: %w", err)
			}
			if len(courses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses. Run `coursectl seed` to load the default catalog.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), coursesTable(courses).render())
			return nil
		},
	}
}

// coursesTable lists courses with a footer totalling lessons and watch time.
func coursesTable(courses []domain.Course) tableView {
	view := tableView{
		Headers: []string{"Order", "Slug", "Title", "Lessons", "Duration"},
		Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
	}
	lessons, seconds := 0, 0
	for i := range courses {
		c := &courses[i]
		lessons += len(c.Lessons)
		seconds += c.TotalDurationSeconds()
		view.Rows = append(view.Rows, []string{
			strconv.Itoa(c.Order),
			c.Slug,
			c.Title,
			strconv.Itoa(len(c.Lessons)),
			domain.FormatTotalDuration(c.TotalDurationSeconds()),
		})
	}
	view.Footer = []string{"", "", "Total", strconv.Itoa(lessons), domain.FormatTotalDuration(seconds)}
	return view
}

func newProgressCommand(ctx *commandContext) *cobra.Command {
	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect and maintain watch progress",
	}
	progressCmd.AddCommand(newProgressReportCommand(ctx))
	progressCmd.AddCommand(newProgressPruneCommand(ctx))
	return progressCmd
}

func newProgressReportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show completion per profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.ensureBackend(cmd.Context())
			if err != nil {
				return err
			}
			users, err := b.Users.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles.")
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				summary, err := b.Progress.GetProgressSummary(cmd.Context(), u.ID)
				if err != nil {
					return fmt.Errorf("progress for %s: %w", u.Name, err)
				}
				rows = append(rows, []string{
					u.Name,
					strconv.Itoa(summary.Completed),
					strconv.Itoa(summary.Total),
					strconv.Itoa(summary.Percentage) + "%",
					strconv.FormatInt(summary.WatchedToday, 10),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tableView{
				Headers: []string{"Profile", "Completed", "Total", "Progress", "Today"},
				Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				Rows:    rows,
			}.render())
			return nil
		},
	}
}

func newProgressPruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete progress and activity rows that reference deleted courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.ensureBackend(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := b.Progress.PruneOrphans(cmd.Context())
			if err != nil {
				return fmt.Errorf("prune progress: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged progress for %d deleted %s\n", removed, plural(removed, "course", "courses"))
			return nil
		},
	}
}

func newIndexesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.ensureBackend(cmd.Context())
			if err != nil {
				return err
			}
			if b.EnsureIndexes == nil {
				return fmt.Errorf("indexes: no database connection")
			}
			if err := b.EnsureIndexes(cmd.Context()); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Indexes ready")
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/export"
)

func newExportCmd(app appFunc) *cobra.Command {
	var week, format string

	cmd := &cobra.Command{
		Use:       "export <workload|coverage|history>",
		Short:     "Write a weekly report to the reports directory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{service.ReportWorkload, service.ReportCoverage, service.ReportHistory},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			start, err := parseWeek(week)
			if err != nil {
				return err
			}
			file, err := a.Exports.Generate(cmd.Context(), args[0], start, format)
			if err != nil {
				return err
			}
			path, err := a.Exports.Store(file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Any date of the week (YYYY-MM-DD), defaults to the current week")
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or pdf")
	return cmd
}

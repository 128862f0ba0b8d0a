package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/clinic-scheduler-api/internal/cli/formatter"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
)

func newWorkloadCmd(app appFunc) *cobra.Command {
	var week, therapistID string
	var alertsOnly bool

	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Show therapist workload for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			start, err := parseWeek(week)
			if err != nil {
				return err
			}

			var workloads []models.TherapistWorkload
			switch {
			case therapistID != "":
				w, _, err := a.Analytics.Workload(cmd.Context(), therapistID, start)
				if err != nil {
					return err
				}
				workloads = []models.TherapistWorkload{*w}
			case alertsOnly:
				workloads, err = a.Analytics.WorkloadAlerts(cmd.Context(), start)
			default:
				workloads, err = a.Analytics.ListWorkloads(cmd.Context(), start)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkloads(scheduling.FormatDate(start), workloads))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Any date of the week (YYYY-MM-DD), defaults to the current week")
	cmd.Flags().StringVar(&therapistID, "therapist", "", "Limit to one therapist ID")
	cmd.Flags().BoolVar(&alertsOnly, "alerts", false, "Only therapists near or over their limit")
	return cmd
}

func newCoverageCmd(app appFunc) *cobra.Command {
	var week, childID string

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Show therapy coverage of children for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			start, err := parseWeek(week)
			if err != nil {
				return err
			}

			var coverage []models.ChildCoverage
			if childID != "" {
				c, _, err := a.Analytics.Coverage(cmd.Context(), childID, start)
				if err != nil {
					return err
				}
				coverage = []models.ChildCoverage{*c}
			} else if coverage, err = a.Analytics.ListCoverage(cmd.Context(), start); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCoverage(scheduling.FormatDate(start), coverage))
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Any date of the week (YYYY-MM-DD), defaults to the current week")
	cmd.Flags().StringVar(&childID, "child", "", "Limit to one child ID")
	return cmd
}

func parseWeek(raw string) (time.Time, error) {
	if raw == "" {
		return scheduling.WeekStart(time.Now().UTC()), nil
	}
	date, err := scheduling.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--week must be YYYY-MM-DD: %w", err)
	}
	return scheduling.WeekStart(date), nil
}

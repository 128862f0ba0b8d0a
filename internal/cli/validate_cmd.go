package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/clinic-scheduler-api/internal/cli/formatter"
	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
)

// ErrCandidateRejected is returned when a checked session breaks a blocking rule.
var ErrCandidateRejected = errors.New("candidate session rejected")

func newValidateCmd(app appFunc) *cobra.Command {
	var req dto.CandidateRequest

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a proposed session against the clinic rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app(cmd)
			if err != nil {
				return err
			}
			resp, err := a.Schedules.Validate(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatValidation(resp.Validation, resp.Conflicts))
			if !resp.Validation.IsValid {
				return ErrCandidateRejected
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.TherapistID, "therapist", "", "Therapist ID")
	cmd.Flags().StringVar(&req.ChildID, "child", "", "Child ID")
	cmd.Flags().StringVar(&req.Date, "date", "", "Session date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Time, "time", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&req.Duration, "duration", 0, "Length in minutes, defaults to the configured duration")
	cmd.Flags().StringVar(&req.Activity, "activity", "", "Therapy specialty")
	cmd.Flags().StringVar(&req.ScheduleID, "exclude", "", "Existing session ID to ignore, when checking a move")
	_ = cmd.MarkFlagRequired("therapist")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

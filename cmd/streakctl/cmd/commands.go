package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	"github.com/husseinvr97/fasee7System-sub002/internal/service"
	"github.com/husseinvr97/fasee7System-sub002/pkg/config"
	"github.com/husseinvr97/fasee7System-sub002/pkg/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			applied, err := database.Migrate(cmd.Context(), sess.db, database.Migrations())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			}
			sess.logger.Info("migrations applied", zap.Ints("versions", applied))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied migrations %v\n", applied)
			return nil
		},
	}
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <student-id> [absence|behavioral]",
		Short: "Print the live streaks of a student.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := models.TrackingKinds()
			if len(args) == 2 {
				kind, ok := models.ParseTrackingKind(args[1])
				if !ok {
					return fmt.Errorf("unknown tracking kind %q", args[1])
				}
				kinds = []models.TrackingKind{kind}
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			svc := sess.consecutivity()
			for _, kind := range kinds {
				streak, err := readStreak(cmd.Context(), svc, args[0], kind)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatCount(streak))
			}
			return nil
		},
	}
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <student-id>",
		Short: "Zero every streak of a student without changing its archive state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			if err := sess.consecutivity().ResetAllTracking(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset tracking for %s\n", args[0])
			return nil
		},
	}
}

func newTokenCommand() *cobra.Command {
	var (
		userID string
		role   string
		email  string
		ttl    time.Duration
	)
	command := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token with JWT_SECRET for local testing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userRole := models.UserRole(strings.ToUpper(role))
			switch userRole {
			case models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			auth := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, AccessTokenExpiry: ttl})
			token, _, err := auth.IssueToken(userID, userRole, email)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	command.Flags().StringVarP(&userID, "user", "u", "operator", "user id placed in the token")
	command.Flags().StringVarP(&role, "role", "r", string(models.RoleAdmin), "SUPERADMIN, ADMIN or TEACHER")
	command.Flags().StringVar(&email, "email", "", "optional email claim")
	command.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return command
}

type streakReader interface {
	GetConsecutiveCount(ctx context.Context, studentID string, kind models.TrackingKind) (int, error)
	HasReachedWarningThreshold(ctx context.Context, studentID string, kind models.TrackingKind) (bool, error)
	HasReachedArchivalThreshold(ctx context.Context, studentID string) (bool, error)
}

// readStreak asks the query service for the count and threshold flags of one kind.
// The archival flag is only read for absences.
func readStreak(ctx context.Context, svc streakReader, studentID string, kind models.TrackingKind) (models.ConsecutiveCount, error) {
	streak := models.ConsecutiveCount{StudentID: studentID, Kind: kind}
	var err error
	if streak.Count, err = svc.GetConsecutiveCount(ctx, studentID, kind); err != nil {
		return streak, err
	}
	if streak.WarningReached, err = svc.HasReachedWarningThreshold(ctx, studentID, kind); err != nil {
		return streak, err
	}
	if kind == models.TrackingKindAbsence {
		archival, err := svc.HasReachedArchivalThreshold(ctx, studentID)
		if err != nil {
			return streak, err
		}
		streak.ArchivalReached = &archival
	}
	return streak, nil
}

func formatCount(streak models.ConsecutiveCount) string {
	line := fmt.Sprintf("%-20s %d", streak.Kind, streak.Count)
	if streak.WarningReached {
		line += "  WARNING"
	}
	if streak.ArchivalReached != nil && *streak.ArchivalReached {
		line += "  ARCHIVAL"
	}
	return line
}

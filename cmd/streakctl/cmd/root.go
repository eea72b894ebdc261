package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/husseinvr97/fasee7System-sub002/internal/events"
	"github.com/husseinvr97/fasee7System-sub002/internal/repository"
	"github.com/husseinvr97/fasee7System-sub002/internal/service"
	"github.com/husseinvr97/fasee7System-sub002/pkg/config"
	"github.com/husseinvr97/fasee7System-sub002/pkg/database"
	"github.com/husseinvr97/fasee7System-sub002/pkg/logger"
)

// session holds what database-backed subcommands share.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
}

func (s *session) close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.logger.Sync()
}

func (s *session) consecutivity() *service.ConsecutivityService {
	bus := events.NewBus(nil, s.logger)
	return service.NewConsecutivityService(
		repository.NewConsecutivityRepository(s.db),
		repository.NewBehaviorRepository(s.db),
		bus,
		nil,
		nil,
		s.logger,
		s.cfg.Consecutivity.HistoryLimit,
	)
}

// openSession loads configuration the same way the API does and connects to Postgres.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &session{cfg: cfg, logger: logr, db: db}, nil
}

// NewRootCommand builds the streakctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "streakctl",
		Short: "Operate the consecutivity tracking store.",
		Long: `Operator tool for the consecutivity tracking store.

Reads the same .env and environment variables as the API server.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCommand(),
		newCountCommand(),
		newResetCommand(),
		newTokenCommand(),
	)
	return root
}

// Execute runs streakctl and exits with non-zero status on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/migrations"
	"taskboard/internal/server"
)

// @title           Taskboard API
// @version         1.0
// @description     Boards, lists and cards with live board updates.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	log := logrus.New()
	if err := newRootCmd(log).Execute(); err != nil {
		log.WithError(err).Error("❌ command failed")
		os.Exit(1)
	}
}

func newRootCmd(log *logrus.Logger) *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load(log)
			configureLogger(log, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, log)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, log)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrations.Up(cfg.MigrateURL(), log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrations.Down(cfg.MigrateURL(), log)
			},
		},
	)

	root.AddCommand(serveCmd, migrateCmd)
	return root
}

func serve(cfg *config.Config, log *logrus.Logger) error {
	s, err := server.Init(cfg, log)
	if err != nil {
		return err
	}
	return s.Run()
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("value", cfg.LogLevel).Warn("⚠️  Unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
}

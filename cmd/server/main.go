package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"erp-backend/internal/auth"
	"erp-backend/internal/config"
	"erp-backend/internal/database"
	"erp-backend/internal/logging"
	"erp-backend/internal/notification"
	"erp-backend/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("erp-backend %s\n", version)
		},
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	rootCmd = &cobra.Command{
		Use:          "erp-backend",
		Short:        "ERP back end",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logger oluşturulamadı: %w", err)
	}
	return cfg, logger, nil
}

func migrate() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Info("migration tamamlandı", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

func serve() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("geçersiz yapılandırma", zap.Error(err))
		return err
	}
	if err := database.Init(cfg); err != nil {
		logger.Error("veritabanı başlatılamadı", zap.Error(err))
		return err
	}

	store, err := auth.NewStore(cfg)
	if err != nil {
		logger.Error("session store başlatılamadı", zap.Error(err))
		return err
	}
	m := auth.NewManager(cfg, store)
	app := server.New(cfg, m, notification.NewMailer(cfg.SMTP))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sunucu başlatılıyor", zap.String("port", cfg.HTTPPort))
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("sunucu durdu", zap.Error(err))
		}
		return err
	case sig := <-quit:
		logger.Info("kapatma sinyali alındı", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("sunucu düzgün kapatılamadı", zap.Error(err))
		return err
	}
	logger.Info("sunucu kapatıldı")
	return nil
}

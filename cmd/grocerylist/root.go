package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"grocery-list/internal/api"
	"grocery-list/internal/config"
	"grocery-list/internal/metrics"
	"grocery-list/internal/repository"
	"grocery-list/internal/service"
	"grocery-list/internal/web"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "grocerylist",
		Short:        "Grocery list backend and web app",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the database from the demo snapshot once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return resetOnce(cmd.Context(), cfg)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
}

func openDB(cfg config.Config) (*gorm.DB, func(), error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	return db, func() { sqlDB.Close() }, nil
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"port":     cfg.Port,
		"database": cfg.DatabaseURL,
		"demo":     cfg.Demo,
	}).Info("starting grocery list backend")

	db, closeDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	categoryRepo := repository.NewCategoryRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	nameRepo := repository.NewNameRepository(db)

	categorySvc := service.NewCategoryService(categoryRepo)
	entrySvc := service.NewEntryService(entryRepo, nameRepo)

	if cfg.Demo {
		scheduler, err := startDemoReset(db, cfg)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	static, err := api.NewStaticHandler(web.Assets(), cfg.Demo)
	if err != nil {
		return fmt.Errorf("static: %w", err)
	}
	e := api.New(categorySvc, entrySvc, static)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr()).Info("grocery list API server running")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// startDemoReset resets right away and then on every interval.
func startDemoReset(db *gorm.DB, cfg config.Config) (*service.SchedulerService, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	resetSvc := service.NewResetService(sqlDB, cfg.DemoDBPath, repository.Tables)
	job := func() {
		resetSvc.RunReset(context.Background(), metrics.RecordReset)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ResetInterval, job); err != nil {
		return nil, fmt.Errorf("schedule reset: %w", err)
	}
	job()
	scheduler.Start()
	log.WithFields(log.Fields{
		"snapshot": cfg.DemoDBPath,
		"interval": cfg.ResetInterval,
	}).Info("demo reset scheduled")
	return scheduler, nil
}

func resetOnce(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, closeDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := service.NewResetService(sqlDB, cfg.DemoDBPath, repository.Tables).Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	log.Info("database reset completed")
	return nil
}

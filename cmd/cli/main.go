package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencourt/playday/internal/config"
	"github.com/opencourt/playday/pkg/api"
	"github.com/opencourt/playday/pkg/clients/gmailclient"
	"github.com/opencourt/playday/pkg/core/schedule"
	"github.com/opencourt/playday/pkg/core/services"
	"github.com/opencourt/playday/pkg/postgres"
	"github.com/opencourt/playday/pkg/utils"
	"github.com/opencourt/playday/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg        *config.Config
	database   *postgres.DB
	dispatcher services.Dispatcher
	logger     *zap.Logger
	ctx        context.Context
}

var (
	env        string
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "playday",
		Short: "Play day coordinator - manage events, clinics, attendance and volunteers",
		Long:  `A coordinator for community play days: recurring events, capacity-limited clinics, attendance sign-ups and the volunteer workflow.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "dev", "Environment (dev, test, prod)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (defaults to playday_config.yaml lookup)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateScheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and the notification dispatcher
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	app.logger.Info("Loading configuration")
	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.logger.Info("Connecting to database")
	app.database, err = postgres.NewDB(app.ctx, app.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.logger.Debug("Database connection established")

	// The dispatcher is optional: without gmail credentials the app still
	// runs, it just reports NotifySent=false on every mutation.
	if app.cfg.OAuthClient != nil && app.cfg.GmailSender != "" {
		app.logger.Info("Initializing gmail dispatcher")
		oauthConfig, err := utils.GetOAuthConfig(app.cfg.OAuthClient)
		if err != nil {
			return fmt.Errorf("failed to build oauth config: %w", err)
		}
		token, err := utils.GetTokenWithFlow(app.ctx, oauthConfig, env)
		if err != nil {
			return fmt.Errorf("failed to obtain oauth token: %w", err)
		}
		gmailClient, err := gmailclient.NewClient(app.ctx, app.cfg.OAuthClient, token, app.cfg.GmailSender)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
		app.dispatcher = gmailClient
		app.logger.Debug("Gmail dispatcher initialized successfully")
	} else {
		app.logger.Info("No gmail credentials configured, notifications disabled")
	}

	return nil
}

// Command definitions

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := api.NewDirectoryIdentity(app.database)
			handler := api.NewHandler(app.database, app.dispatcher, identity, app.logger)

			server := &http.Server{
				Addr:    app.cfg.ListenAddr,
				Handler: api.NewRouter(handler),
			}

			ctx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.logger.Info("HTTP server listening", zap.String("addr", app.cfg.ListenAddr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}

			app.logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}

			app.logger.Info("Server stopped")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.database.RunMigrations(app.ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("\n\u2713 Migrations applied successfully!")
			return nil
		},
	}
}

func generateScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generateSchedule <count>",
		Short: "Generate upcoming events from the configured recurrence rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("count must be a number: %w", err)
			}
			createdBy, _ := cmd.Flags().GetString("created-by")

			if len(app.cfg.ScheduleRules) == 0 {
				fmt.Println("No schedule rules configured - nothing to generate.")
				return nil
			}

			total := 0
			for _, cfgRule := range app.cfg.ScheduleRules {
				rule := schedule.Rule{
					RRule:       cfgRule.RRule,
					Title:       cfgRule.Title,
					Description: cfgRule.Description,
					StartTime:   cfgRule.StartTime,
					EndTime:     cfgRule.EndTime,
					Courts:      cfgRule.Courts,
				}

				events, err := schedule.Generate(app.ctx, app.database, app.logger, rule, createdBy, count)
				if err != nil {
					return fmt.Errorf("failed to generate schedule for %q: %w", cfgRule.Title, err)
				}

				fmt.Printf("\n\u2713 Generated %d events for %q:\n\n", len(events), cfgRule.Title)
				for i, event := range events {
					fmt.Printf("  %2d. %s (%s - %s)\n", i+1, event.EventDate.Format("2006-01-02 (Monday)"), event.StartTime, event.EndTime)
				}
				total += len(events)
			}

			fmt.Printf("\n%d events created in total.\n\n", total)
			return nil
		},
	}

	cmd.Flags().String("created-by", "", "Member id recorded as the event creator")
	cmd.MarkFlagRequired("created-by")

	return cmd
}

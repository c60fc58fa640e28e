package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	httpapi "github.com/i474232898/weather-subscription-bot/internal/api/http"
	"github.com/i474232898/weather-subscription-bot/internal/bot"
	"github.com/i474232898/weather-subscription-bot/internal/config"
	"github.com/i474232898/weather-subscription-bot/internal/reconcile"
	"github.com/i474232898/weather-subscription-bot/internal/scheduler"
	"github.com/i474232898/weather-subscription-bot/internal/store"
	"github.com/i474232898/weather-subscription-bot/internal/store/db"
	"github.com/i474232898/weather-subscription-bot/internal/telegram"
	"github.com/i474232898/weather-subscription-bot/internal/weather"
	"github.com/i474232898/weather-subscription-bot/internal/weather/providers"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:          "weather-subscription-bot",
		Short:        "Telegram bot that notifies subscribers when a forecast changes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(v)
		},
	}

	pf := root.PersistentFlags()
	pf.String("db", "", "sqlite database file (WEATHER_BOT_DB)")
	pf.String("db-driver", "", "database driver: sqlite, postgres or mysql (WEATHER_BOT_DB_DRIVER)")
	pf.String("dsn", "", "postgres/mysql DSN (WEATHER_BOT_DSN)")
	root.Flags().String("port", "", "admin API port, 0 disables it (PORT)")
	root.Flags().String("admin-addr", "", "admin API bind address (ADMIN_ADDR, default 127.0.0.1)")
	root.Flags().Duration("interval", 0, "reconciliation interval (RECHECK_INTERVAL)")

	bindFlag(v, config.KeyDBPath, pf.Lookup("db"))
	bindFlag(v, config.KeyDBDriver, pf.Lookup("db-driver"))
	bindFlag(v, config.KeyDBDSN, pf.Lookup("dsn"))
	bindFlag(v, config.KeyPort, root.Flags().Lookup("port"))
	bindFlag(v, config.KeyAdminAddr, root.Flags().Lookup("admin-addr"))
	bindFlag(v, config.KeyRecheckInterval, root.Flags().Lookup("interval"))

	root.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass over all subscriptions and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reconcileOnce(v)
		},
	})

	return root
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		log.Fatalf("failed to bind flag %s: %v", flag.Name, err)
	}
}

// deps are the pieces shared by every subcommand.
type deps struct {
	cfg      *config.AppConfig
	store    *store.Store
	weather  *weather.Service
	telegram *telegram.Client
}

func setup(v *viper.Viper) (*deps, error) {
	// Load configuration.
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	driver, err := db.NewDBDriver(&db.Profile{Driver: cfg.DBDriver, Path: cfg.DBPath, DSN: cfg.DBDSN})
	if err != nil {
		return nil, err
	}
	st := store.New(driver)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := providers.NewOpenWeatherProvider(httpClient, cfg.WeatherAPIKey,
		providers.WithLanguage(cfg.WeatherLang),
		providers.WithRateLimit(cfg.WeatherRPS, cfg.WeatherBurst),
	)

	tg, err := telegram.New(cfg.TelegramToken)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &deps{
		cfg:      cfg,
		store:    st,
		weather:  weather.NewService(provider, cfg.HTTPTimeout),
		telegram: tg,
	}, nil
}

func serve(v *viper.Viper) error {
	d, err := setup(v)
	if err != nil {
		log.Printf("ERROR: startup failed: %v", err)
		return err
	}
	defer d.store.Close()

	reconciler := reconcile.New(d.store, d.weather, d.telegram)

	// Scheduler that periodically re-checks every subscription.
	sched := scheduler.New(reconciler, d.cfg.RecheckInterval, d.cfg.RecheckCron)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	b := bot.New(d.store, d.weather, sched, d.telegram)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var app *fiber.App
	if d.cfg.Port != "" {
		app = newAdminApp(d.store, sched)
		addr := net.JoinHostPort(d.cfg.AdminAddr, d.cfg.Port)
		log.Printf("INFO: admin API listening on %s", addr)
		go func() {
			if err := app.Listen(addr); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()
	}

	runErr := d.telegram.Run(ctx, b)

	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
	return runErr
}

func newAdminApp(st *store.Store, sched *scheduler.Scheduler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-subscription-bot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-subscription-bot",
			"running": sched.Running(),
		})
	})

	httpapi.RegisterRoutes(app, st, sched)
	return app
}

func reconcileOnce(v *viper.Viper) error {
	d, err := setup(v)
	if err != nil {
		return err
	}
	defer d.store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := reconcile.New(d.store, d.weather, d.telegram).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: checked=%d changed=%d failed=%d notified=%d\n",
		res.RunID, res.Checked, res.Changed, res.Failed, res.Notified)
	return nil
}

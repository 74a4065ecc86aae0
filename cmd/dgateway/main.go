// Command dgateway runs the Data Gateway (D): schema owner, catalog
// bootstrapper, domain services, the internal msgpack API consumed by the
// Edge, and the notification scheduler loop.
package main

import (
	"context"
	"log"
	"net/http"
	"net/smtp"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timel-e/core/internal/cartsvc"
	"github.com/timel-e/core/internal/catalog"
	"github.com/timel-e/core/internal/config"
	"github.com/timel-e/core/internal/database"
	"github.com/timel-e/core/internal/gatewayapi"
	"github.com/timel-e/core/internal/identity"
	"github.com/timel-e/core/internal/mongoaudit"
	"github.com/timel-e/core/internal/ordersvc"
	"github.com/timel-e/core/internal/scheduler"
	"github.com/timel-e/core/utils"
)

func main() {
	if err := godotenv.Load(".env.development"); err != nil {
		log.Printf("Warning: assuming default configuration, env unreadable: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	var resetDB bool
	var tickSeconds int

	rootCmd := &cobra.Command{
		Use:   "dgateway",
		Short: "Run the TimeL-E data gateway",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(v)
		},
	}
	rootCmd.PersistentFlags().StringP("port", "p", "8081", "port D listens on")
	rootCmd.PersistentFlags().BoolVar(&resetDB, "reset-db", false, "drop and recreate the schema before applying it")
	rootCmd.PersistentFlags().IntVar(&tickSeconds, "tick-period", 0, "notification scheduler tick period in seconds (0: use TICK_PERIOD_SECONDS env)")

	_ = v.BindPFlag("GATEWAY_PORT", rootCmd.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("RESET_DATABASE_ON_STARTUP", rootCmd.PersistentFlags().Lookup("reset-db"))
	_ = v.BindPFlag("TICK_PERIOD_SECONDS", rootCmd.PersistentFlags().Lookup("tick-period"))

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("dgateway: %v", err)
	}
}

func run(v *viper.Viper) error {
	logger := utils.InitLogger()
	cfg := config.MustLoadGatewayConfig(config.NewViperProvider(v))

	ctx := context.Background()
	if cfg.ResetDatabaseOnStartup {
		if err := database.ResetSchema(ctx, cfg.DBConn); err != nil {
			logger.Fatalf("resetting schema failed: %v", err)
		}
	}
	if err := database.ApplySchema(ctx, cfg.DBConn); err != nil {
		logger.Fatalf("applying schema failed: %v", err)
	}
	if cfg.CatalogCSVPath != "" {
		if err := catalog.Bootstrap(ctx, cfg.DB, catalog.BootstrapConfig{Dir: cfg.CatalogCSVPath}, logger); err != nil {
			logger.Fatalf("bootstrapping catalog failed: %v", err)
		}
	}

	gwCfg := &gatewayapi.Config{
		Identity: identity.NewService(cfg.DB, cfg.AppNamespace),
		Cart:     cartsvc.NewService(cfg.DBConn),
		Order:    ordersvc.NewService(cfg.DBConn),
		Catalog:  catalog.NewService(cfg.DB),
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gatewayapi.Router(gwCfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof("data gateway serving on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("data gateway server failed: %v", err)
		}
	}()

	var audit *mongoaudit.Service
	if cfg.MongoDB != nil {
		audit = mongoaudit.NewService(cfg.MongoDB)
	} else {
		logger.Warn("mongo not configured, notification scheduler audit trail disabled")
	}
	var mailer scheduler.Mailer
	if smtpAddr := v.GetString("SMTP_ADDR"); smtpAddr != "" {
		auth := smtp.PlainAuth("", v.GetString("SMTP_USERNAME"), v.GetString("SMTP_PASSWORD"), v.GetString("SMTP_HOST"))
		mailer = scheduler.NewSMTPMailer(smtpAddr, auth)
	}
	sched := scheduler.New(cfg.DBConn, audit, mailer, logger, cfg.NotificationEmail, cfg.TickPeriod)
	go sched.Run(ctx)

	utils.GracefulShutdown(srv, cfg, 10*time.Second)
	return nil
}

// Command edge runs the Edge API (E): the browser-facing HTTP surface.
// It owns no database connection of its own — every domain operation is
// forwarded to the Data Gateway over internal/dclient.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/timel-e/core/internal/config"
	"github.com/timel-e/core/internal/dclient"
	"github.com/timel-e/core/internal/edgeapi"
	"github.com/timel-e/core/internal/recommender"
	"github.com/timel-e/core/utils"
)

func main() {
	if err := godotenv.Load(".env.development"); err != nil {
		log.Printf("Warning: assuming default configuration, env unreadable: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "edge",
		Short: "Run the TimeL-E edge API",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(v)
		},
	}
	rootCmd.PersistentFlags().StringP("port", "p", "8080", "port the edge API listens on")
	rootCmd.PersistentFlags().String("dgateway-url", "http://localhost:8081", "base URL of the data gateway")
	rootCmd.PersistentFlags().String("ml-url", "", "base URL of the recommender service")

	_ = v.BindPFlag("PORT", rootCmd.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("DB_SERVICE_URL", rootCmd.PersistentFlags().Lookup("dgateway-url"))
	_ = v.BindPFlag("ML_SERVICE_URL", rootCmd.PersistentFlags().Lookup("ml-url"))

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("edge: %v", err)
	}
}

func run(v *viper.Viper) error {
	logger := utils.InitLogger()
	cfg := config.MustLoadEdgeConfig(config.NewViperProvider(v))

	dGateway := dclient.New(cfg.DBServiceURL, cfg.DBServiceTimeout)
	waitForGateway(logger, dGateway)

	edgeCfg := &edgeapi.Config{
		DGateway:       dGateway,
		Recommender:    recommender.New(cfg.MLServiceURL),
		RedisClient:    cfg.RedisClient,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      edgeapi.Router(edgeCfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Infof("edge api serving on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("edge server failed: %v", err)
		}
	}()

	utils.GracefulShutdown(srv, cfg, 10*time.Second)
	return nil
}

// waitForGateway blocks until the Data Gateway's health probe succeeds, so
// the Edge never accepts traffic before D does. It logs one warning if D is
// still unhealthy after 60s and keeps polling.
func waitForGateway(logger interface{ Warnf(string, ...any) }, client *dclient.Client) {
	ctx := context.Background()
	warnAt := time.Now().Add(60 * time.Second)
	warned := false

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if client.Health(ctx) == nil {
			return
		}
		if !warned && time.Now().After(warnAt) {
			logger.Warnf("data gateway did not become healthy within startup window, still waiting")
			warned = true
		}
		<-ticker.C
	}
}

package edgeapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/timel-e/core/internal/dclient"
	"github.com/timel-e/core/internal/recommender"
	"github.com/timel-e/core/middlewares"
	"github.com/timel-e/core/utils"
)

// productCacheTTL bounds how long a catalog listing may be served stale.
// Products are operator-curated and change rarely, so a short TTL trades a
// little staleness for a lot of load off the data gateway.
const productCacheTTL = 30 * time.Second

// Config bundles what the Edge's handlers need: a client for D, a client
// for M, and the cross-cutting pieces borrowed from the ambient stack.
type Config struct {
	DGateway       *dclient.Client
	Recommender    *recommender.Client
	RedisClient    redis.Cmdable
	Logger         *logrus.Logger
	AllowedOrigins []string
}

// Router builds the browser-facing chi router. All paths are prefixed
// /api except for the liveness probe.
func Router(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.SecurityHeaders)
	r.Use(middlewares.LoggingMiddleware(cfg.Logger, map[string]struct{}{"/": {}}, map[string]struct{}{"/api/health": {}, "/health": {}}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RedisClient != nil {
		r.Use(middlewares.RedisRateLimiter(cfg.RedisClient, 120, time.Minute))
	}

	r.Get("/health", cfg.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", cfg.handleHealth)

		api.Route("/users", func(r chi.Router) {
			r.Post("/register", cfg.handleRegister)
			r.Post("/login", cfg.handleLogin)
			r.Post("/logout", cfg.handleLogout)
			r.Get("/{userId}", cfg.handleGetProfile)
			r.Put("/{userId}", cfg.handleUpdateProfile)
			r.Delete("/{userId}", cfg.handleDeleteUser)
			r.Put("/{userId}/password", cfg.handleChangePassword)
			r.Put("/{userId}/email", cfg.handleChangeEmail)
			r.Get("/{userId}/notification-settings", cfg.handleGetNotificationSettings)
			r.Put("/{userId}/notification-settings", cfg.handleUpdateNotificationSettings)
			r.Get("/{userId}/order-status-notifications", cfg.handleOrderStatusNotifications)
		})

		api.Route("/cart", func(r chi.Router) {
			r.Post("/", cfg.handleCreateCart)
			r.Get("/{userId}", cfg.handleGetCart)
			r.Put("/{userId}", cfg.handleReplaceCart)
			r.Delete("/{userId}", cfg.handleDeleteCart)
			r.Delete("/{userId}/clear", cfg.handleClearCart)
			r.Post("/{userId}/checkout", cfg.handleCheckout)
			r.Post("/{userId}/items", cfg.handleAddCartItem)
			r.Put("/{userId}/items/{productId}", cfg.handleSetCartItemQuantity)
			r.Delete("/{userId}/items/{productId}", cfg.handleRemoveCartItem)
		})

		api.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.handleCreateDirectOrder)
			r.Get("/user/{userId}", cfg.handleListOrdersByUser)
			r.Get("/{orderId}", cfg.handleGetOrder)
		})

		api.Route("/products", func(r chi.Router) {
			if cfg.RedisClient != nil {
				r.Use(middlewares.CacheMiddleware(middlewares.CacheConfig{
					TTL:          productCacheTTL,
					KeyPrefix:    "products",
					CacheService: utils.NewCacheService(cfg.RedisClient),
				}))
			}
			r.Get("/", cfg.handleBrowseProducts)
			r.Get("/search", cfg.handleBrowseProducts)
			r.Get("/{id}", cfg.handleGetProduct)
			r.Get("/department/{departmentId}", cfg.handleProductsByDepartment)
			r.Get("/aisle/{aisleId}", cfg.handleProductsByAisle)
		})

		api.Get("/predictions/user/{userId}", cfg.handlePredictions)
	})

	return r
}

func (cfg *Config) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := cfg.DGateway.Health(r.Context()); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{"status": status})
}

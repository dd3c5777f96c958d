package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"homiepro-storefront/internal/auth"
	"homiepro-storefront/internal/catalog"
	"homiepro-storefront/internal/chat"
	"homiepro-storefront/internal/config"
	"homiepro-storefront/internal/db"
	"homiepro-storefront/internal/featureflags"
	mw "homiepro-storefront/internal/http/middleware"
	"homiepro-storefront/internal/logger"
	"homiepro-storefront/internal/shop"
)

// tokenLifetime bounds how long a session token is accepted. Idle sessions
// are evicted well before that.
const tokenLifetime = 24 * time.Hour

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1) Feature flags init (non-fatal)
	flagCtx, flagCancel := context.WithTimeout(ctx, 20*time.Second)
	if err := featureflags.Init(flagCtx, cfg.RolloutKey); err != nil {
		logger.Warnf("feature flags init warning: %v (using defaults)", err)
	}
	flagCancel()
	defer featureflags.Shutdown()

	// 1a) Initialize levelled logger from flag & watch for flips
	logger.Init(featureflags.Values().LogLevel.GetValue(nil))
	logger.Infof("log level set to %s", logger.GetLevel())
	go watchLogLevel(ctx, 5*time.Second)

	// 2) Catalog
	sqlDB, products, err := loadCatalog(ctx, cfg)
	if err != nil {
		logger.Errorf("catalog load failed: %v", err)
		os.Exit(1)
	}
	if sqlDB != nil {
		defer sqlDB.Close()
	}
	store, err := catalog.NewStore(products)
	if err != nil {
		logger.Errorf("catalog invalid: %v", err)
		os.Exit(1)
	}
	logger.Infof("catalog ready: %d products", store.Len())

	// 3) Chat gateway
	gateway := chat.Unavailable
	if cfg.GeminiAPIKey != "" {
		gg, err := chat.NewGeminiGateway(ctx, cfg.GeminiAPIKey, cfg.GeminiModel,
			chat.WithTimeout(cfg.ChatTimeout), chat.WithHistoryLimit(cfg.ChatHistoryLimit))
		if err != nil {
			logger.Warnf("chat gateway init failed, assistant will apologise: %v", err)
		} else {
			gateway = gg
			logger.Infof("chat gateway ready: model=%s", cfg.GeminiModel)
		}
	} else {
		logger.Warnf("no GEMINI_API_KEY set, assistant will apologise")
	}

	// 4) Sessions
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		logger.Warnf("JWT_SECRET not set, using a per-process secret")
		if secret, err = auth.RandomSecret(); err != nil {
			logger.Errorf("session secret: %v", err)
			os.Exit(1)
		}
	}
	signer, err := auth.NewSigner(secret, tokenLifetime)
	if err != nil {
		logger.Errorf("session signer: %v", err)
		os.Exit(1)
	}
	registry := shop.NewRegistry(store, gateway, cfg.SessionTTL)
	go registry.Run(ctx, cfg.SessionSweepInterval)

	// 5) Router
	r := newRouter(routerDeps{
		store:    store,
		registry: registry,
		signer:   signer,
		sqlDB:    sqlDB,
		offline:  func() bool { return featureflags.Values().Offline.IsEnabled(nil) },
		assistantEnabled: func() bool {
			return featureflags.Values().AssistantEnabled.IsEnabled(nil)
		},
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg.ChatTimeout),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Infof("homiepro-storefront listening on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server error: %v", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logger.Infof("shutdown signal %s", sig)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown error: %v", err)
	}
	logger.Infof("homiepro-storefront stopped")
}

// writeTimeout leaves room for a chat request to wait out the completion
// service. An unbounded chat timeout means an unbounded write.
func writeTimeout(chat time.Duration) time.Duration {
	if chat <= 0 {
		return 0
	}
	return chat + 10*time.Second
}

// loadCatalog reads the catalog from PostgreSQL when a URL is configured and
// from the built-in seed otherwise. The returned *sql.DB is nil for the seed.
func loadCatalog(ctx context.Context, cfg config.Config) (*sql.DB, []catalog.Product, error) {
	sqlDB, err := db.Init(ctx, cfg.CatalogDatabaseURL)
	if errors.Is(err, db.ErrNotConfigured) {
		logger.Infof("no CATALOG_DATABASE_URL, serving the built-in catalog")
		products, err := catalog.LoadSeed()
		return nil, products, err
	}
	if err != nil {
		return nil, nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	products, err := catalog.LoadFromDB(loadCtx, sqlDB, cfg.CatalogTable)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return sqlDB, products, nil
}

func watchLogLevel(ctx context.Context, every time.Duration) {
	prev := featureflags.Values().LogLevel.GetValue(nil)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cur := featureflags.Values().LogLevel.GetValue(nil)
			if cur != prev {
				logger.SetLevel(cur)
				logger.Infof("log level changed to %s", logger.GetLevel())
				prev = cur
			}
		}
	}
}

type routerDeps struct {
	store            *catalog.Store
	registry         *shop.Registry
	signer           *auth.Signer
	sqlDB            *sql.DB
	offline          func() bool
	assistantEnabled func() bool
}

func newRouter(d routerDeps) *mux.Router {
	r := mux.NewRouter()

	// Offline kill-switch middleware (placed immediately after router creation)
	offlineGate := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// always allow health checks
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				next.ServeHTTP(w, r)
				return
			}
			if d.offline != nil && d.offline() {
				http.Error(w, "service temporarily offline", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	r.Use(mw.RequestID)
	r.Use(offlineGate)

	// Request logger (skip noisy health endpoints)
	r.Use(mw.LogRequests(mw.WithSkips("/health", "/ready")))

	// Health endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, req *http.Request) {
		if d.store == nil || d.store.Len() == 0 {
			http.Error(w, "catalog not ready", http.StatusServiceUnavailable)
			return
		}
		if d.sqlDB != nil {
			if err := d.sqlDB.PingContext(req.Context()); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)

	// Inspect current flag values
	r.HandleFunc("/_flags", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"offline":          featureflags.Values().Offline.IsEnabled(nil),
			"assistantEnabled": featureflags.Values().AssistantEnabled.IsEnabled(nil),
			"logLevel":         featureflags.Values().LogLevel.GetValue(nil),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)

	// Product catalog endpoints; featured must precede {id}
	catalogHandler := catalog.NewHandler(d.store)
	r.HandleFunc("/api/products", catalogHandler.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/featured", catalogHandler.FeaturedProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", catalogHandler.GetProduct).Methods(http.MethodGet)

	// Session-scoped storefront endpoints
	shop.NewHandler(d.registry, d.signer, d.assistantEnabled).Routes(r)

	return r
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"mediascout/internal/admin"
	"mediascout/internal/auth"
	"mediascout/internal/localization"
	"mediascout/internal/provider"
	"mediascout/internal/recommend"
	"mediascout/pkg/database"
	"mediascout/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// request id for log correlation
	router.Use(func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	registry := buildRegistry(utils.LoadProviderConfig())

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not_ready",
				"db_error":  err.Error(),
				"providers": registry.Providers(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"db":        "ok",
			"providers": registry.Providers(),
		})
	})

	// Recommendations + autocomplete (public)
	locRepo := localization.NewRepo(db)
	pipeline := recommend.NewPipeline(registry, locRepo)
	recHandler := recommend.NewHandler(pipeline, registry)
	recHandler.RegisterRoutes(router.Group(""))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authHandler := auth.NewHandler(auth.Credentials{
		Username:     authCfg.AdminUser,
		PasswordHash: authCfg.AdminPasswordHash,
	}, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Admin (protected)
	adminGroup := router.Group("/admin")
	adminGroup.Use(auth.AuthMiddleware(tokenSvc))
	admin.NewHandler(registry, locRepo).RegisterRoutes(adminGroup)

	srvCfg := utils.LoadServerConfig()
	httpSrv := &http.Server{
		Addr:    srvCfg.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", srvCfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// buildRegistry wires the enabled providers in configured order. A provider
// the config names but we cannot construct (tmdb without an api key) is
// skipped with a warning rather than failing startup.
func buildRegistry(cfg utils.ProviderConfig) *provider.Registry {
	var providers []provider.Provider
	for _, name := range cfg.Enabled {
		switch name {
		case "tmdb":
			if cfg.TMDBAPIKey == "" {
				log.Println("[main] tmdb enabled but MEDIASCOUT_TMDB_API_KEY is empty, skipping")
				continue
			}
			p := provider.NewTMDB(cfg.TMDBAPIKey)
			p.Timeout = cfg.Timeout
			providers = append(providers, p)
		case "jikan":
			p := provider.NewJikan()
			p.Timeout = cfg.Timeout
			providers = append(providers, p)
		case "openlibrary":
			p := provider.NewOpenLibrary()
			p.Timeout = cfg.Timeout
			providers = append(providers, p)
		default:
			log.Printf("[main] unknown provider %q in MEDIASCOUT_PROVIDERS, skipping", name)
		}
	}
	if len(providers) == 0 {
		log.Println("[main] no providers enabled; recommendations will be empty")
	}
	reg := provider.NewRegistry(providers...)
	reg.JoinTimeout = cfg.Timeout + time.Second
	reg.SuggestTimeout = cfg.Timeout + 2*time.Second
	return reg
}

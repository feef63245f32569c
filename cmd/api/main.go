package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/barkshad/Real-estate/internal/assistant"
	"github.com/barkshad/Real-estate/internal/auth"
	"github.com/barkshad/Real-estate/internal/cache"
	"github.com/barkshad/Real-estate/internal/config"
	"github.com/barkshad/Real-estate/internal/database"
	"github.com/barkshad/Real-estate/internal/feed"
	"github.com/barkshad/Real-estate/internal/handlers"
	"github.com/barkshad/Real-estate/internal/marketplace"
	"github.com/barkshad/Real-estate/internal/media"
	"github.com/barkshad/Real-estate/internal/models"
	"github.com/barkshad/Real-estate/internal/ratelimit"
	"github.com/barkshad/Real-estate/internal/scheduler"
	"github.com/barkshad/Real-estate/internal/search"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v", err)
	}

	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/homequest.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
		appConfig.ApplyEnv()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}
	applyDatabaseEnv(&appConfig.Database)

	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database based on configuration
	st, err := database.Open(ctx, appConfig.Database)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// Search is optional; without it listings are filtered from the store
	var indexer search.Indexer = search.Noop{}
	var searcher handlers.Searcher
	if appConfig.Search.Enabled {
		searchClient := search.NewSearchClient(
			getEnvOrConfig(appConfig.Search.Meilisearch.Host, "MEILISEARCH_HOST", "http://meilisearch:7700"),
			getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", ""),
		)
		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
		indexer = searchClient
		searcher = searchClient
	}

	var settingsCache cache.Cache = cache.NewLocal()
	if appConfig.Cache.RedisAddr != "" {
		redisCache := cache.NewRedis(appConfig.Cache.RedisAddr, appConfig.Cache.RedisPassword, appConfig.Cache.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Printf("Warning: Redis unavailable at %s, using in-process cache: %v", appConfig.Cache.RedisAddr, err)
			redisCache.Close()
		} else {
			settingsCache = redisCache
			defer redisCache.Close()
			log.Printf("Settings cache: redis at %s", appConfig.Cache.RedisAddr)
		}
		cancel()
	}

	var uploader media.Uploader
	if appConfig.Media.CloudName != "" {
		uploader = media.NewCloudinary(appConfig.Media.CloudName, appConfig.Media.UploadPreset, appConfig.Media.Timeout())
	} else {
		log.Println("Warning: media.cloud_name is not set; listings can only use existing image URLs")
	}

	// Live feeds
	loadTimeout := appConfig.Feed.LoadTimeout()
	listingFeed := feed.NewListingFeed(st, loadTimeout)
	settingsFeed := feed.NewSettingsFeed(st, loadTimeout)
	inquiryFeed := feed.NewInquiryFeed(st, loadTimeout)
	defer listingFeed.Close()
	defer settingsFeed.Close()
	defer inquiryFeed.Close()

	if watcher, ok := st.(*database.MongoStore); ok {
		go func() {
			if err := watcher.Watch(ctx, listingFeed.Publish); err != nil {
				log.Printf("Warning: change stream unavailable, relying on scheduled republish: %v", err)
			}
		}()
	}

	svc := marketplace.New(marketplace.Deps{
		Store:        st,
		Uploader:     uploader,
		Indexer:      indexer,
		Cache:        settingsCache,
		ListingFeed:  listingFeed,
		SettingsFeed: settingsFeed,
		InquiryFeed:  inquiryFeed,
		SettingsTTL:  appConfig.Cache.TTL(),
	})

	if seeded, err := svc.EnsureSettings(ctx); err != nil {
		log.Printf("Warning: Failed to seed site settings: %v", err)
	} else if seeded {
		log.Println("Seeded default site settings")
	}

	ac := appConfig.Assistant
	advisor := assistant.New(
		assistant.NewClient(getEnvOrConfig(ac.APIKey, "OPENAI_API_KEY", ""), ac.BaseURL),
		assistant.Options{
			Model:       ac.Model,
			Temperature: ac.Temperature,
			Timeout:     ac.Timeout(),
			CacheTTL:    ac.CacheTTL(),
			Breaker:     assistant.NewCircuitBreaker(ac.FailureThreshold, ac.ResetTimeout()),
		},
	)
	advisor.Start()
	defer advisor.Stop()

	// Initialize rate limiter
	rateLimiter := ratelimit.NewRateLimiter(ratelimit.Limits{
		PerMinute: appConfig.RateLimit.RequestsPerMinute,
		PerHour:   appConfig.RateLimit.RequestsPerHour,
		PerDay:    appConfig.RateLimit.RequestsPerDay,
	}, appConfig.RateLimit.Enabled)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour, %d req/day (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.RequestsPerDay,
		appConfig.RateLimit.Enabled,
	)

	appScheduler := scheduler.NewScheduler(appConfig, svc, indexer, listingFeed, settingsFeed, inquiryFeed)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	var reindexer handlers.Reindexer
	if appConfig.Search.Enabled {
		reindexer = appScheduler
	}

	authService := auth.NewService(st, appConfig.Auth.JWTSecret, appConfig.Auth.TokenTTL())
	policy := auth.EmailRolePolicy{
		AdminEmail:  getEnvOrConfig(appConfig.Auth.AdminEmail, "ADMIN_EMAIL", "admin@homequest.com"),
		DefaultRole: models.RoleBuyer,
	}

	// Setup Gin router
	if appConfig.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if appConfig.Logging.LogRequests {
		r.Use(gin.Logger())
	}

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router := &handlers.Router{
		Auth:        authService,
		Policy:      policy,
		Listings:    handlers.NewListingHandler(svc, searcher, appConfig.Media.MaxUploadBytes()),
		Site:        handlers.NewSiteHandler(svc, advisor),
		Admin:       handlers.NewAdminHandler(svc, appConfig.Admin.PIN, reindexer, rateLimiter),
		Sessions:    handlers.NewAuthHandler(authService, policy),
		RateLimiter: rateLimiter,
		WS: &handlers.WSHandler{
			Auth:           authService,
			Policy:         policy,
			Listings:       listingFeed,
			Inquiries:      inquiryFeed,
			Settings:       settingsFeed,
			AdminPIN:       appConfig.Admin.PIN,
			OriginPatterns: originPatterns(appConfig.Server.AllowOrigins),
		},
	}
	router.Register(r)

	port := getEnvOrConfig(appConfig.Server.Port, "PORT", "8084")
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

// applyDatabaseEnv fills unset connection fields from DB_* variables
func applyDatabaseEnv(db *config.DatabaseConfig) {
	switch db.Type {
	case "mysql":
		applyConnEnv(&db.MySQL.Host, &db.MySQL.Port, &db.MySQL.User, &db.MySQL.Password, &db.MySQL.Database)
	case "postgres":
		applyConnEnv(&db.Postgres.Host, &db.Postgres.Port, &db.Postgres.User, &db.Postgres.Password, &db.Postgres.Database)
	}
}

func applyConnEnv(host *string, port *int, user, password, name *string) {
	*host = getEnvOrConfig(*host, "DB_HOST", "")
	*user = getEnvOrConfig(*user, "DB_USER", "")
	*password = getEnvOrConfig(*password, "DB_PASSWORD", "")
	*name = getEnvOrConfig(*name, "DB_NAME", "")
	if *port == 0 {
		if p, err := strconv.Atoi(getEnv("DB_PORT", "")); err == nil {
			*port = p
		}
	}
}

// originPatterns turns CORS origins into the host patterns the WebSocket
// handshake checks
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

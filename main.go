package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	ginGzip "github.com/gin-contrib/gzip"

	"github.com/gin-gonic/gin"

	audio "github.com/christophrus/rummikub-tracker/internal/audio"
	constants "github.com/christophrus/rummikub-tracker/internal/constants"
	game "github.com/christophrus/rummikub-tracker/internal/game"
	handlers "github.com/christophrus/rummikub-tracker/internal/handlers"
	history "github.com/christophrus/rummikub-tracker/internal/history"
	models "github.com/christophrus/rummikub-tracker/internal/models"
	realtime "github.com/christophrus/rummikub-tracker/internal/realtime"
	storage "github.com/christophrus/rummikub-tracker/internal/storage"
	util "github.com/christophrus/rummikub-tracker/internal/util"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	util.LogInfo("Starting Rummikub tracker in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	dataDir := util.GetEnvStr("DATA_DIR", "data")
	quota := int64(util.GetEnvInt("STORAGE_QUOTA_BYTES", 5*1024*1024))
	store, err := storage.NewFileStore(dataDir, quota)
	if err != nil {
		util.LogFatal("Failed to open data directory %s: %v", dataDir, err)
	}
	adapter := storage.NewAdapter(store)

	hist, err := history.NewStore(adapter)
	if err != nil {
		util.LogFatal("Failed to load game history: %v", err)
	}
	util.LogInfo("Loaded %d archived games", len(hist.Entries()))

	events := realtime.NewBroadcaster()
	notifier := audio.NewEventNotifier(events)

	mgr, err := game.NewManager(adapter, hist, notifier, events, game.Config{
		ResumeDelay: util.GetEnvDuration("RESUME_DELAY", 0),
	})
	if err != nil {
		util.LogFatal("Failed to initialize game state: %v", err)
	}

	app := &models.App{
		IsProduction:   isProduction,
		StartTime:      time.Now(),
		ExternalURL:    util.GetEnvStr("EXTERNAL_URL", ""),
		CookieMaxAge:   util.GetEnvDuration("COOKIE_MAX_AGE", 24*time.Hour),
		StaticCacheAge: util.GetEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:   util.GetEnvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst: util.GetEnvInt("RATE_LIMIT_BURST", 30),
		RateLimiterTTL: util.GetEnvDuration("RATE_LIMITER_TTL", 1*time.Hour),
		LimiterMap:     make(map[string]*models.RateLimiterWithTime),
	}

	env := handlers.NewEnv(app, mgr, adapter, events)

	router := gin.Default()

	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())

	router.Use(csrfMiddleware(app))
	router.Use(validateCSRFMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{constants.RouteWS})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		util.LogWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		applyCacheHeaders(app, c)
	})

	master := template.New("")
	if _, err := master.ParseGlob(filepath.ToSlash(filepath.Join("templates", "*.html"))); err != nil {
		util.LogFatal("Failed to parse templates: %v", err)
	}
	router.SetHTMLTemplate(master)
	router.Static("/static", "./static")

	limited := rateLimitMiddleware(app)

	router.GET(constants.RouteHome, env.HomeHandler)
	router.GET(constants.RouteState, env.StateHandler)
	router.POST(constants.RouteGameBegin, limited, env.BeginGameHandler)
	router.POST(constants.RouteGameStarter, limited, env.SelectStarterHandler)
	router.POST(constants.RoutePendingCancel, env.CancelPendingHandler)
	router.POST(constants.RouteGameNext, limited, env.NextPlayerHandler)
	router.POST(constants.RouteGameExtend, limited, env.ExtendTimerHandler)
	router.POST(constants.RouteGamePause, env.PauseTimerHandler)
	router.POST(constants.RouteGameResume, env.ResumeTimerHandler)
	router.POST(constants.RouteGameResetTimer, env.ResetTimerHandler)
	router.POST(constants.RouteGameDuration, env.TimerDurationHandler)
	router.POST(constants.RouteWinner, env.DeclareWinnerHandler)
	router.POST(constants.RouteWinnerCancel, env.CancelWinnerHandler)
	router.POST(constants.RouteScore, env.UpdateScoreHandler)
	router.POST(constants.RouteSaveRound, limited, env.SaveRoundHandler)
	router.PUT(constants.RoutePastScore, env.PastScoreHandler)
	router.POST(constants.RouteReorder, env.ReorderHandler)
	router.POST(constants.RouteGameEnd, limited, env.EndGameHandler)
	router.POST(constants.RouteGameCancel, env.CancelGameHandler)
	router.GET(constants.RouteHistory, env.HistoryHandler)
	router.DELETE(constants.RouteHistoryDelete, env.DeleteHistoryHandler)
	router.GET(constants.RoutePlayers, env.PlayersHandler)
	router.DELETE(constants.RoutePlayersDelete, env.DeletePlayerHandler)
	router.GET(constants.RouteSettings, env.GetSettingsHandler)
	router.POST(constants.RouteSettings, env.UpdateSettingsHandler)
	router.GET(constants.RouteWS, env.WSHandler)
	router.GET(constants.RouteQR, env.QRHandler)
	router.GET(constants.RouteHealthz, env.HealthzHandler)

	stop := startBackgroundRoutines(app, mgr)
	defer stop()

	startServer(router)
}

// startBackgroundRoutines runs the 1-second countdown driver and the
// limiter cleanup. The returned func stops both.
func startBackgroundRoutines(app *models.App, mgr *game.Manager) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				mgr.Tick()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				cleanupStaleRateLimiters(app)
			}
		}
	}()

	util.LogInfo("Started countdown driver and cleanup routines")
	return func() { close(done) }
}

func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	// No WriteTimeout: the websocket stream stays open for the whole game.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		util.LogFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
}

func applyCacheHeaders(app *models.App, c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

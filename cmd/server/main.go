package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/suricata-ml/dashboard/internal/analyzer"
	"github.com/suricata-ml/dashboard/internal/api"
	"github.com/suricata-ml/dashboard/internal/config"
	"github.com/suricata-ml/dashboard/internal/metrics"
	"github.com/suricata-ml/dashboard/internal/palette"
	"github.com/suricata-ml/dashboard/internal/session"
	"github.com/suricata-ml/dashboard/internal/storage"
	"github.com/suricata-ml/dashboard/internal/tracing"
	"github.com/suricata-ml/dashboard/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath, err := resolveConfigPath()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	// Load XML configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Selected files live here between selection and submission
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	pal, err := palette.Load(cfg.Display.PaletteFile)
	if err != nil {
		fmt.Printf("Warning: failed to load palette, using default: %v\n", err)
		pal = palette.Default()
	}

	shutdownTracing, err := tracing.Setup(tracing.Options{
		Endpoint: cfg.Advanced.OTLPEndpoint,
		Version:  Version,
	})
	if err != nil {
		fmt.Printf("Warning: tracing disabled: %v\n", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	backend := tracing.WrapAnalyzer(newAnalyzer(cfg), tracing.Tracer())
	recorder := metrics.New()

	sessionMgr := session.NewManager(fileStore, backend, recorder)
	sessionMgr.SetMaxSessions(cfg.Session.MaxSessions)
	recorder.TrackSessions(sessionMgr.Count)
	recorder.TrackStoredFiles(fileStore.Len)

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Session.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Session.TimeoutMinutes) * time.Minute)
		}
	}()

	renderer, err := web.NewRenderer()
	if err != nil {
		fmt.Printf("Failed to load templates: %v\n", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Logger.SetLevel(logLevel(cfg.Advanced.LogLevel))
	api.ShowErrorDetails = strings.EqualFold(cfg.Advanced.LogLevel, "debug")
	api.SetupMiddleware(e)

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				path == "/api/state" ||
				path == "/metrics" ||
				strings.HasPrefix(path, "/static/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			// Uploads and analyses run as long as they need
			path := c.Request().URL.Path
			return path == "/analyze" || path == "/files"
		},
		ErrorMessage: "Request timeout",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/result/msgpack"
		},
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.RateLimitPerSecond > 0 {
		e.Use(api.RateLimit(cfg.Server.RateLimitPerSecond))
	}

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	deps := &api.Dependencies{
		Sessions:    sessionMgr,
		Palette:     pal,
		Location:    cfg.Location(),
		BackendMode: cfg.Backend.Mode,
		Version:     Version,
	}
	if cfg.Advanced.EnableMetrics {
		deps.Metrics = recorder.Handler()
	}
	api.RegisterRoutes(e, api.NewHandlers(deps))

	if err := web.RegisterStaticRoutes(e); err != nil {
		fmt.Printf("Failed to register static routes: %v\n", err)
		os.Exit(1)
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	backendTarget := cfg.Backend.URL
	if cfg.Backend.Mode == config.BackendModeSimulated {
		backendTarget = fmt.Sprintf("simulated (%dms)", cfg.Backend.SimulatedDelay)
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Suricata ML Integration Dashboard               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Backend:    %-45s║\n", backendTarget)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Uploads:   %-46s║\n", cfg.GetUploadDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		fmt.Printf("Trace flush error: %v\n", err)
	}
}

// resolveConfigPath honours CONFIG_PATH, else looks next to the executable.
func resolveConfigPath() (string, error) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exePath), "SuricataDashboard.config"), nil
}

func newAnalyzer(cfg *config.AppConfig) analyzer.Analyzer {
	if cfg.Backend.Mode == config.BackendModeSimulated {
		return analyzer.NewSimulatedAnalyzer(time.Duration(cfg.Backend.SimulatedDelay) * time.Millisecond)
	}
	return analyzer.NewHTTPAnalyzer(cfg.Backend.URL, cfg.BackendTimeout())
}

func logLevel(name string) log.Lvl {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

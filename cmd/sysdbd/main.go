// Command sysdbd is the SysDB daemon: it serves the wire protocol on a
// socket listener and, optionally, an admin HTTP surface (health,
// metrics, JWT login) on a second port.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sysdb/sysdbd/internal/api"
	"github.com/sysdb/sysdbd/internal/api/handlers"
	"github.com/sysdb/sysdbd/internal/auth/jwt"
	"github.com/sysdb/sysdbd/internal/auth/user"
	"github.com/sysdb/sysdbd/internal/config"
	"github.com/sysdb/sysdbd/internal/frontend"
	"github.com/sysdb/sysdbd/internal/health"
	"github.com/sysdb/sysdbd/internal/metrics"
	"github.com/sysdb/sysdbd/internal/middleware/auth"
	"github.com/sysdb/sysdbd/internal/parser"
	"github.com/sysdb/sysdbd/internal/store"
	loggerPkg "github.com/sysdb/sysdbd/pkg/logger"
)

// Build information, set via -ldflags at release build time.
var (
	version   string = "dev"
	commit    string = "none"
	buildDate string = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sysdbd %s (commit %s) built on %s\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := initConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting sysdbd",
		loggerPkg.String("version", version),
		loggerPkg.String("commit", commit),
		loggerPkg.String("buildDate", buildDate))

	st := store.New(log)
	p := parser.New()

	collectorImpl := "noop"
	if cfg.Features.Metrics {
		collectorImpl = "prometheus"
	}
	collector := metrics.NewCollector(collectorImpl, st, log)

	listener, err := net.Listen(cfg.Listener.Network, cfg.Listener.Address)
	if err != nil {
		log.Fatal("failed to open frontend listener", loggerPkg.Error(err))
	}
	log.Info("frontend listening",
		loggerPkg.String("network", cfg.Listener.Network),
		loggerPkg.String("address", listener.Addr().String()))

	var apiServer *api.Server
	if cfg.Features.AdminServer {
		apiServer, err = initAdminServer(cfg, st, log)
		if err != nil {
			log.Fatal("failed to initialize admin server", loggerPkg.Error(err))
		}
		go func() {
			if startErr := apiServer.Start(); startErr != nil {
				log.Error("admin server stopped", loggerPkg.Error(startErr))
			}
		}()
		log.Info("admin server listening", loggerPkg.String("address", apiServer.Address()))
	}

	go acceptLoop(listener, st, p, log, collector, cfg.Listener.MaxConnections)

	stopCh := setupSignalHandler(listener, apiServer, log)
	<-stopCh
	log.Info("shut down gracefully")
}

// acceptLoop accepts connections until the listener is closed, running
// each on its own goroutine. A semaphore caps concurrent connections at
// MaxConnections; when full, new connections are accepted and
// immediately closed rather than left to pile up in the kernel backlog.
func acceptLoop(listener net.Listener, st *store.Store, p parser.Parser, log loggerPkg.Logger, collector metrics.Collector, maxConnections int) {
	sem := make(chan struct{}, maxConnections)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Info("frontend listener closed", loggerPkg.Error(err))
			return
		}

		select {
		case sem <- struct{}{}:
		default:
			log.Warn("rejecting connection: max connections reached",
				loggerPkg.Int("maxConnections", maxConnections))
			_ = conn.Close()
			continue
		}

		go func() {
			defer func() { <-sem }()
			frontend.New(conn, st, p, log, collector).Serve()
		}()
	}
}

// initConfig loads the YAML configuration file, applies environment
// overrides, and validates the result.
func initConfig(configPath string) (*config.Config, error) {
	loader := config.NewYAMLLoader(configPath)

	cfg := &config.Config{}
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// initLogger builds the zap-backed Logger all other components share.
func initLogger(cfg config.LoggingConfig) (loggerPkg.Logger, error) {
	log, err := loggerPkg.NewZapLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return log, nil
}

// initAdminServer wires the JWT/RBAC auth stack and the health/metrics
// handlers onto the gin-based admin HTTP surface, then seeds any
// default users from configuration.
func initAdminServer(cfg *config.Config, st *store.Store, log loggerPkg.Logger) (*api.Server, error) {
	userService := user.NewUserService(log)
	if err := initDefaultUsers(context.Background(), userService, cfg.Auth.DefaultUsers, log); err != nil {
		return nil, fmt.Errorf("initializing default users: %w", err)
	}

	jwtGenerator := jwt.NewJWTGenerator(cfg.Auth)
	jwtValidator := jwt.NewJWTValidator(cfg.Auth)
	jwtMiddleware := auth.NewJWTMiddleware(jwtValidator, userService, log)
	roleMiddleware := auth.NewRoleMiddleware(userService, log)

	checker := health.NewChecker(version, buildDate)
	checker.AddCheck(func() health.Check {
		return health.Check{Name: "store", Status: health.StatusUp}
	})

	healthHandler := handlers.NewHealthHandler(checker, log)
	metricsHandler := handlers.NewMetricsHandler(log)
	authHandler := handlers.NewAuthHandler(userService, jwtGenerator, log, cfg.Auth.TokenExpiration)

	apiServer := api.NewServer(cfg.Server, log)
	api.SetupRouter(apiServer.Router(), log, api.DefaultRouterConfig(),
		healthHandler, metricsHandler, authHandler, jwtMiddleware, roleMiddleware, st)

	return apiServer, nil
}

// initDefaultUsers seeds the in-memory user service from configuration,
// converting config.DefaultUser into the user.DefaultUserConfig shape
// InitializeDefaultUsers expects.
func initDefaultUsers(ctx context.Context, userService user.Service, defaultUsers []config.DefaultUser, log loggerPkg.Logger) error {
	if len(defaultUsers) == 0 {
		return nil
	}

	converted := make([]user.DefaultUserConfig, len(defaultUsers))
	for i, u := range defaultUsers {
		converted[i] = user.DefaultUserConfig{
			Username: u.Username,
			Password: u.Password,
			Email:    u.Email,
			Roles:    u.Roles,
		}
	}

	return userService.InitializeDefaultUsers(ctx, converted)
}

// setupSignalHandler returns a channel that closes once SIGINT/SIGTERM
// has been received and every listener has been asked to shut down.
func setupSignalHandler(listener net.Listener, apiServer *api.Server, log loggerPkg.Logger) chan os.Signal {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	done := make(chan os.Signal, 1)
	go func() {
		<-stopCh
		log.Info("received shutdown signal")

		if err := listener.Close(); err != nil {
			log.Warn("error closing frontend listener", loggerPkg.Error(err))
		}

		if apiServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := apiServer.Stop(ctx); err != nil {
				log.Error("error during admin server shutdown", loggerPkg.Error(err))
			}
		}

		close(done)
	}()

	return done
}

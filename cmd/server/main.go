package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/outings/internal/config"
	"github.com/mmynk/outings/internal/events"
	"github.com/mmynk/outings/internal/groups"
	"github.com/mmynk/outings/internal/middleware"
	"github.com/mmynk/outings/internal/notify"
	"github.com/mmynk/outings/internal/reminder"
	"github.com/mmynk/outings/internal/service"
	"github.com/mmynk/outings/internal/storage/sqlite"
	"github.com/mmynk/outings/pkg/api"
	"github.com/mmynk/outings/pkg/logging"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepTimeout    = 2 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (created with defaults if missing)")
	genVAPID := flag.Bool("gen-vapid", false, "Print a fresh VAPID key pair and exit")
	flag.Parse()

	if *genVAPID {
		keys, err := notify.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", keys.PublicKey, keys.PrivateKey)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup()
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	window, err := cfg.ReminderWindow()
	if err != nil {
		return err
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	sender, publicKey, err := newSender(cfg)
	if err != nil {
		return err
	}

	notifier := notify.NewNotifier(store, sender, cfg.Push.Concurrency, loc)
	eventManager := events.NewManager(store, store, notifier)
	defer eventManager.Wait()
	dispatcher := reminder.NewDispatcher(store, notifier, window)

	interceptors := connect.WithInterceptors(
		middleware.IdentityInterceptor(),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(api.NewEventServiceHandler(service.NewEventService(eventManager), interceptors))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(groups.NewManager(store)), interceptors))
	mux.Handle(api.NewPushServiceHandler(
		service.NewPushService(store, dispatcher, publicKey, cfg.Reminder.TriggerToken),
		interceptors,
	))

	service.NewCalendarHandler(eventManager).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	staticHandler, err := newStaticHandler(cfg.StaticPath)
	if err != nil {
		return err
	}
	mux.Handle("/", staticHandler)

	// Add identity, logging and CORS middleware
	handler := middleware.IdentityHandler(loggingMiddleware(corsMiddleware(mux)))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler, err := startScheduler(ctx, cfg.Reminder.Schedule, loc, dispatcher)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Listen, "push_enabled", cfg.PushEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSender returns the Web Push sender when VAPID keys are configured, else
// a sender that only logs.
func newSender(cfg *config.Config) (notify.Sender, string, error) {
	if !cfg.PushEnabled() {
		slog.Warn("VAPID keys not configured, push notifications will only be logged")
		return notify.LogSender{}, "", nil
	}
	wp, err := notify.NewWebPush(notify.WebPushConfig{
		Keys: notify.VAPIDKeys{
			PublicKey:  cfg.Push.VAPIDPublicKey,
			PrivateKey: cfg.Push.VAPIDPrivateKey,
		},
		Subject: cfg.Push.Subject,
		TTL:     cfg.PushTTL(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to configure web push: %w", err)
	}
	return wp, wp.PublicKey(), nil
}

// startScheduler runs reminder sweeps on schedule. An empty schedule leaves
// sweeps to the RunReminderSweep RPC.
func startScheduler(ctx context.Context, schedule string, loc *time.Location, dispatcher *reminder.Dispatcher) (*cron.Cron, error) {
	if schedule == "" {
		slog.Info("Reminder schedule disabled")
		return nil, nil
	}

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		defer cancel()

		result, err := dispatcher.Sweep(sweepCtx, time.Now())
		if err != nil {
			slog.Error("Reminder sweep failed", "error", err)
			return
		}
		slog.Info("Reminder sweep completed",
			"events_notified", result.EventsNotified,
			"recipients_notified", result.RecipientsNotified,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("Reminder scheduler started", "schedule", schedule)
	return c, nil
}

// newStaticHandler serves the web client. Unknown paths fall back to
// index.html.
func newStaticHandler(staticPath string) (http.Handler, error) {
	staticDir, err := filepath.Abs(staticPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unknown Connect procedures must not fall through to the client
		if api.IsProcedurePath(r.URL.Path) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"display_name", middleware.GetDisplayName(r.Context()),
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms, Authorization, "+middleware.DisplayNameHeader)
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

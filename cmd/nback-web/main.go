package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpadapter "svw.info/nback/internal/adapters/http"
	"svw.info/nback/internal/config"
	"svw.info/nback/internal/generator"
	"svw.info/nback/internal/infrastructure/storage"
	"svw.info/nback/internal/ports"
	"svw.info/nback/internal/session"
	"svw.info/nback/internal/usecase"
	"svw.info/nback/web"
)

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush keeps server-sent events working through the logger.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestLogger logs method, path, status, bytes, and duration in a human-readable format.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			logger.Info("http",
				"id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"dur", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}

// openStore picks the high score backend; the returned func releases it.
func openStore(kind, dir string) (ports.HighScoreStore, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "fs":
		return storage.NewFS(dir), func() {}, nil
	default:
		st, err := storage.NewSQLite(filepath.Join(dir, "nback.db"))
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// flags override the environment
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.DataDir, "persist-path", cfg.DataDir, "data directory")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "high score store: sqlite|fs")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	flag.DurationVar(&cfg.StepInterval, "interval", cfg.StepInterval, "time each stimulus is shown")
	flag.IntVar(&cfg.N, "n", cfg.N, "default n")
	flag.IntVar(&cfg.Length, "length", cfg.Length, "default sequence length")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))

	store, closeStore, err := openStore(cfg.Store, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire providers → controller → use cases → HTTP adapter
	ctrl, err := session.NewTimed(ctx, store,
		session.WithInterval(cfg.StepInterval),
		session.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer ctrl.Cancel()
	uc := usecase.NewService(generator.NewRandomGenerator(), ctrl, cfg.Defaults())
	h := httpadapter.New(uc)

	tmpl := web.Templates()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(web.StaticFS())))
	for path, name := range web.Screens {
		router.Get(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			page := web.Page{
				HighScore: ctrl.Snapshot().HighScore,
				Settings:  uc.Current(),
				Interval:  cfg.StepInterval,
			}
			if err := tmpl.ExecuteTemplate(w, name, page); err != nil {
				http.Error(w, template.HTMLEscapeString(err.Error()), http.StatusInternalServerError)
			}
		})
	}
	h.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// event streams end with the process
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr, "persist", cfg.DataDir, "store", cfg.Store, "interval", cfg.StepInterval)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		return err
	}
	return nil
}

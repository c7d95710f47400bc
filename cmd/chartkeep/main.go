// Command chartkeep runs one chart ingestion cycle, or serves the read-only
// reporting API over the archive.
//
// Default mode is run-to-completion: parse the chart CSV hand-off file,
// ingest it for the current ISO week, rotate backups, prune old weeks, and
// exit. When the CSV producer fails and fallback is enabled, a synthetic
// dataset is substituted so the archive still gets a row set for the week.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/chartkeep/charts"
)

func main() {
	logLevel := env("LOG_LEVEL", "info")
	unattended := envBool("UNATTENDED", false)

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if unattended {
		// Nobody is watching a scheduled run; keep full diagnostics.
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	cfg.Unattended = unattended

	svc, err := charts.New(cfg, logger)
	if err != nil {
		slog.Error("service", "error", err)
		os.Exit(1)
	}

	if envBool("SERVE", false) {
		os.Exit(serve(ctx, svc))
	}
	os.Exit(runOnce(ctx, svc))
}

func loadConfig() (*charts.Config, error) {
	var cfg *charts.Config
	if path := os.Getenv("CONFIG"); path != "" {
		c, err := charts.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = charts.DefaultConfig()
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("LATEST_PATH"); v != "" {
		cfg.LatestPath = v
	}
	if v := os.Getenv("BACKUP_RETENTION_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.BackupRetentionDays = n
	}
	if v := os.Getenv("SNAPSHOT_RETENTION_WEEKS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.SnapshotRetentionWeeks = n
	}
	if v := os.Getenv("PRODUCER_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.ProducerTimeoutMS = n
	}
	return cfg, cfg.Validate()
}

func runOnce(ctx context.Context, svc *charts.Service) int {
	csvPath := env("CHART_CSV", "data/incoming/chart.csv")

	// The service bounds the produce step with the configured timeout;
	// once a dataset is in hand the cycle runs to completion.
	report, err := svc.RunCycle(ctx, &charts.CSVFileProducer{Path: csvPath})

	if errors.Is(err, charts.ErrProducer) && envBool("FALLBACK", true) {
		slog.Warn("producer failed, substituting synthetic dataset", "error", err)
		report, err = svc.RunCycle(ctx, &charts.SyntheticProducer{})
	}
	if err != nil {
		slog.Error("cycle failed", "error", err)
		return 1
	}

	for _, w := range report.Warnings {
		slog.Warn("cycle warning", "warning", w)
	}
	slog.Info("archive state",
		"stores", report.Summary.StoreCount,
		"total_records", report.Summary.TotalRecords,
		"earliest", report.Summary.EarliestWeek.String(),
		"latest", report.Summary.LatestWeek.String())
	return 0
}

func serve(ctx context.Context, svc *charts.Service) int {
	port := env("PORT", "8086")

	r := chi.NewRouter()
	if password := os.Getenv("AUTH_PASSWORD"); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("auth setup", "error", err)
			return 1
		}
		r.Use(basicAuth(hash))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/api/summary", func(w http.ResponseWriter, req *http.Request) {
		sum, warnings := svc.Summarize(req.Context())
		resp := map[string]any{"summary": sum}
		if len(warnings) > 0 {
			msgs := make([]string, len(warnings))
			for i, werr := range warnings {
				msgs[i] = werr.Error()
			}
			resp["warnings"] = msgs
		}
		writeJSON(w, 200, resp)
	})
	r.Get("/api/weeks", func(w http.ResponseWriter, _ *http.Request) {
		weeks, err := svc.Weeks()
		if err != nil {
			writeJSON(w, 500, map[string]string{"error": err.Error()})
			return
		}
		out := make([]string, len(weeks))
		for i, wk := range weeks {
			out[i] = wk.String()
		}
		writeJSON(w, 200, map[string]any{"weeks": out})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("reporting API starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.Error("server", "error", err)
		return 1
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
		return 1
	}
	slog.Info("reporting API stopped")
	return 0
}

func basicAuth(hash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, pass, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword(hash, []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="chartkeep"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

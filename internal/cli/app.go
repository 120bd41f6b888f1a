package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/delib-org/Freedi-app-sub004/internal/cache"
	"github.com/delib-org/Freedi-app-sub004/internal/classify"
	"github.com/delib-org/Freedi-app-sub004/internal/logging"
	"github.com/delib-org/Freedi-app-sub004/internal/model"
	"github.com/delib-org/Freedi-app-sub004/internal/service"
	"github.com/delib-org/Freedi-app-sub004/internal/store"
	"github.com/delib-org/Freedi-app-sub004/internal/worker"
)

// app holds everything a command needs for one invocation.
type app struct {
	cfg     *model.Config
	store   store.Store
	service *service.Service
	logger  *logging.Logger
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: os.Stderr}
	if verbose {
		logCfg.Level = "debug"
	}
	logger := logging.New(logCfg)

	provider, err := classify.NewClassifier(classify.ConfigFromModel(cfg.Classifier))
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	if strings.EqualFold(cfg.Store.Driver, "memory") {
		return nil, errors.New("store driver memory keeps data only inside one process, so nothing survives between commands; use sqlite")
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	classifier := classify.NewSafe(provider,
		classify.WithCache(cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL), cfg.Cache.DiskTTL),
		classify.WithLimiter(worker.NewLimiter(cfg.Classifier.RequestsPerSecond, cfg.Classifier.Burst)),
		classify.WithLogger(logger),
	)

	svc := service.New(st, service.Options{
		Scoring:    cfg.Scoring,
		Workers:    cfg.Concurrency.Workers,
		Classifier: classifier,
		Logger:     logger,
	})

	return &app{cfg: cfg, store: st, service: svc, logger: logger}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", "error", err)
	}
}

func currentCaller() service.Caller {
	return service.Caller{ID: callerID, Admin: isAdmin}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const rule = "═══════════════════════════════════════════════════════════"

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

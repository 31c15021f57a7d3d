package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Khalidfayaz/kidscope-backend/constants"
	"github.com/Khalidfayaz/kidscope-backend/internal/async"
	"github.com/Khalidfayaz/kidscope-backend/internal/bootstrap"
	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/export"
	"github.com/Khalidfayaz/kidscope-backend/internal/marksheet"
)

func main() {
	var (
		file    = flag.String("file", "", "marksheet to extract (pdf, image, csv, xlsx)")
		dir     = flag.String("dir", "", "directory of marksheets; writes <name>.marksheet.xlsx per file")
		out     = flag.String("out", "", "XLSX output: a file path with -file, a directory with -dir")
		workers = flag.Int("workers", 2, "files processed concurrently with -dir")
		timeout = flag.Duration("timeout", 5*time.Minute, "per-file timeout")
	)
	flag.Parse()

	if (*file == "") == (*dir == "") {
		fmt.Fprintln(os.Stderr, "usage: runextract -file <path> [-out result.xlsx] | -dir <path> [-out outdir] [-workers n]")
		os.Exit(2)
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := common.SetupLogger(cfg.Env)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	providers, err := bootstrap.NewProviders(ctx, cfg, logger)
	if err != nil {
		logger.Error("init providers", "error", err)
		os.Exit(1)
	}
	defer func() { _ = providers.Close() }()

	r := &runner{
		svc:      bootstrap.NewMarksheetService(cfg, providers.Chat, logger),
		exporter: export.NewService(logger),
		logger:   logger,
	}

	if *file != "" {
		fctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		if err := r.one(fctx, *file, *out, true); err != nil {
			logger.Error("extraction failed", "file", *file, "error", err)
			os.Exit(1)
		}
		return
	}

	outDir := *out
	if outDir == "" {
		outDir = *dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Error("create output dir", "dir", outDir, "error", err)
		os.Exit(1)
	}
	if err := r.batch(ctx, *dir, outDir, *workers, *timeout); err != nil {
		logger.Error("batch extraction failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
}

// batch outputs may land next to their inputs; the suffix keeps them apart
const exportSuffix = ".marksheet.xlsx"

type runner struct {
	svc      *marksheet.Service
	exporter *export.Service
	logger   *slog.Logger
}

// one extracts path, prints the JSON response when echo is set and writes
// an XLSX when out is non-empty.
func (r *runner) one(ctx context.Context, path, out string, echo bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := r.svc.Extract(ctx, filepath.Base(path), data)
	if err != nil {
		return err
	}
	r.logger.Info("extraction OK", "file", path, "pages", resp.PagesProcessed, "duration_ms", time.Since(start).Milliseconds())

	if echo {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	if out == "" {
		return nil
	}
	xlsx, err := r.exporter.MarksheetXLSX(ctx, *resp)
	if err != nil {
		return err
	}
	return os.WriteFile(out, xlsx, 0o644)
}

func (r *runner) batch(ctx context.Context, dir, outDir string, workers int, timeout time.Duration) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	q := async.NewQueue(ctx, func(jctx context.Context, job async.Job) error {
		base := filepath.Base(job.Path)
		out := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+exportSuffix)
		return r.one(jctx, job.Path, out, false)
	}, r.logger, async.WithWorkers(workers), async.WithJobTimeout(timeout))

	queued := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), exportSuffix) ||
			constants.MapExtToFormat(filepath.Ext(e.Name())) == constants.UNKNOWN {
			continue
		}
		if err := q.Enqueue(ctx, async.Job{Path: filepath.Join(dir, e.Name())}); err != nil {
			q.Shutdown(context.Background())
			return err
		}
		queued++
	}
	r.logger.Info("batch queued", "dir", dir, "files", queued, "workers", workers)
	q.Shutdown(context.Background())
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"menu-photo-services/internal/batch"
	"menu-photo-services/internal/config"
	"menu-photo-services/internal/db"
	"menu-photo-services/internal/logger"
	"menu-photo-services/internal/menusource"
	"menu-photo-services/internal/photoassign"
	"menu-photo-services/internal/photoset"
	"menu-photo-services/internal/queue"
	"menu-photo-services/internal/review"
	"menu-photo-services/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitConfig   = 2
	exitEmission = 3
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env, "photo-assign")
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, cfg, log)
	stop()
	_ = log.Sync()
	os.Exit(code)
}

type options struct {
	itemsPath    string
	photoSetPath string
	outPath      string
	reviewPath   string
	upload       bool
	publish      bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, cfg config.Config, log *zap.Logger) int {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "photo-assign",
		Short:         "Assign a distinct stock photo to every menu item",
		Long:          "Reads menu items and the photo set, assigns photos without reuse where possible and writes one batch UPDATE statement with verification queries.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return assign(cmd.Context(), opts, stdout, stderr, cfg, log)
		},
	}
	cmd.Flags().StringVar(&opts.itemsPath, "items", cfg.MenuItemsPath, "menu items file (.json, .csv, .yaml); reads DATABASE_URL when empty")
	cmd.Flags().StringVar(&opts.photoSetPath, "photo-set", cfg.PhotoSetPath, "photo set yaml")
	cmd.Flags().StringVar(&opts.outPath, "out", cfg.SQLOutPath, "output sql path")
	cmd.Flags().StringVar(&opts.reviewPath, "review-pdf", "", "also write a review sheet pdf")
	cmd.Flags().BoolVar(&opts.upload, "upload", cfg.ObjectStoreEnabled(), "upload a copy of the statement to the object store")
	cmd.Flags().BoolVar(&opts.publish, "publish", cfg.RabbitMQURL != "", "publish a photos generated event")
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case photoassign.IsEmissionError(err):
		return exitEmission
	case photoassign.IsConfigError(err),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, menusource.ErrUnsupportedFormat):
		return exitConfig
	default:
		return exitFailure
	}
}

func assign(ctx context.Context, opts options, stdout, stderr io.Writer, cfg config.Config, log *zap.Logger) error {
	set, err := photoset.Load(opts.photoSetPath)
	if err != nil {
		return err
	}
	items, err := loadItems(ctx, opts.itemsPath, cfg)
	if err != nil {
		return err
	}

	out, err := batch.Plan(items, set)
	if err != nil {
		return err
	}
	if err := batch.WriteArtifact(opts.outPath, []byte(out.SQL)); err != nil {
		return err
	}
	log.Info("photo assignments written",
		zap.String("runId", out.RunID),
		zap.String("path", opts.outPath),
		zap.Int("items", len(out.Result.Assignments)),
		zap.Int("distinct", out.Result.Distinct()),
		zap.Int("warnings", len(out.Result.Warnings)),
	)

	if strings.TrimSpace(opts.reviewPath) != "" {
		pdf, err := review.RenderPDF(out.Result, review.Options{RunID: out.RunID, PhotoSet: opts.photoSetPath})
		if err != nil {
			return err
		}
		if err := batch.WriteArtifact(opts.reviewPath, pdf); err != nil {
			return err
		}
	}

	artifactURL := ""
	if opts.upload {
		artifactURL, err = uploadArtifact(ctx, cfg, out)
		if err != nil {
			log.Warn("artifact upload failed", zap.String("runId", out.RunID), zap.Error(err))
		}
	}
	if opts.publish {
		if err := publishGenerated(ctx, cfg, out, set.URLTemplate, artifactURL); err != nil {
			log.Warn("photos generated event not published", zap.String("runId", out.RunID), zap.Error(err))
		}
	}

	fmt.Fprintf(stdout, "%d items, %d distinct photos -> %s\n", len(out.Result.Assignments), out.Result.Distinct(), opts.outPath)
	writeWarnings(stderr, out.Result.Warnings)
	return nil
}

func loadItems(ctx context.Context, path string, cfg config.Config) ([]photoassign.MenuItem, error) {
	if strings.TrimSpace(path) != "" {
		return menusource.ReadFile(path)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, photoassign.ConfigError(photoassign.ErrItemMalformed, "no menu items: pass --items or set DATABASE_URL", nil)
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	src := menusource.PostgresSource{
		Pool:       pool,
		Table:      cfg.MenuTable,
		IDColumn:   cfg.MenuIDColumn,
		NameColumn: cfg.MenuNameCol,
	}
	return src.Items(ctx)
}

func uploadArtifact(ctx context.Context, cfg config.Config, out batch.Output) (string, error) {
	store, err := storage.NewObjectStore(ctx, cfg.StorageConfig())
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("photo-assignments/%s.sql", out.RunID)
	return store.PutObject(ctx, key, []byte(out.SQL), "application/sql; charset=utf-8", storage.CacheNoStore)
}

func publishGenerated(ctx context.Context, cfg config.Config, out batch.Output, sourceTemplate string, artifactURL string) error {
	qc, err := queue.New(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer qc.Close()
	if err := queue.EnsurePhotoTopology(qc); err != nil {
		return err
	}
	return queue.PublishPhotosGenerated(ctx, qc, queue.PhotosGenerated{
		RunID:          out.RunID,
		ItemCount:      len(out.Result.Assignments),
		WarningCount:   len(out.Result.Warnings),
		Identifiers:    out.Result.Identifiers(),
		SourceTemplate: sourceTemplate,
		ArtifactURL:    artifactURL,
	})
}

func writeWarnings(w io.Writer, warnings []photoassign.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "%d reuse warning(s): the photo pool is smaller than the menu\n", len(warnings))
	for _, warning := range warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning.Message)
	}
}

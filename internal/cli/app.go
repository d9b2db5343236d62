package cli

import (
	"context"
	"fmt"

	"github.com/NewsNowIndy/Dashboard/internal/cache"
	"github.com/NewsNowIndy/Dashboard/internal/config"
	"github.com/NewsNowIndy/Dashboard/internal/db"
	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/entities"
	"github.com/NewsNowIndy/Dashboard/internal/events"
	"github.com/NewsNowIndy/Dashboard/internal/extract"
	"github.com/NewsNowIndy/Dashboard/internal/index"
	"github.com/NewsNowIndy/Dashboard/internal/ingest"
	"github.com/NewsNowIndy/Dashboard/internal/ocr"
	"github.com/NewsNowIndy/Dashboard/internal/search"
)

// app is the fully wired pipeline shared by every command.
type app struct {
	store    *db.Store
	bus      *events.Bus
	cache    *cache.FilesystemCache
	writer   *index.Writer
	indexer  *index.Orchestrator
	search   *search.Engine
	entities *entities.Service
	ingest   *ingest.Service
}

// openApp opens the configured database, creating its schema, and wires the
// extraction, indexing and ingest services around it. An absent FERNET_KEY
// leaves encrypted attachments unreadable but is not an error.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create data directories: %w", err)
	}

	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	bus := events.New()
	writer := index.NewWriter(store, bus)
	if err := writer.InitializeSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	var (
		decrypter document.Decrypter
		encrypter document.Encrypter
	)
	if keys := config.LoadSecrets().FernetKeys; len(keys) > 0 {
		cipher, err := document.NewFernetCipher(keys...)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("FERNET_KEY: %w", err)
		}
		decrypter, encrypter = cipher, cipher
	}

	fc, err := cache.New(cfg.Storage.OCRCacheDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open ocr cache: %w", err)
	}

	engine := ocr.New(ocr.Config{
		OCRmyPDF:      cfg.OCR.OCRmyPDF,
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Lang:          cfg.OCR.Lang,
		DPI:           cfg.OCR.DPI,
		OptimizeLevel: cfg.OCR.OptimizeLevel,
	}, ocr.WithRunner(ocr.ExecRunner{Timeout: cfg.CommandTimeout()}))

	extractor := extract.New(engine, extract.Options{
		Lang:     cfg.OCR.Lang,
		DPI:      cfg.OCR.DPI,
		MinChars: cfg.Extract.MinChars,
		Cache:    fc,
	})

	indexer := index.NewOrchestrator(store, writer, extractor, document.NewResolver(decrypter, ""),
		engine, fc, bus, index.Options{
			Workers:       cfg.Extract.Workers,
			UploadTimeout: cfg.UploadTimeout(),
			UploadPages:   cfg.OCR.MaxPages,
			Lang:          cfg.OCR.Lang,
			LockPath:      cfg.LockPath(),
		})

	ingester := ingest.New(store, encrypter, bus, ingest.Options{
		DocumentsDir:   cfg.DocumentsDir(),
		AttachmentsDir: cfg.AttachmentsDir(),
	})
	ingest.RegisterIndexing(bus, indexer)

	return &app{
		store:   store,
		bus:     bus,
		cache:   fc,
		writer:  writer,
		indexer: indexer,
		search: search.New(store, search.Options{
			Limit:         cfg.Search.Limit,
			SnippetTokens: cfg.Search.SnippetTokens,
		}),
		entities: entities.New(store, nil, bus),
		ingest:   ingester,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// Package docvec keeps a local vector index of documented code symbols in
// sync with the state of a source tree.
//
// Callers feed it the symbols observed in a file; docvec reconciles the
// persisted embeddings against that snapshot — deleting what disappeared,
// embedding and storing what is new — and answers semantic queries over
// the result.
//
// Basic usage:
//
//	client, err := docvec.New(
//	    docvec.WithDataDir(".docvec"),
//	    docvec.WithWorkspaceRoot("/path/to/project"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Reconcile one file
//	metrics := client.Sync.SyncFile(ctx, symbols, "src/math.ts")
//	fmt.Println(metrics.Successful(), "symbols indexed")
//
//	// Semantic search
//	results, err := client.Search.Query(ctx, "how do I add numbers", 10)
package docvec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/docvec/docvec/application/service"
	"github.com/docvec/docvec/infrastructure/persistence"
	"github.com/docvec/docvec/infrastructure/provider"
	"github.com/docvec/docvec/internal/config"
	"github.com/docvec/docvec/internal/database"
	"github.com/docvec/docvec/internal/log"
)

// ErrClientClosed is returned by Close when the client is already closed.
var ErrClientClosed = errors.New("docvec: client already closed")

// Client is the main entry point for the docvec library.
//
// Access operations via struct fields:
//
//	client.Sync.SyncFile(ctx, symbols, path)
//	client.Search.Query(ctx, "query", 10)
type Client struct {
	Sync   *service.Sync
	Search *service.Search

	db     database.Database
	hugot  *provider.HugotEmbedder
	logger *slog.Logger
	closed atomic.Bool
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	app := config.NewAppConfig()

	if cfg.loadEnv {
		if err := config.LoadDotEnv(cfg.dotenvPath); err != nil {
			return nil, fmt.Errorf("load dotenv: %w", err)
		}
		env, err := config.LoadEnv()
		if err != nil {
			return nil, err
		}
		app = env.ToAppConfig()
	}

	if cfg.configFile != "" {
		fc, err := config.LoadFile(cfg.configFile)
		if err != nil {
			return nil, err
		}
		app = fc.Apply(app)
	}

	// Explicit options win over environment and file configuration.
	app = applyAppOptions(app, cfg.appOpts)

	logger := cfg.logger
	if logger == nil {
		logger = log.New(log.Format(app.LogFormat()), app.LogLevel())
	}

	dataDir, err := config.PrepareDataDir(app.DataDir())
	if err != nil {
		return nil, err
	}

	dbPath := cfg.dbPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "docvec.db")
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := persistence.NewEmbeddingStore(db, app, logger)

	// Fall back to the built-in local model when no embedder is configured.
	embedder := cfg.embedder
	var hugot *provider.HugotEmbedder
	if embedder == nil {
		modelDir := cfg.modelDir
		if modelDir == "" {
			modelDir = filepath.Join(dataDir, config.DefaultEmbedderModelDir)
		}
		hugot = provider.NewHugotEmbedder(modelDir, app, logger)
		if !hugot.Available() {
			errClose := db.Close()
			return nil, errors.Join(
				fmt.Errorf("no embedding model found in %s — download one or configure an embedder", modelDir),
				errClose,
			)
		}
		logger.Info("built-in embedding provider enabled", slog.String("model_dir", modelDir))
		embedder = hugot
	}

	client := &Client{
		db:     db,
		hugot:  hugot,
		logger: logger,
	}
	client.Sync = service.NewSync(store, embedder, cfg.workspaceRoot, logger)
	client.Search = service.NewSearch(store, embedder, app.SearchLimit(), logger)

	return client, nil
}

// Close releases the database and embedding resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	if c.hugot != nil {
		if err := c.hugot.Close(); err != nil {
			c.logger.Error("failed to close embedding provider", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("docvec client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func applyAppOptions(app config.AppConfig, opts []config.AppConfigOption) config.AppConfig {
	for _, opt := range opts {
		opt(&app)
	}
	return app
}

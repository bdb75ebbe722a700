package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ChamsBouzaiene/promptvault/internal/config"
	"github.com/ChamsBouzaiene/promptvault/internal/monitor"
	"github.com/ChamsBouzaiene/promptvault/internal/search"
	"github.com/ChamsBouzaiene/promptvault/internal/storage"
	"github.com/ChamsBouzaiene/promptvault/internal/vault"
)

type runtimeEnv struct {
	Manager    *vault.Manager
	Recorder   *monitor.Recorder
	Errors     *monitor.ErrorLog
	StorePath  string
	IndexPath  string
	Backend    string
	WatchStore bool

	store storage.Store
}

func (r *runtimeEnv) Close() {
	if closer, ok := r.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}
}

// OpenIndex opens (or creates) the on-disk search index and refreshes it
// from the current projects, so results never lag behind the store. When
// the user has configured a watch daemon to maintain the index, the
// per-command refresh is skipped and the persisted index is used as is.
func (r *runtimeEnv) OpenIndex(ctx context.Context) (*search.Index, error) {
	ix, err := search.New(r.IndexPath)
	if err != nil {
		return nil, err
	}
	if r.WatchStore {
		return ix, nil
	}
	if err := r.refreshIndex(ctx, ix); err != nil {
		ix.Close()
		return nil, err
	}
	return ix, nil
}

// refreshIndex rebuilds the search index from the current projects,
// recording the latency and logging failures.
func (r *runtimeEnv) refreshIndex(ctx context.Context, ix *search.Index) error {
	err := r.Recorder.Measure("search.rebuild", func() error {
		projects, err := r.Manager.GetProjects(ctx)
		if err != nil {
			return err
		}
		return ix.Rebuild(projects)
	})
	if err != nil {
		r.Errors.Error("search index rebuild failed", err.Error())
	}
	return err
}

// prepareRuntimeEnv resolves the store location and backend from flags,
// environment and the saved config, then wires the version manager on top.
//
// Precedence: flag > environment > config file > default.
func prepareRuntimeEnv(ctx context.Context, storeFlag, backendFlag string) (*runtimeEnv, error) {
	cfgManager, err := config.NewManager()
	var userConfig *config.Config
	if err == nil {
		userConfig, err = cfgManager.Load()
		if err != nil {
			log.Printf("failed to load user config: %v", err)
			userConfig = &config.Config{}
		}
	} else {
		log.Printf("failed to initialize config manager: %v", err)
		userConfig = &config.Config{}
	}

	storePath := firstNonEmpty(storeFlag, os.Getenv("PROMPTVAULT_STORE"), userConfig.StorePath)
	backend := firstNonEmpty(backendFlag, os.Getenv("PROMPTVAULT_BACKEND"), userConfig.Backend, "json")
	defaultModel := firstNonEmpty(os.Getenv("PROMPTVAULT_MODEL"), userConfig.DefaultModel)

	if storePath == "" {
		if cfgManager == nil {
			return nil, fmt.Errorf("no store path configured and no user config dir available")
		}
		name := "state.json"
		if backend == "sqlite" {
			name = "state.db"
		}
		storePath = filepath.Join(cfgManager.DataDir(), name)
	}
	if err := os.MkdirAll(filepath.Dir(storePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var store storage.Store
	switch backend {
	case "json":
		store = storage.NewFileStore(storePath)
	case "sqlite":
		store, err = storage.NewSQLiteStore(ctx, storePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown backend %q (want json or sqlite)", backend)
	}

	indexPath := firstNonEmpty(os.Getenv("PROMPTVAULT_INDEX"), userConfig.SearchIndex)
	if indexPath == "" {
		indexPath = filepath.Join(filepath.Dir(storePath), "search.bleve")
	}

	recorder := monitor.NewRecorder()
	manager := vault.NewManager(store, vault.Config{
		DefaultModel: defaultModel,
		Recorder:     recorder,
	})

	return &runtimeEnv{
		Manager:    manager,
		Recorder:   recorder,
		Errors:     monitor.NewErrorLog(0),
		StorePath:  storePath,
		IndexPath:  indexPath,
		Backend:    backend,
		WatchStore: userConfig.WatchStore,
		store:      store,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

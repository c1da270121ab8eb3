package api

import (
	"fmt"
	"path/filepath"

	"github.com/JaimeStill/pdf-editor/internal/config"
	"github.com/JaimeStill/pdf-editor/internal/documents"
	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/internal/images"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Editor    editor.System
	Documents documents.System
	Images    images.System
	Reaper    *editor.Reaper
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) (*Domain, error) {
	store, err := newStore(runtime, cfg)
	if err != nil {
		return nil, err
	}

	applier := editor.NewApplier(
		runtime.Toolkit,
		cfg.Toolkit.FillOptions(),
		cfg.Sessions.Batch(),
		runtime.Logger,
	)

	editorSys := editor.New(
		store,
		runtime.Storage,
		runtime.Toolkit,
		applier,
		&cfg.Sessions,
		runtime.Logger,
	)

	reaper, err := editor.NewReaper(editorSys, cfg.Sessions.ReapSchedule, runtime.Logger)
	if err != nil {
		return nil, err
	}

	return &Domain{
		Editor: editorSys,
		Documents: documents.New(
			runtime.Storage,
			runtime.Toolkit,
			cfg.Toolkit.FillOptions(),
			runtime.Logger,
		),
		Images: images.New(runtime.Logger),
		Reaper: reaper,
	}, nil
}

// Start registers long-running domain systems with the lifecycle coordinator.
func (d *Domain) Start(runtime *Runtime) error {
	return d.Reaper.Start(runtime.Lifecycle)
}

func newStore(runtime *Runtime, cfg *config.Config) (editor.Store, error) {
	switch cfg.Sessions.Store {
	case editor.StoreFile:
		return editor.NewFileStore(runtime.Storage, runtime.Logger), nil
	case editor.StorePostgres:
		if runtime.Database == nil {
			return nil, fmt.Errorf("postgres session store requires a database")
		}
		return editor.NewPostgresStore(runtime.Database.Connection(), runtime.Logger), nil
	case editor.StoreBadger:
		path := cfg.Sessions.BadgerPath
		if path == "" {
			path = filepath.Join(cfg.Storage.BasePath, "sessions.badger")
		}

		store, err := editor.NewBadgerStore(path, runtime.Logger)
		if err != nil {
			return nil, err
		}

		lc := runtime.Lifecycle
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			if err := store.Close(); err != nil {
				runtime.Logger.Error("badger close failed", "error", err)
			}
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Sessions.Store)
	}
}

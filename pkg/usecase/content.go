package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/carrel-app/carrel/pkg/domain/interfaces"
	"github.com/carrel-app/carrel/pkg/domain/model"
	"github.com/carrel-app/carrel/pkg/domain/types"
	"github.com/carrel-app/carrel/pkg/utils/async"
)

const defaultStorageTimeout = 30 * time.Second

// snapshot bundles the live set with its options so both swap atomically.
// Concurrent lookups observe either the fully-old or fully-new snapshot.
type snapshot struct {
	set     *model.ContentSet
	options model.ContentOptions
}

// Content owns the single live ContentSet. All mutation goes through Install
// and Clear, which replace the snapshot pointer; lookups never see a partial
// state.
type Content struct {
	storage        interfaces.Storage
	current        atomic.Pointer[snapshot]
	storageTimeout time.Duration
}

// ContentOption configures a Content store.
type ContentOption func(*Content)

// WithStorageTimeout bounds every persistence call issued by the store.
func WithStorageTimeout(d time.Duration) ContentOption {
	return func(c *Content) {
		c.storageTimeout = d
	}
}

// NewContent creates a content store backed by the given persistence layer.
func NewContent(storage interfaces.Storage, opts ...ContentOption) *Content {
	c := &Content{
		storage:        storage,
		storageTimeout: defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rehydrate restores the last persisted set, if any. Called once at startup;
// a store that fails to restore simply starts not-ready.
func (c *Content) Rehydrate(ctx context.Context) {
	logger := ctxlog.From(ctx)

	sctx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	defer cancel()

	files, options := c.storage.Load(sctx)
	if files == nil {
		logger.Debug("no persisted package to restore")
		return
	}

	opts := model.DefaultContentOptions()
	if options != nil {
		opts = *options
	}

	c.current.Store(&snapshot{
		set:     &model.ContentSet{ID: uuid.NewString(), Files: files},
		options: opts,
	})

	logger.Info("restored persisted package", "file_count", files.Len())
}

// Install atomically replaces the live set and persists it. The in-memory
// install always succeeds for well-formed input; a persistence failure is
// reported through InstallResult.StorageError so the caller can warn that
// content won't survive a restart.
func (c *Content) Install(ctx context.Context, files *model.FileMap, opts model.ContentOptions) (*model.InstallResult, error) {
	if files == nil {
		return nil, goerr.New("file map must not be nil")
	}

	logger := ctxlog.From(ctx)

	set := &model.ContentSet{ID: uuid.NewString(), Files: files}
	c.current.Store(&snapshot{set: set, options: opts})

	result := &model.InstallResult{
		ID:        set.ID,
		FileCount: set.FileCount(),
	}

	sctx, cancel := context.WithTimeout(ctx, c.storageTimeout)
	defer cancel()

	if err := c.storage.Save(sctx, files, opts); err != nil {
		if goerr.HasTag(err, types.ErrTagQuotaExceeded) {
			logger.Warn("package exceeds storage quota; it will not survive a restart",
				"file_count", set.FileCount(),
			)
		} else {
			logger.Warn("failed to persist package; it will not survive a restart",
				"error", err,
			)
		}
		result.StorageError = err
	}

	logger.Info("package installed",
		"id", set.ID,
		"file_count", set.FileCount(),
		"persisted", result.StorageError == nil,
	)

	return result, nil
}

// Clear drops the live set and empties persistence in the background.
// Persistence failures are logged, never surfaced; the in-memory clear is
// what callers rely on.
func (c *Content) Clear(ctx context.Context) error {
	c.current.Store(nil)

	async.Dispatch(ctx, func(ctx context.Context) error {
		sctx, cancel := context.WithTimeout(ctx, c.storageTimeout)
		defer cancel()
		if err := c.storage.Clear(sctx); err != nil {
			return goerr.Wrap(err, "failed to clear persisted package")
		}
		return nil
	})

	ctxlog.From(ctx).Info("package cleared")
	return nil
}

// Status reports the serving state.
func (c *Content) Status(ctx context.Context) model.Status {
	snap := c.current.Load()
	status := model.Status{Version: types.Version}
	if snap != nil {
		status.Ready = true
		status.FileCount = snap.set.FileCount()
	}
	return status
}

// Lookup resolves a virtual path against the live set. A store with no
// package (or an empty one) fails with ErrTagNotReady; an unresolvable path
// fails with ErrTagNotFound. The two are deliberately distinct: "nothing
// loaded" vs "this path doesn't exist".
func (c *Content) Lookup(ctx context.Context, reqPath string) (*model.File, error) {
	snap := c.current.Load()
	if snap == nil || snap.set.FileCount() == 0 {
		return nil, goerr.New("no package loaded",
			goerr.T(types.ErrTagNotReady),
		)
	}

	key, ok := Resolve(reqPath, snap.set.Files)
	if !ok {
		return nil, goerr.New("file not found in package",
			goerr.T(types.ErrTagNotFound),
			goerr.V("path", reqPath),
		)
	}

	data, _ := snap.set.Files.Get(key)
	return &model.File{Path: key, Data: data}, nil
}

// Options returns the live set's options, or defaults when nothing is loaded.
func (c *Content) Options() model.ContentOptions {
	if snap := c.current.Load(); snap != nil {
		return snap.options
	}
	return model.DefaultContentOptions()
}

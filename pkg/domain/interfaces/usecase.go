package interfaces

import (
	"context"

	"github.com/carrel-app/carrel/pkg/domain/model"
)

// ContentStore holds the single live ContentSet and answers path lookups.
type ContentStore interface {
	// Install atomically replaces the live set. A persistence failure does
	// not fail the install; it is reported in the result.
	Install(ctx context.Context, files *model.FileMap, opts model.ContentOptions) (*model.InstallResult, error)

	// Clear drops the live set and empties persistence best-effort.
	Clear(ctx context.Context) error

	// Status reports readiness and file count.
	Status(ctx context.Context) model.Status

	// Lookup resolves a virtual path against the live set. Failures carry
	// types.ErrTagNotReady or types.ErrTagNotFound.
	Lookup(ctx context.Context, path string) (*model.File, error)

	// Options returns the options of the live set, or defaults when none.
	Options() model.ContentOptions
}

// PackageLoader turns raw archive bytes into an installed ContentSet.
type PackageLoader interface {
	Load(ctx context.Context, data []byte, opts model.ContentOptions) (*model.InstallResult, error)
}

package interfaces

import (
	"context"

	"github.com/carrel-app/carrel/pkg/domain/model"
)

// Extractor decodes archive bytes off the caller's goroutine, reporting
// progress and the final file map over the returned channel. The channel is
// closed after a PhaseComplete or PhaseError event, or when ctx is cancelled.
type Extractor interface {
	Extract(ctx context.Context, data []byte) <-chan model.ExtractEvent
}

// Storage persists the live ContentSet across process restarts.
type Storage interface {
	// Save replaces the persisted content and options in one transaction.
	// A write rejected for size reasons carries types.ErrTagQuotaExceeded.
	Save(ctx context.Context, files *model.FileMap, opts model.ContentOptions) error

	// Load returns the persisted state, or (nil, nil) when there is none.
	// Read failures degrade to "nothing restored"; Load never fails startup.
	Load(ctx context.Context) (*model.FileMap, *model.ContentOptions)

	// Clear empties the persisted state.
	Clear(ctx context.Context) error
}

// Fetcher downloads a remote archive and returns its raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

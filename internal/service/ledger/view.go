package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/beeconnect/server/internal/domain/models"
)

// ErrStaleFetch is returned when a reload finished after a newer one was applied.
var ErrStaleFetch = errors.New("stale ledger fetch discarded")

// Ledger is the subset of Service used by View.
type Ledger interface {
	Append(ctx context.Context, hiveID string, rec models.Inspection) (models.Inspection, error)
	List(ctx context.Context, hiveID string, pageSize int) (Pages, error)
}

// View holds the in-memory ledger snapshot of one hive. Each successful reload
// replaces the snapshot wholesale; results of cancelled or superseded reloads are dropped.
type View struct {
	ledger   Ledger
	hiveID   string
	pageSize int

	mu      sync.Mutex
	started uint64
	applied uint64
	pages   Pages
	loaded  bool
}

// NewView creates an empty view for hiveID.
func NewView(ledger Ledger, hiveID string, pageSize int) *View {
	return &View{ledger: ledger, hiveID: hiveID, pageSize: pageSize, pages: Paginate(nil, pageSize)}
}

// Reload fetches the ledger and swaps it in. On error the snapshot is left unchanged.
func (v *View) Reload(ctx context.Context) error {
	v.mu.Lock()
	v.started++
	gen := v.started
	v.mu.Unlock()

	pages, err := v.ledger.List(ctx, v.hiveID, v.pageSize)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen < v.applied {
		return ErrStaleFetch
	}
	v.pages = pages
	v.applied = gen
	v.loaded = true
	return nil
}

// Append stores rec and places it at the head of the snapshot once the store confirms it.
func (v *View) Append(ctx context.Context, rec models.Inspection) (models.Inspection, error) {
	saved, err := v.ledger.Append(ctx, v.hiveID, rec)
	if err != nil {
		return models.Inspection{}, err
	}

	v.mu.Lock()
	v.pages = v.pages.Prepend(saved)
	v.mu.Unlock()
	return saved, nil
}

// Snapshot returns the current pages and whether a reload has ever succeeded.
func (v *View) Snapshot() (Pages, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pages, v.loaded
}

// Navigator returns a navigator over the current snapshot positioned at index.
func (v *View) Navigator(index int) *Navigator {
	pages, _ := v.Snapshot()
	return NewNavigator(pages, index)
}

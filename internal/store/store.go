// Package store persists a book's reconciliation state between runs.
package store

import (
	"context"
	"fmt"

	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// Store loads and saves the working set plus any suggestions awaiting
// review. Persistence is a collaborator, not the engine: match semantics
// are identical whichever implementation is behind this interface.
type Store interface {
	Load(ctx context.Context) (*ledger.WorkingSet, []model.MatchSuggestion, error)
	Save(ctx context.Context, ws *ledger.WorkingSet, pending []model.MatchSuggestion) error
}

// QuotaError reports that a snapshot exceeded the configured size budget.
// The snapshot was still written: document references are shed first and
// match fields are never touched, so a degraded save leaves the book
// consistent. Callers typically log it and carry on.
type QuotaError struct {
	Limit int64
	Size  int64
	Shed  int
}

func (e QuotaError) Error() string {
	return fmt.Sprintf("snapshot is %d bytes against a %d byte budget (shed %d document refs)", e.Size, e.Limit, e.Shed)
}

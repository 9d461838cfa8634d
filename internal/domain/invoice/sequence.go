package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MaxSequenceReader reads the highest issued sequence for an issuer and
// fiscal year, 0 when none exist.
type MaxSequenceReader interface {
	MaxSequence(ctx context.Context, issuerID uuid.UUID, year int) (int, error)
}

// Allocator derives the next invoice number. The read-max-then-increment is
// optimistic: uniqueness is enforced by the store's unique constraint at
// write time, and the assembler retries allocation on conflict. Sequence
// state is reachable only through this type.
type Allocator struct {
	store MaxSequenceReader
}

func NewAllocator(store MaxSequenceReader) *Allocator {
	return &Allocator{store: store}
}

// NextNumber returns the next number for the fiscal year of asOf. A store
// failure propagates unchanged: the allocator never fabricates a number from
// stale state.
func (a *Allocator) NextNumber(ctx context.Context, issuerID uuid.UUID, asOf time.Time) (Number, error) {
	year := asOf.Year()
	max, err := a.store.MaxSequence(ctx, issuerID, year)
	if err != nil {
		return Number{}, err
	}
	return Number{Year: year, Sequence: max + 1}, nil
}

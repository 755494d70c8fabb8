package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

// Ledger is the authority on slot availability. Claims are a single
// conditional write, so of any number of concurrent claimants exactly one
// succeeds. It works against whatever query handle it is given, which lets
// a claim share a transaction with the booking insert.
type Ledger struct{}

// Claim marks slotID unavailable. It fails with ErrSlotTaken when the slot is
// already held and ErrSlotNotFound when it does not exist.
func (Ledger) Claim(ctx context.Context, q *dbgen.Queries, slotID int64, now time.Time) error {
	rows, err := q.ClaimSlot(ctx, dbgen.ClaimSlotParams{UpdatedAt: now.UTC(), ID: slotID})
	if err != nil {
		return persistenceError("claim slot", err)
	}
	if rows == 1 {
		return nil
	}
	if _, err := q.GetSlotByID(ctx, slotID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		return persistenceError("load slot", err)
	}
	return ErrSlotTaken
}

// Release makes slotID available again. Releasing an available slot is a
// no-op.
func (Ledger) Release(ctx context.Context, q *dbgen.Queries, slotID int64, now time.Time) error {
	if _, err := q.ReleaseSlot(ctx, dbgen.ReleaseSlotParams{UpdatedAt: now.UTC(), ID: slotID}); err != nil {
		return persistenceError("release slot", err)
	}
	return nil
}

package booking

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	dbgen "github.com/codr1/Padelicious/internal/db/generated"
)

const (
	bookingCodePrefix = "PDL"
	maxBookingCodeTry = 5
)

// newBookingCode returns a reference like PDL261016143055042: prefix, local
// creation time to the second, and three random digits.
func newBookingCode(now time.Time) string {
	return fmt.Sprintf("%s%s%03d", bookingCodePrefix, now.Format("060102150405"), rand.IntN(1000))
}

func generateBookingCode(ctx context.Context, q *dbgen.Queries, now time.Time) (string, error) {
	for attempt := 0; attempt < maxBookingCodeTry; attempt++ {
		code := newBookingCode(now)
		count, err := q.CountBookingsByCode(ctx, code)
		if err != nil {
			return "", persistenceError("check booking code", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", persistenceError("generate booking code", fmt.Errorf("no free code after %d attempts", maxBookingCodeTry))
}

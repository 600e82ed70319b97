package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MonthPrefix builds "<prefix>-YYYYMM", the counter key for monthly document numbering
func MonthPrefix(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s", prefix, date.UTC().Format("200601"))
}

// FormatDocumentNumber builds "<prefix>-YYYYMM-XXXX" with the sequence zero padded to four digits.
// Sequences past 9999 keep all their digits.
func FormatDocumentNumber(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%04d", MonthPrefix(prefix, date), seq)
}

// SequenceAllocator hands out gap-free per-tenant counters.
// Implementations must serialize concurrent callers for the same (tenant, prefix) and
// roll back with the surrounding transaction.
type SequenceAllocator interface {
	Next(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)
}

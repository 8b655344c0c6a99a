package service

import (
	"context"
	"fmt"
	"time"

	"salesdesk/pkg/billing"
)

// prefixCounter counts existing document numbers starting with a prefix.
type prefixCounter func(ctx context.Context, prefix string) (int64, error)

// assignNumber returns the next document number for prefix and pattern.
// Must run inside the create transaction so the count and insert are atomic.
func assignNumber(ctx context.Context, count prefixCounter, prefix, pattern string, now time.Time) (string, error) {
	p := billing.NumberPattern(pattern)
	switch p {
	case billing.PatternNone, billing.PatternYear, billing.PatternYearMonth,
		billing.PatternDateDDMMYYYY, billing.PatternYearSlashMonth:
	default:
		return "", fmt.Errorf("%w: unknown number pattern %q", ErrInvalidInput, pattern)
	}

	head := billing.NumberPrefix(prefix, p, now)
	n, err := count(ctx, head)
	if err != nil {
		return "", fmt.Errorf("failed to count %s numbers: %w", prefix, err)
	}
	return billing.BuildNumber(prefix, p, billing.PadSequence(n+1), now), nil
}

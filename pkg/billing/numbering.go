package billing

import (
	"fmt"
	"strings"
	"time"
)

// NumberPattern is the calendar part of a document number.
type NumberPattern string

const (
	PatternNone           NumberPattern = ""
	PatternYear           NumberPattern = "YEAR"
	PatternYearMonth      NumberPattern = "YEAR_MONTH"
	PatternDateDDMMYYYY   NumberPattern = "DATE_DDMMYYYY"
	PatternYearSlashMonth NumberPattern = "YEAR_SLASH_MONTH"
)

// Document number prefixes.
const (
	PrefixDeliveryChallan  = "DC"
	PrefixRecurringInvoice = "RINV"
	PrefixPayment          = "PID"
	PrefixInvoice          = "INV"
)

// DefaultSequence is used when no sequence was entered.
const DefaultSequence = "001"

// NumberPrefix renders everything before the sequence, e.g. "DC-202503-".
func NumberPrefix(prefix string, pattern NumberPattern, now time.Time) string {
	switch pattern {
	case PatternYear:
		return fmt.Sprintf("%s-%s-", prefix, now.Format("2006"))
	case PatternYearMonth:
		return fmt.Sprintf("%s-%s-", prefix, now.Format("200601"))
	case PatternDateDDMMYYYY:
		return fmt.Sprintf("%s-%s-", prefix, now.Format("02012006"))
	case PatternYearSlashMonth:
		return fmt.Sprintf("%s-%s-", prefix, now.Format("2006/01"))
	default:
		return prefix + "-"
	}
}

// BuildNumber joins the calendar prefix and the sequence. The sequence is
// used as given, or DefaultSequence when blank. Uniqueness is not checked.
func BuildNumber(prefix string, pattern NumberPattern, sequence string, now time.Time) string {
	sequence = strings.TrimSpace(sequence)
	if sequence == "" {
		sequence = DefaultSequence
	}
	return NumberPrefix(prefix, pattern, now) + sequence
}

// PadSequence renders n with at least three digits.
func PadSequence(n int64) string {
	return fmt.Sprintf("%03d", n)
}

package bill

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xraph/khata/types"
)

// NumberPrefix starts every bill number: BILL-YYYYMMDD-NNNN.
const NumberPrefix = "BILL"

// MaxSequence is the last per-day sequence a four-digit counter can hold.
const MaxSequence = 9999

// ErrSequenceExhausted is returned once a day has used every bill number.
var ErrSequenceExhausted = errors.New("khata: bill number sequence exhausted for the day")

// DayPrefix returns "BILL-YYYYMMDD-" for day.
func DayPrefix(day types.Date) string {
	return NumberPrefix + "-" + day.Compact() + "-"
}

// FormatNumber renders the number for the seq-th bill of day.
func FormatNumber(day types.Date, seq int) string {
	return fmt.Sprintf("%s%04d", DayPrefix(day), seq)
}

// ParseNumber splits a bill number into its day and sequence.
func ParseNumber(number string) (types.Date, int, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != NumberPrefix || len(parts[1]) != 8 || len(parts[2]) != 4 {
		return types.Date{}, 0, fmt.Errorf("bill: malformed number %q", number)
	}
	day, err := types.ParseDate(parts[1][0:4] + "-" + parts[1][4:6] + "-" + parts[1][6:8])
	if err != nil {
		return types.Date{}, 0, fmt.Errorf("bill: malformed number %q: %w", number, err)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return types.Date{}, 0, fmt.Errorf("bill: malformed number %q", number)
	}
	return day, seq, nil
}

// NextNumber returns the number following latest for day. latest is the
// greatest number already issued with DayPrefix(day), or "" for the first
// bill of the day.
func NextNumber(day types.Date, latest string) (string, error) {
	if latest == "" {
		return FormatNumber(day, 1), nil
	}
	latestDay, seq, err := ParseNumber(latest)
	if err != nil {
		return "", err
	}
	if latestDay != day {
		return "", fmt.Errorf("bill: number %q does not belong to %s", latest, day)
	}
	if seq >= MaxSequence {
		return "", ErrSequenceExhausted
	}
	return FormatNumber(day, seq+1), nil
}

package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/models"
)

// MaxSequence is the largest sequence a scope can hold; numbers carry two sequence digits.
const MaxSequence = 99

// Scope bounds sequence uniqueness: one document family, one month, one week of that month.
type Scope struct {
	Prefix    string
	MonthYear string
	Week      int
}

// Key is the counter key for the scope and the literal prefix of every number issued in it.
func (s Scope) Key() string {
	return fmt.Sprintf("%s-%s-%d", s.Prefix, s.MonthYear, s.Week)
}

func (s Scope) String() string {
	return s.Key()
}

// WeekOfMonth is ceil(day/7), so days 1-7 are week 1 and days 29-31 are week 5.
func WeekOfMonth(date time.Time) int {
	return (date.Day() + 6) / 7
}

func ScopeFor(prefix string, date time.Time) Scope {
	return Scope{
		Prefix:    prefix,
		MonthYear: date.Format("0106"),
		Week:      WeekOfMonth(date),
	}
}

// ParseBusinessDate accepts exactly YYYY-MM-DD naming a real calendar day.
func ParseBusinessDate(value string) (time.Time, error) {
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errs.NewInvalidDate("ParseBusinessDate", value, err)
	}
	return date, nil
}

// Number is an issued document number such as INV-0325-101.
type Number struct {
	Scope
	Seq int
}

func (n Number) String() string {
	return fmt.Sprintf("%s%02d", n.Scope.Key(), n.Seq)
}

// ParseNumber splits a document number back into its scope and sequence.
func ParseNumber(value string) (Number, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 3 || parts[0] == "" || len(parts[1]) != 4 || len(parts[2]) != 3 {
		return Number{}, fmt.Errorf("malformed document number %q", value)
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return Number{}, fmt.Errorf("malformed month/year in %q: %w", value, err)
	}

	week, err := strconv.Atoi(parts[2][:1])
	if err != nil || week < 1 || week > 5 {
		return Number{}, fmt.Errorf("malformed week in %q", value)
	}
	seq, err := strconv.Atoi(parts[2][1:])
	if err != nil || seq < 1 || seq > MaxSequence {
		return Number{}, fmt.Errorf("malformed sequence in %q", value)
	}

	return Number{
		Scope: Scope{Prefix: parts[0], MonthYear: parts[1], Week: week},
		Seq:   seq,
	}, nil
}

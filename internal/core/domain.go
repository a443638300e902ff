package core

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects which of the two statement flavours a workspace holds.
const (
	KindAccount Kind = "account"
	KindCard    Kind = "card"
)

type (
	Kind string

	// Date is a calendar day at UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is a categorized statement line. For account statements a
	// positive amount is income and a negative one an expense; card
	// statements store charges as positive magnitudes.
	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
	}

	// Goals maps a category to its planned amount.
	Goals map[string]decimal.Decimal
)

var (
	ErrUnknownKind      = errors.New("unknown statement kind")
	ErrNegativeGoal     = errors.New("goal must not be negative")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
)

var (
	isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	brDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// ParseKind validates a kind coming from a URL or message.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAccount, KindCard:
		return k, nil
	}
	return "", ErrUnknownKind
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts "YYYY-MM-DD" and "D/M/YYYY". It reports false for any
// other shape and for days that do not exist in the calendar.
func ParseDate(raw string) (Date, bool) {
	s := strings.TrimSpace(raw)
	var y, m, d int
	if p := isoDate.FindStringSubmatch(s); p != nil {
		y, m, d = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else if p := brDate.FindStringSubmatch(s); p != nil {
		d, m, y = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else {
		return Date{}, false
	}

	date := NewDate(y, m, d)
	if date.Year() != y || date.Month() != m || date.Day() != d {
		// time.Date normalizes overflow (31/02 -> 02/03); reject it.
		return Date{}, false
	}
	return date, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(time.DateOnly)
}

// BR formats the date as DD/MM/YYYY.
func (d Date) BR() string {
	return d.Format("02/01/2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return ErrInvalidDate
	}
	parsed, ok := ParseDate(s)
	if !ok {
		return ErrInvalidDate
	}
	*d = parsed
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Set returns a copy of g with category set to planned.
func (g Goals) Set(category string, planned decimal.Decimal) (Goals, error) {
	if strings.TrimSpace(category) == "" {
		return g, ErrEmptyCategory
	}
	if planned.IsNegative() {
		return g, ErrNegativeGoal
	}
	out := make(Goals, len(g)+1)
	for k, v := range g {
		out[k] = v
	}
	out[category] = planned
	return out, nil
}

// Planned returns the goal for category, or zero when none is set.
func (g Goals) Planned(category string) decimal.Decimal {
	if v, ok := g[category]; ok {
		return v
	}
	return decimal.Zero
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimestampSkew is the tolerance used when comparing write times across filesystems
const DefaultTimestampSkew = 3 * time.Second

// dateLayout accepts both m/d/yyyy and mm/dd/yyyy
const dateLayout = "1/2/2006"

// Date is a calendar day used as a newer-than / older-than bound
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a mm/dd/yyyy date
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected mm/dd/yyyy): %w", s, err)
	}
	return &Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Compare orders t's UTC calendar day against d: -1 before, 0 same day, 1 after.
// Year is compared first, then month, then day.
func (d Date) Compare(t time.Time) int {
	y, m, day := t.UTC().Date()
	switch {
	case y < d.Year:
		return -1
	case y > d.Year:
		return 1
	case m < d.Month:
		return -1
	case m > d.Month:
		return 1
	case day < d.Day:
		return -1
	case day > d.Day:
		return 1
	}
	return 0
}

// String returns the date as mm/dd/yyyy
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", int(d.Month), d.Day, d.Year)
}

// MirrorOperation is the explicit settings object for one mirror run
type MirrorOperation struct {
	ID      string
	Source  string
	Dest    string
	LogFile string

	// Selection
	Wildcards []string
	Includes  []string
	Excludes  []string
	NewerThan *Date
	OlderThan *Date
	Hidden    bool

	// Behaviour
	Update             bool
	ExactTimestamps    bool
	TimestampSkew      time.Duration
	Verify             bool
	ContinueAfterError bool
	Overwrite          bool
	Move               bool
	Clean              bool
	NoCopy             bool
	List               bool
	Wait               bool
	Root               bool
	LowPriority        bool

	// Reporting
	Debug    bool
	Verbose  bool
	Quiet    bool
	ShowPath bool

	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// Validate checks if the operation configuration is valid
func (op *MirrorOperation) Validate() error {
	if op.Source == "" {
		return &ValidationError{Field: "Source", Message: "source path is required"}
	}
	if op.Dest == "" {
		return &ValidationError{Field: "Dest", Message: "destination path is required"}
	}
	if op.TimestampSkew < 0 {
		return &ValidationError{Field: "TimestampSkew", Message: "timestamp skew cannot be negative"}
	}
	if op.NewerThan != nil && op.OlderThan != nil {
		newer := time.Date(op.NewerThan.Year, op.NewerThan.Month, op.NewerThan.Day, 0, 0, 0, 0, time.UTC)
		if op.OlderThan.Compare(newer) > 0 {
			return &ValidationError{Field: "OlderThan", Message: "older-than date is before newer-than date"}
		}
	}
	if op.Move && op.NoCopy {
		return &ValidationError{Field: "Move", Message: "move cannot be combined with no-copy"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

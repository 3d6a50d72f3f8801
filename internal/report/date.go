package report

import (
	"errors"
	"fmt"
	"time"
)

const (
	DashedLayout = "2006-01-02"
	DottedLayout = "2006.01.02"
)

var ErrInvalidDate = errors.New("report: date must be formatted as YYYY-MM-DD")

// Date is a calendar day. Both the dashed and dotted renderings are derived
// from the same value. The zero Date is unset; every parsed or constructed
// day, including 0001-01-01, is set.
type Date struct {
	t   time.Time
	set bool
}

// ParseDate accepts only the canonical dashed form.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DashedLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t, set: true}, nil
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), set: true}
}

func Today() Date {
	return DateOf(time.Now())
}

// IsZero reports whether d was never set.
func (d Date) IsZero() bool {
	return !d.set
}

// Dashed is used for the remote path and the commit message.
func (d Date) Dashed() string {
	return d.t.Format(DashedLayout)
}

// Dotted is used for the local filename.
func (d Date) Dotted() string {
	return d.t.Format(DottedLayout)
}

// Filename is the local report file name, e.g. `2024.03.05.md`.
func (d Date) Filename() string {
	return d.Dotted() + ".md"
}

func (d Date) String() string {
	return d.Dashed()
}

// Set and Type make *Date usable as a pflag.Value.
func (d *Date) Set(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Date) Type() string {
	return "YYYY-MM-DD"
}

// Package timewindow compiles cron-style time windows ("0 9 * * mon-fri")
// into matchers over a formatted timestamp.
//
// A compiled pattern and FormatNow render the five calendar fields in the
// same canonical order, month day hour minute dayOfWeek, so a pattern
// matches a timestamp exactly when every field of the timestamp falls in
// the set its window describes.
package timewindow

import (
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"
	"time"
)

// Fields holds the five raw expressions of a window in cron input order.
type Fields struct {
	Minute    string
	Hour      string
	Day       string
	Month     string
	DayOfWeek string
}

func (fs Fields) get(f Field) string {
	switch f {
	case Minute:
		return fs.Minute
	case Hour:
		return fs.Hour
	case Day:
		return fs.Day
	case Month:
		return fs.Month
	default:
		return fs.DayOfWeek
	}
}

// Pattern is a compiled time window.
type Pattern struct {
	window string
	re     *regexp.Regexp
}

// ParseFields splits a window into its five fields. The window must contain
// exactly four spaces.
func ParseFields(window string) (Fields, error) {
	if strings.Count(window, " ") != 4 {
		return Fields{}, &FormatError{Window: window}
	}
	p := strings.Split(window, " ")
	return Fields{Minute: p[0], Hour: p[1], Day: p[2], Month: p[3], DayOfWeek: p[4]}, nil
}

// Compile parses and compiles a five-field window string.
func Compile(window string) (*Pattern, error) {
	fs, err := ParseFields(window)
	if err != nil {
		return nil, err
	}
	return compile(window, fs)
}

// CompileFields compiles already split fields.
func CompileFields(fs Fields) (*Pattern, error) {
	window := strings.Join([]string{fs.Minute, fs.Hour, fs.Day, fs.Month, fs.DayOfWeek}, " ")
	return compile(window, fs)
}

func compile(window string, fs Fields) (*Pattern, error) {
	dow, err := normalizeDayNames(fs.DayOfWeek)
	if err != nil {
		if e, ok := err.(*UnknownDayNameError); ok {
			e.Window = window
		}
		return nil, err
	}
	fs.DayOfWeek = dow

	parts := make([]string, 0, len(canonicalOrder))
	for _, f := range canonicalOrder {
		var frag string
		if f == DayOfWeek {
			frag = compileDayOfWeek(fs.DayOfWeek)
		} else {
			frag = CompileField(fs.get(f), f)
		}
		parts = append(parts, fieldSpecs[f].tag+"="+frag)
	}

	re, err := regexp.Compile("^" + strings.Join(parts, " ") + "$")
	if err != nil {
		// The syntax error quotes the whole expression; report only its code.
		var se *syntax.Error
		if errors.As(err, &se) {
			return nil, fmt.Errorf("failed to compile window %q: %w (%s)", window, ErrFormat, se.Code)
		}
		return nil, fmt.Errorf("failed to compile window %q: %w", window, ErrFormat)
	}
	return &Pattern{window: window, re: re}, nil
}

// compileDayOfWeek is CompileField with 7 folded onto 0 (both mean Sunday).
func compileDayOfWeek(expr string) string {
	toks := explodeField(expr, DayOfWeek)
	for i, t := range toks {
		if t == "7" {
			toks[i] = "0"
		}
	}
	return "(?:" + strings.Join(toks, "|") + ")"
}

var dayNames = map[string]string{
	"sunday":    "0",
	"monday":    "1",
	"tuesday":   "2",
	"wednesday": "3",
	"thursday":  "4",
	"friday":    "5",
	"saturday":  "6",
	"sun":       "0",
	"mon":       "1",
	"tue":       "2",
	"wed":       "3",
	"thu":       "4",
	"fri":       "5",
	"sat":       "6",
}

var wordRe = regexp.MustCompile(`[A-Za-z]+`)

// normalizeDayNames replaces every day name in expr with its number, so
// "mon-fri" becomes "1-5" and "sat,sun" becomes "6,0".
func normalizeDayNames(expr string) (string, error) {
	var bad string
	out := wordRe.ReplaceAllStringFunc(expr, func(w string) string {
		n, ok := dayNames[strings.ToLower(w)]
		if !ok && bad == "" {
			bad = w
		}
		return n
	})
	if bad != "" {
		return "", &UnknownDayNameError{Name: bad}
	}
	return out, nil
}

// String returns the source window.
func (p *Pattern) String() string { return p.window }

// MatchString reports whether a FormatNow-style string falls in the window.
func (p *Pattern) MatchString(now string) bool {
	return p.re.MatchString(now)
}

// Match reports whether t falls in the window, using t's location.
func (p *Pattern) Match(t time.Time) bool {
	return p.re.MatchString(FormatNow(t))
}

// FormatNow renders t as "m=<month> d=<day> h=<hour> n=<minute> w=<weekday>".
func FormatNow(t time.Time) string {
	vals := [...]int{
		Minute:    t.Minute(),
		Hour:      t.Hour(),
		Day:       t.Day(),
		Month:     int(t.Month()),
		DayOfWeek: int(t.Weekday()),
	}
	var b strings.Builder
	for i, f := range canonicalOrder {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(fieldSpecs[f].tag)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(vals[f]))
	}
	return b.String()
}

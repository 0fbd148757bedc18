package timewindow

import (
	"regexp"
	"strconv"
	"strings"
)

// Field identifies one of the five cron-style time fields.
type Field int

const (
	Minute Field = iota
	Hour
	Day
	Month
	DayOfWeek
)

type fieldSpec struct {
	name   string
	tag    string // short name used in the formatted "now" string
	lo, hi int
}

var fieldSpecs = [...]fieldSpec{
	Minute:    {name: "minute", tag: "n", lo: 0, hi: 59},
	Hour:      {name: "hour", tag: "h", lo: 0, hi: 23},
	Day:       {name: "day", tag: "d", lo: 1, hi: 31},
	Month:     {name: "month", tag: "m", lo: 1, hi: 12},
	DayOfWeek: {name: "dayOfWeek", tag: "w", lo: 0, hi: 6},
}

// canonicalOrder is the token order shared by compiled patterns and FormatNow.
// It differs from the cron input order (minute hour day month dayOfWeek).
var canonicalOrder = [...]Field{Month, Day, Hour, Minute, DayOfWeek}

func (f Field) String() string {
	if f < Minute || f > DayOfWeek {
		return "Field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldSpecs[f].name
}

// Range returns the inclusive numeric range of the field.
func (f Field) Range() (lo, hi int) {
	s := fieldSpecs[f]
	return s.lo, s.hi
}

var rangeRe = regexp.MustCompile(`^(\d+)-(\d+)(?:/(\d+))?$`)

// CompileField turns one field expression into a non-capturing alternation
// fragment, e.g. "1-5/2" -> "(?:1|3|5)".
func CompileField(expr string, f Field) string {
	return "(?:" + strings.Join(explodeField(expr, f), "|") + ")"
}

// explodeField expands "*", lists and ranges into alternation tokens.
// Tokens that are not ranges pass through quoted.
func explodeField(expr string, f Field) []string {
	lo, hi := f.Range()
	expr = strings.ReplaceAll(expr, "*", strconv.Itoa(lo)+"-"+strconv.Itoa(hi))
	if f == DayOfWeek {
		hi = 7 // Sunday again, folded onto 0 later
	}

	var out []string
	for _, tok := range strings.Split(expr, ",") {
		out = append(out, explodeRange(tok, lo, hi)...)
	}
	return out
}

// explodeRange enumerates "start-end[/step]" inclusive of start, keeping
// only the values inside lo..hi. Values outside the field never match, so
// the bound changes nothing but the size of the pattern.
func explodeRange(tok string, lo, hi int) []string {
	m := rangeRe.FindStringSubmatch(tok)
	if m == nil {
		return []string{regexp.QuoteMeta(tok)}
	}
	start, err1 := strconv.Atoi(m[1])
	end, err2 := strconv.Atoi(m[2])
	step := 1
	var err3 error
	if m[3] != "" {
		step, err3 = strconv.Atoi(m[3])
	}
	if err1 != nil || err2 != nil || err3 != nil || step <= 0 {
		return []string{regexp.QuoteMeta(tok)}
	}

	// First member of the stride at or above lo.
	first := start
	if first < lo {
		first += (lo - start + step - 1) / step * step
	}
	last := min(end, hi)

	var out []string
	for i := first; i <= last; i += step {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

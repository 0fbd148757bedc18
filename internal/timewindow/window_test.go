package timewindow

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-05-15 is a Wednesday.
func at(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2024, month, day, hour, minute, 0, 0, time.Local)
}

func members(t *testing.T, expr string, f Field) []int {
	t.Helper()
	re := regexp.MustCompile("^" + CompileField(expr, f) + "$")
	var got []int
	for i := 0; i <= 60; i++ {
		if re.MatchString(strconv.Itoa(i)) {
			got = append(got, i)
		}
	}
	return got
}

func TestCompileField(t *testing.T) {
	seq := func(lo, hi int) []int {
		var out []int
		for i := lo; i <= hi; i++ {
			out = append(out, i)
		}
		return out
	}

	tests := []struct {
		name  string
		expr  string
		field Field
		want  []int
	}{
		{"single", "5", Minute, []int{5}},
		{"list", "1,14", Day, []int{1, 14}},
		{"range", "1-20", Minute, seq(1, 20)},
		{"stepped range", "1-20/2", Minute, []int{1, 3, 5, 7, 9, 11, 13, 15, 17, 19}},
		{"stepped range stride 3", "1-20/3", Hour, []int{1, 4, 7, 10, 13, 16, 19}},
		{"range and literal", "1-3,12", Month, []int{1, 2, 3, 12}},
		{"star minute", "*", Minute, seq(0, 59)},
		{"star hour", "*", Hour, seq(0, 23)},
		{"star day", "*", Day, seq(1, 31)},
		{"star month", "*", Month, seq(1, 12)},
		{"star step", "*/15", Minute, []int{0, 15, 30, 45}},
		{"malformed range passes through", "5-", Minute, nil},
		{"zero step passes through", "1-5/0", Minute, nil},
		{"reversed range is empty", "9-3", Hour, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, members(t, tc.expr, tc.field))
		})
	}
}

func TestCompileFieldBoundsRanges(t *testing.T) {
	assert.Equal(t, CompileField("0-59", Minute), CompileField("0-1000000000", Minute))
	assert.Equal(t, "(?:3|6|9)", CompileField("0-10/3", Day), "stride keeps its phase below the field minimum")
	assert.Equal(t, "(?:)", CompileField("70-90", Minute))
	assert.Equal(t, []int{0, 7, 14, 21, 28, 35, 42, 49, 56}, members(t, "0-100/7", Minute))
}

func TestCompileHugeRangeIsCheap(t *testing.T) {
	start := time.Now()
	p, err := Compile("0-1000000000 * * * *")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.True(t, p.Match(at(time.May, 15, 9, 0)))
	assert.True(t, p.Match(at(time.May, 15, 9, 59)))
	assert.Less(t, len(p.re.String()), 1024)
}

func TestCompileFieldShape(t *testing.T) {
	assert.Equal(t, "(?:1|2|3)", CompileField("1-3", Hour))
	assert.Equal(t, "(?:7)", CompileField("7", Hour))
}

func TestFormatNow(t *testing.T) {
	assert.Equal(t, "m=5 d=15 h=9 n=0 w=3", FormatNow(at(time.May, 15, 9, 0)))
	assert.Equal(t, "m=12 d=1 h=23 n=59 w=0", FormatNow(at(time.December, 1, 23, 59)))
}

func TestCompileWeekdayMorning(t *testing.T) {
	p, err := Compile("0 9 * * mon-fri")
	require.NoError(t, err)

	assert.True(t, p.Match(at(time.May, 15, 9, 0)), "Wednesday 09:00")
	assert.False(t, p.Match(at(time.May, 15, 9, 1)), "Wednesday 09:01")
	assert.False(t, p.Match(at(time.May, 18, 9, 0)), "Saturday 09:00")
	assert.False(t, p.Match(at(time.May, 15, 10, 0)), "Wednesday 10:00")
	assert.Equal(t, "0 9 * * mon-fri", p.String())
}

func TestCompileEveryFieldMustMatch(t *testing.T) {
	p, err := Compile("30 12 25 12 *")
	require.NoError(t, err)

	base := at(time.December, 25, 12, 30)
	require.True(t, p.Match(base))

	for name, moved := range map[string]time.Time{
		"minute": at(time.December, 25, 12, 31),
		"hour":   at(time.December, 25, 13, 30),
		"day":    at(time.December, 24, 12, 30),
		"month":  at(time.November, 25, 12, 30),
	} {
		assert.False(t, p.Match(moved), "changed %s should not match", name)
	}
}

func TestCompileDoesNotConfuseTwoDigitValues(t *testing.T) {
	p, err := Compile("* * * 1 *")
	require.NoError(t, err)
	assert.True(t, p.Match(at(time.January, 3, 0, 0)))
	assert.False(t, p.Match(at(time.November, 3, 0, 0)))
	assert.False(t, p.Match(at(time.December, 3, 0, 0)))
}

func TestDayOfWeekNames(t *testing.T) {
	sunday := at(time.May, 19, 8, 0)
	monday := at(time.May, 20, 8, 0)

	tests := []struct {
		dow      string
		sun, mon bool
	}{
		{"0", true, false},
		{"7", true, false},
		{"Sunday", true, false},
		{"SUN", true, false},
		{"monday", false, true},
		{"Mon", false, true},
		{"sat,sun", true, false},
		{"5-7", true, false},
		{"1-7", true, true},
		{"*", true, true},
	}

	for _, tc := range tests {
		t.Run(tc.dow, func(t *testing.T) {
			p, err := Compile("* * * * " + tc.dow)
			require.NoError(t, err)
			assert.Equal(t, tc.sun, p.Match(sunday), "sunday")
			assert.Equal(t, tc.mon, p.Match(monday), "monday")
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		window  string
		wantDay bool
	}{
		{"0 9 * *", false},
		{"0 9 * * * *", false},
		{"0  9 * * *", false},
		{"", false},
		{"0 9 * * someday", true},
		{"0 9 * * mon-frid", true},
	}

	for _, tc := range tests {
		t.Run(tc.window, func(t *testing.T) {
			p, err := Compile(tc.window)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrFormat))

			var dayErr *UnknownDayNameError
			var fmtErr *FormatError
			if tc.wantDay {
				require.True(t, errors.As(err, &dayErr))
				assert.Equal(t, tc.window, dayErr.Window)
			} else {
				require.True(t, errors.As(err, &fmtErr))
			}
		})
	}
}

func TestCompileFields(t *testing.T) {
	p, err := CompileFields(Fields{Minute: "0", Hour: "9", Day: "*", Month: "*", DayOfWeek: "wed"})
	require.NoError(t, err)
	assert.True(t, p.Match(at(time.May, 15, 9, 0)))
	assert.Equal(t, "0 9 * * wed", p.String())
}

func TestCompileIdempotent(t *testing.T) {
	const window = "*/10 8-18 1-15 * mon,wed,fri"
	a, err := Compile(window)
	require.NoError(t, err)
	b, err := Compile(window)
	require.NoError(t, err)

	start := at(time.May, 1, 0, 0)
	for i := 0; i < 60*24*20; i += 7 {
		now := start.Add(time.Duration(i) * time.Minute)
		require.Equal(t, a.Match(now), b.Match(now), FormatNow(now))
	}
}

func TestMatchAgreesWithFieldSets(t *testing.T) {
	p, err := Compile("0-29/3 6-9 * * 1-5")
	require.NoError(t, err)

	start := at(time.May, 13, 0, 0)
	for i := 0; i < 60*24*7; i++ {
		now := start.Add(time.Duration(i) * time.Minute)
		wd := now.Weekday()
		want := now.Minute() <= 29 && now.Minute()%3 == 0 &&
			now.Hour() >= 6 && now.Hour() <= 9 &&
			wd >= time.Monday && wd <= time.Friday
		if p.Match(now) != want {
			t.Fatalf("%s: match=%v want=%v", FormatNow(now), !want, want)
		}
	}
}

func TestFieldString(t *testing.T) {
	names := make([]string, 0, 5)
	for _, f := range []Field{Minute, Hour, Day, Month, DayOfWeek} {
		names = append(names, f.String())
	}
	assert.Equal(t, "minute hour day month dayOfWeek", strings.Join(names, " "))
}

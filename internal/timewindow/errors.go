package timewindow

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every window format error via errors.Is.
var ErrFormat = errors.New("invalid datetime window")

// FormatError reports a window that does not have exactly five fields.
type FormatError struct {
	Window string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid datetime field format: %q (want 5 space-separated fields)", e.Window)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnknownDayNameError reports a day-of-week word that is not an English day name.
type UnknownDayNameError struct {
	Window string
	Name   string
}

func (e *UnknownDayNameError) Error() string {
	return fmt.Sprintf("invalid day of week %q in %q", e.Name, e.Window)
}

func (e *UnknownDayNameError) Is(target error) bool { return target == ErrFormat }

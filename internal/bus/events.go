package bus

import "time"

// InputKind names what the UI layer is reporting.
type InputKind string

const (
	InputTouch  InputKind = "touch"  // a hit region was tapped
	InputToggle InputKind = "toggle" // the user switched speaking on or off
	InputSwitch InputKind = "switch" // the user asked for the next character
)

// InputEvent is sent by the UI layer to the speaker.
type InputEvent struct {
	Kind    InputKind
	Region  string // hit region for InputTouch (e.g. "Head", "Body")
	Enabled bool   // desired state for InputToggle
}

// UtteranceKind says whether the message window should show or hide.
type UtteranceKind string

const (
	Show UtteranceKind = "show"
	Hide UtteranceKind = "hide"
)

// Utterance is sent by the speaker to the UI layer.
type Utterance struct {
	Kind   UtteranceKind
	Text   string    // empty for Hide
	Source string    // "general", "datetime" or "touch"
	At     time.Time // when the speaker decided
}

package availability

import "fmt"

// State is the availability of the remote prediction service as seen from
// one monitor.
type State int

const (
	Loading State = iota
	Waking
	Waiting
	Online
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Waking:
		return "waking"
	case Waiting:
		return "waiting"
	case Online:
		return "online"
	case Error:
		return "error"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Online || s == Error
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for c := Loading; c <= Error; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown availability state %q", text)
}

// Indicator colours.
const (
	ColorGray   = "gray"
	ColorOrange = "orange"
	ColorGreen  = "green"
	ColorRed    = "red"
)

// Indicator is the status badge shown for a state.
type Indicator struct {
	Text     string `json:"text"`
	Color    string `json:"color"`
	Spinning bool   `json:"spinning"`
	Visible  bool   `json:"visible"`
}

// Indicator derives the badge for s. It depends on nothing but s.
func (s State) Indicator() Indicator {
	switch s {
	case Waiting:
		return Indicator{Text: "Waiting for model to load...", Color: ColorOrange, Spinning: true, Visible: true}
	case Online:
		return Indicator{Text: "Online", Color: ColorGreen}
	case Error:
		return Indicator{Text: "Connection Error", Color: ColorRed, Visible: true}
	case Waking:
		return Indicator{Text: "Waking up server...", Color: ColorGray, Spinning: true, Visible: true}
	}
	// Loading shows the waking text; the spinner only starts once the wake call is out.
	return Indicator{Text: "Waking up server...", Color: ColorGray, Visible: true}
}

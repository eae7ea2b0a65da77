// Package effect defines the timed effect table, the falling power-up catalog
// and the permanent ball size state machine.
package effect

import "time"

// Kind identifies a timed effect.
type Kind int

const (
	Shield Kind = iota
	WidePlatform
	Magnet
	TimeFreeze
	NarrowPlatform
	IceMode
	BlinkingEye
	Earthquake

	KindCount // must stay last
)

var kindNames = [KindCount]string{
	Shield:         "shield",
	WidePlatform:   "widePlatform",
	Magnet:         "magnet",
	TimeFreeze:     "timeFreeze",
	NarrowPlatform: "narrowPlatform",
	IceMode:        "iceMode",
	BlinkingEye:    "blinkingEye",
	Earthquake:     "earthquake",
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind resolves a name produced by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k := Kind(0); k < KindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

// ChangesPlatformWidth reports whether toggling the effect requires a platform width recompute.
func (k Kind) ChangesPlatformWidth() bool {
	return k == WidePlatform || k == NarrowPlatform
}

// State is the active flag and timing of one effect.
type State struct {
	Active    bool      `json:"active" msgpack:"active"`
	StartTime time.Time `json:"startTime" msgpack:"startTime"`
	EndTime   time.Time `json:"endTime" msgpack:"endTime"`
}

// Table holds every timed effect. Effects are independent and may overlap.
type Table [KindCount]State

// Activate turns the effect on until now+d. Re-activating an active effect restarts its timer.
func (t *Table) Activate(k Kind, now time.Time, d time.Duration) {
	t[k] = State{Active: true, StartTime: now, EndTime: now.Add(d)}
}

// Active reports whether the effect is on.
func (t *Table) Active(k Kind) bool {
	return t[k].Active
}

// Expire switches off every effect whose end time has passed and returns the kinds that expired.
func (t *Table) Expire(now time.Time) []Kind {
	var expired []Kind
	for k := Kind(0); k < KindCount; k++ {
		if t[k].Active && now.After(t[k].EndTime) {
			t[k].Active = false
			expired = append(expired, k)
		}
	}
	return expired
}

// Remaining returns max(0, endTime-now) for an active effect and zero otherwise.
func (t *Table) Remaining(k Kind, now time.Time) time.Duration {
	if !t[k].Active {
		return 0
	}
	return max(0, t[k].EndTime.Sub(now))
}

// Elapsed returns the time since the effect was last activated.
func (t *Table) Elapsed(k Kind, now time.Time) time.Duration {
	return now.Sub(t[k].StartTime)
}

// Reset clears every effect.
func (t *Table) Reset() {
	*t = Table{}
}

// Visible implements the blinking eye rule: visible on even whole seconds since
// activation, invisible on odd ones. Always visible when the effect is off.
func (t *Table) Visible(now time.Time) bool {
	if !t[BlinkingEye].Active {
		return true
	}
	seconds := int64(t.Elapsed(BlinkingEye, now) / time.Second)
	return seconds%2 == 0
}

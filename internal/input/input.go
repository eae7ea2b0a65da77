// Package input turns raw terminal bytes into per-frame player intents.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, never key releases.
const keyHoldDuration = 80 * time.Millisecond

// Intent is the per-frame input consumed by the simulation. The simulation has
// no knowledge of physical keys.
type Intent struct {
	TiltLeft  bool `json:"tiltLeft" msgpack:"tiltLeft"`
	TiltRight bool `json:"tiltRight" msgpack:"tiltRight"`
	MoveLeft  bool `json:"moveLeft" msgpack:"moveLeft"`
	MoveRight bool `json:"moveRight" msgpack:"moveRight"`
	Pause     bool `json:"pause" msgpack:"pause"`     // Edge-triggered toggle
	Restart   bool `json:"restart" msgpack:"restart"` // Edge-triggered
	Quit      bool `json:"quit" msgpack:"quit"`
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	tiltLeft  time.Time
	tiltRight time.Time
	moveLeft  time.Time
	moveRight time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	closed bool
	state  keyState
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream without blocking and
// returns the intent for this frame.
func ReadInput(s *Stream) Intent {
	return s.read(time.Now())
}

func (s *Stream) read(now time.Time) Intent {
	var buf []byte
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return s.parse(buf, now)
}

// parse applies the collected bytes to the key state. Hold keys stay pressed for
// keyHoldDuration; toggles fire once per byte.
func (s *Stream) parse(buf []byte, now time.Time) Intent {
	var intent Intent
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// Arrow keys: ESC [ C / ESC [ D move the platform
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'C':
				s.state.moveRight = now
				i += 2
				continue
			case 'D':
				s.state.moveLeft = now
				i += 2
				continue
			}
		}

		switch b {
		case 'a', 'A':
			s.state.tiltLeft = now
		case 'z', 'Z':
			s.state.tiltRight = now
		case 'n', 'N':
			s.state.moveLeft = now
		case 'm', 'M':
			s.state.moveRight = now
		case 'p', 'P':
			intent.Pause = true
		case '\r', '\n':
			intent.Restart = true
		case 'q', 'Q', 0x03: // Ctrl+C
			intent.Quit = true
		}
	}

	intent.TiltLeft = now.Sub(s.state.tiltLeft) < keyHoldDuration
	intent.TiltRight = now.Sub(s.state.tiltRight) < keyHoldDuration
	intent.MoveLeft = now.Sub(s.state.moveLeft) < keyHoldDuration
	intent.MoveRight = now.Sub(s.state.moveRight) < keyHoldDuration
	return intent
}

// Reset forgets held keys, e.g. after a restart.
func (s *Stream) Reset() {
	s.state = keyState{}
}

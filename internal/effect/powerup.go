package effect

import (
	"fmt"
	"strings"
)

// PowerUp identifies the type of a falling token. Power-ups and power-downs share one pool.
type PowerUp int

const (
	PowerUpShield PowerUp = iota
	PowerUpWidePlatform
	PowerUpMagnet
	PowerUpShrinkBall
	PowerUpBigBallz
	PowerUpTimeFreeze
	PowerUpExtraBall
	PowerUpRandom
	PowerDownNarrowPlatform
	PowerDownIceMode
	PowerDownBlinkingEye
	PowerDownEarthquake

	PowerUpCount // must stay last
)

// Info is display metadata for a token type.
type Info struct {
	Key         string
	Name        string
	Icon        string
	Color       string
	Description string
	PowerDown   bool
}

var catalog = [PowerUpCount]Info{
	PowerUpShield:           {"shield", "Shield", "🛡️", "#4a90d9", "Immunity from black holes", false},
	PowerUpWidePlatform:     {"widePlatform", "Wide Platform", "📏", "#00d9ff", "Platform 30% wider", false},
	PowerUpMagnet:           {"magnet", "Magnet", "🧲", "#ff6b35", "Ball grips platform", false},
	PowerUpShrinkBall:       {"shrinkBall", "Shrink Ball", "🔮", "#9932ff", "Ball 50% smaller (permanent)", false},
	PowerUpBigBallz:         {"bigBallz", "Big Ballz", "🏀", "#ff8c00", "Ball 40% bigger (permanent)", false},
	PowerUpTimeFreeze:       {"timeFreeze", "Time Freeze", "⏸️", "#00ffff", "Black holes freeze", false},
	PowerUpExtraBall:        {"extraBall", "Extra Ball", "⚾", "#ffdd00", "Adds a second ball", false},
	PowerUpRandom:           {"random", "Random", "🎲", "#ff00ff", "Random power-up or down", false},
	PowerDownNarrowPlatform: {"narrowPlatform", "Narrow Platform", "📏", "#ff3333", "Platform 30% narrower", true},
	PowerDownIceMode:        {"iceMode", "Ice Mode", "🧊", "#88ddff", "Platform super slippery", true},
	PowerDownBlinkingEye:    {"blinkingEye", "Blinking Eye", "👁️", "#ff66ff", "Ball blinks invisible", true},
	PowerDownEarthquake:     {"earthquake", "Earthquake", "📳", "#8b4513", "Platform shakes violently", true},
}

// Info returns the catalog entry of the token type.
func (p PowerUp) Info() Info {
	return catalog[p]
}

func (p PowerUp) String() string {
	if p < 0 || p >= PowerUpCount {
		return "unknown"
	}
	return catalog[p].Key
}

// Timed returns the effect a token activates, if it is a timed one.
func (p PowerUp) Timed() (Kind, bool) {
	switch p {
	case PowerUpShield:
		return Shield, true
	case PowerUpWidePlatform:
		return WidePlatform, true
	case PowerUpMagnet:
		return Magnet, true
	case PowerUpTimeFreeze:
		return TimeFreeze, true
	case PowerDownNarrowPlatform:
		return NarrowPlatform, true
	case PowerDownIceMode:
		return IceMode, true
	case PowerDownBlinkingEye:
		return BlinkingEye, true
	case PowerDownEarthquake:
		return Earthquake, true
	default:
		return 0, false
	}
}

// ParsePowerUp resolves a catalog key such as "iceMode".
func ParsePowerUp(key string) (PowerUp, error) {
	for p := PowerUp(0); p < PowerUpCount; p++ {
		if strings.EqualFold(catalog[p].Key, key) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown power-up %q", key)
}

// Settings holds the per-type enable flags.
type Settings struct {
	disabled [PowerUpCount]bool
}

// DefaultSettings enables every token type.
func DefaultSettings() Settings {
	return Settings{}
}

// ParseDisabled returns default settings with the comma separated keys disabled.
func ParseDisabled(list string) (Settings, error) {
	s := DefaultSettings()
	for _, key := range strings.Split(list, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		p, err := ParsePowerUp(key)
		if err != nil {
			return s, err
		}
		s.Set(p, false)
	}
	return s, nil
}

// Set enables or disables a token type.
func (s *Settings) Set(p PowerUp, enabled bool) {
	s.disabled[p] = !enabled
}

// Enabled reports whether a token type may spawn.
func (s Settings) Enabled(p PowerUp) bool {
	return !s.disabled[p]
}

// Pool lists the enabled types in catalog order. Extra ball is left out while
// one already exists, and random is left out when drawing for a random token.
func (s Settings) Pool(hasExtraBall, forRandom bool) []PowerUp {
	pool := make([]PowerUp, 0, PowerUpCount)
	for p := PowerUp(0); p < PowerUpCount; p++ {
		if !s.Enabled(p) {
			continue
		}
		if p == PowerUpExtraBall && hasExtraBall {
			continue
		}
		if p == PowerUpRandom && forRandom {
			continue
		}
		pool = append(pool, p)
	}
	return pool
}

package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/balanceball/internal/draw"
	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/sim"
)

// Renderer draws snapshots and the text overlays for one terminal.
type Renderer struct {
	lg *lipgloss.Renderer

	title     lipgloss.Style
	score     lipgloss.Style
	label     lipgloss.Style
	powerUp   lipgloss.Style
	powerDown lipgloss.Style
	box       lipgloss.Style
	alert     lipgloss.Style
	dim       lipgloss.Style
}

// New creates a renderer for the terminal behind w. SSH sessions are not a
// TTY of this process, so the color profile is fixed to truecolor.
func New(w io.Writer) *Renderer {
	lg := lipgloss.NewRenderer(w)
	lg.SetColorProfile(termenv.TrueColor)
	return newRenderer(lg)
}

func newRenderer(lg *lipgloss.Renderer) *Renderer {
	return &Renderer{
		lg:        lg,
		title:     lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#00d9ff")),
		score:     lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffd700")),
		label:     lg.NewStyle().Foreground(lipgloss.Color("#a0a0b0")),
		powerUp:   lg.NewStyle().Foreground(lipgloss.Color("#50fa7b")),
		powerDown: lg.NewStyle().Foreground(lipgloss.Color("#ff5555")),
		box: lg.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#e94560")).
			Padding(1, 4).
			Align(lipgloss.Center),
		alert: lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#e94560")),
		dim:   lg.NewStyle().Foreground(lipgloss.Color("#6c6c80")),
	}
}

// Frame writes a complete frame into cw. A nil snapshot draws the start screen.
func (r *Renderer) Frame(cw *draw.ChunkWriter, c *draw.Canvas, s *sim.Snapshot, notice string) error {
	width, height := c.TerminalWidth(), c.TerminalHeight()

	if s == nil {
		r.writeCentered(cw, width, height, r.StartScreen())
	} else {
		Scene(c, *s)
		if err := c.Render(cw); err != nil {
			return err
		}
		left, right := r.HUD(*s)
		cw.WriteAt(2, 1, left)
		if right != "" {
			cw.WriteAt(max(1, width-lipgloss.Width(right)), 1, right)
		}
		if overlay := r.Overlay(*s); overlay != "" {
			r.writeCentered(cw, width, height, overlay)
		}
	}

	if notice != "" {
		line := r.alert.Render(notice)
		cw.WriteAt(max(1, (width-lipgloss.Width(line))/2+1), height, line)
	}
	return nil
}

// HUD returns the top-left score line and the top-right effect list.
func (r *Renderer) HUD(s sim.Snapshot) (left, right string) {
	left = r.label.Render("Score ") + r.score.Render(fmt.Sprint(s.Score)) +
		r.label.Render("  Best ") + r.score.Render(fmt.Sprint(s.BestScore))

	parts := make([]string, 0, len(s.Effects)+2)
	if s.Size != effect.SizeNormal.String() {
		parts = append(parts, r.powerUp.Render("ball:"+s.Size))
	}
	if s.Extra != nil {
		parts = append(parts, r.powerUp.Render("extra ball"))
	}
	for _, e := range s.Effects {
		text := fmt.Sprintf("%s %ds", effectName(e.Kind), int(math.Ceil(e.Remaining)))
		if isPowerDown(e.Kind) {
			parts = append(parts, r.powerDown.Render(text))
		} else {
			parts = append(parts, r.powerUp.Render(text))
		}
	}
	return left, strings.Join(parts, r.dim.Render(" | "))
}

// Overlay returns the centered box for paused and game over states, or "".
func (r *Renderer) Overlay(s sim.Snapshot) string {
	switch {
	case s.Status == sim.StatusGameOver.String():
		body := lipgloss.JoinVertical(lipgloss.Center,
			r.alert.Render("GAME OVER"),
			"",
			s.Reason,
			"",
			r.label.Render("Final score ")+r.score.Render(fmt.Sprint(s.FinalScore)),
			r.label.Render("Best ")+r.score.Render(fmt.Sprint(s.BestScore)),
			"",
			r.dim.Render("Press Enter to play again, Q to quit"),
		)
		return r.box.Render(body)
	case s.Paused:
		body := lipgloss.JoinVertical(lipgloss.Center,
			r.title.Render("PAUSED"),
			"",
			r.dim.Render("Press P to resume"),
		)
		return r.box.Render(body)
	default:
		return ""
	}
}

// StartScreen returns the title box with the key bindings.
func (r *Renderer) StartScreen() string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		r.title.Render("B A L A N C E   B A L L"),
		"",
		"Keep the ball on the platform and away from black holes.",
		"",
		r.label.Render("A / Z   tilt left / right"),
		r.label.Render("N / M   move left / right"),
		r.label.Render("P       pause"),
		r.label.Render("Q       quit"),
		"",
		r.score.Render("Press Enter to start"),
	)
	return r.box.Render(body)
}

func (r *Renderer) writeCentered(cw *draw.ChunkWriter, width, height int, block string) {
	lines := strings.Split(block, "\n")
	col := max(1, (width-lipgloss.Width(block))/2+1)
	row := max(1, (height-len(lines))/2+1)
	cw.WriteLines(col, row, lines)
}

// effectName maps a timed effect to the display name of the token granting it.
func effectName(kind string) string {
	if p, ok := tokenFor(kind); ok {
		return p.Info().Name
	}
	return kind
}

func isPowerDown(kind string) bool {
	p, ok := tokenFor(kind)
	return ok && p.Info().PowerDown
}

func tokenFor(kind string) (effect.PowerUp, bool) {
	k, ok := effect.ParseKind(kind)
	if !ok {
		return 0, false
	}
	for p := effect.PowerUp(0); p < effect.PowerUpCount; p++ {
		if timed, ok := p.Timed(); ok && timed == k {
			return p, true
		}
	}
	return 0, false
}

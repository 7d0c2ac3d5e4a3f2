// internal/tui/sparkline.go
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a price series as a row of block characters, with a
// trend arrow for the latest move.
type Sparkline struct {
	data  []float64
	width int
	style lipgloss.Style
}

// NewSparkline creates a sparkline of the given character width.
func NewSparkline(width int, style lipgloss.Style) *Sparkline {
	return &Sparkline{width: width, style: style}
}

// SetData replaces the series. When there are more points than columns the
// series is downsampled so the whole window stays visible.
func (s *Sparkline) SetData(data []float64) {
	if len(data) <= s.width {
		s.data = append([]float64(nil), data...)
		return
	}
	sampled := make([]float64, s.width)
	for i := range sampled {
		sampled[i] = data[i*len(data)/s.width]
	}
	// Always keep the most recent point.
	sampled[s.width-1] = data[len(data)-1]
	s.data = sampled
}

// View renders the sparkline with a trend arrow.
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return s.style.Render(strings.Repeat("▁", s.width))
	}

	min, max := s.data[0], s.data[0]
	for _, v := range s.data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	if min == max {
		b.WriteString(strings.Repeat("▄", len(s.data)))
	} else {
		for _, v := range s.data {
			idx := int((v - min) / (max - min) * float64(len(sparkChars)-1))
			if idx < 0 {
				idx = 0
			}
			if idx >= len(sparkChars) {
				idx = len(sparkChars) - 1
			}
			b.WriteRune(sparkChars[idx])
		}
	}
	// Builder.Len counts bytes and the block characters are multi-byte, so
	// pad on the rendered column count instead.
	for i := len(s.data); i < s.width; i++ {
		b.WriteRune(' ')
	}

	line := s.style.Render(b.String())
	if len(s.data) >= 2 {
		line += " " + s.trendArrow()
	}
	return line
}

func (s *Sparkline) trendArrow() string {
	last, prev := s.data[len(s.data)-1], s.data[len(s.data)-2]
	switch {
	case last > prev:
		return lipgloss.NewStyle().Foreground(green).Render("↗")
	case last < prev:
		return lipgloss.NewStyle().Foreground(red).Render("↘")
	default:
		return lipgloss.NewStyle().Foreground(muted).Render("→")
	}
}

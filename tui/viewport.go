// viewport.go provides the scrollable transcript area of the chat view.
//
// Lines may carry ANSI styling (glamour output), so truncation goes
// through lipgloss rather than byte slicing. While the viewport is
// scrolled to the bottom it stays there as content grows.
package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Viewport is a vertically scrollable text area.
type Viewport struct {
	width   int
	height  int
	content []string
	scrollY int  // index of the first visible line
	follow  bool // keep the last line visible
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
		follow: true,
	}
}

// SetContent replaces the viewport content.
func (v *Viewport) SetContent(content string) {
	v.SetContentLines(strings.Split(content, "\n"))
}

// SetContentLines replaces the viewport content with pre-split lines.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = lines
	if v.follow {
		v.scrollY = v.maxScrollY()
	}
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	if v.follow {
		v.scrollY = v.maxScrollY()
	}
	v.clampScroll()
}

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
	v.follow = v.AtBottom()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
	v.follow = v.AtBottom()
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height)
}

// Home scrolls to the top.
func (v *Viewport) Home() {
	v.scrollY = 0
	v.follow = v.AtBottom()
}

// End scrolls to the bottom and resumes following new content.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
	v.follow = true
}

// AtBottom reports whether the last line is visible.
func (v *Viewport) AtBottom() bool {
	return v.scrollY >= v.maxScrollY()
}

// Render returns the visible portion of the content, padded to the
// viewport height, plus a scroll indicator when not everything fits.
func (v *Viewport) Render() string {
	if len(v.content) == 0 {
		return ""
	}

	end := v.scrollY + v.height
	if end > len(v.content) {
		end = len(v.content)
	}

	clip := lipgloss.NewStyle().MaxWidth(v.width)
	lines := make([]string, 0, v.height)
	for _, line := range v.content[v.scrollY:end] {
		lines = append(lines, clip.Render(line))
	}
	for len(lines) < v.height {
		lines = append(lines, "")
	}

	body := strings.Join(lines, "\n")
	if indicator := v.scrollIndicator(); indicator != "" {
		return lipgloss.JoinVertical(lipgloss.Left, body, indicator)
	}
	return body
}

func (v *Viewport) clampScroll() {
	if maxY := v.maxScrollY(); v.scrollY > maxY {
		v.scrollY = maxY
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) maxScrollY() int {
	max := len(v.content) - v.height
	if max < 0 {
		return 0
	}
	return max
}

func (v *Viewport) scrollIndicator() string {
	total := len(v.content)
	if total <= v.height {
		return ""
	}

	pct := (v.scrollY + v.height) * 100 / total
	if pct > 100 {
		pct = 100
	}
	label := " " + strconv.Itoa(pct) + "% (" + strconv.Itoa(v.scrollY+1) + "/" + strconv.Itoa(total) + ")"
	rule := v.width - lipgloss.Width(label)
	if rule < 0 {
		rule = 0
	}
	return StyleDimmed.Render(strings.Repeat("─", rule) + label)
}

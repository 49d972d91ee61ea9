// Package display emulates a monochrome e-paper panel on a text terminal.
package display

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
)

const (
	// GlyphWidth is the width of one character at scale 1, in pixels.
	GlyphWidth = 8
	// LineHeight is the number of pixels covered by one row of text.
	LineHeight = 16
)

type item struct {
	text string
	x, y int
}

// Panel draws text into a character grid and prints the grid to its writer on every Update.
type Panel struct {
	width, height int
	out           io.Writer
	items         []item
	refreshes     int
	lock          sync.Mutex
}

func New(width, height int, out io.Writer) *Panel {
	return &Panel{width: width, height: height, out: out}
}

func (p *Panel) Bounds() (int, int) {
	return p.width, p.height
}

func (p *Panel) Clear() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.items = p.items[:0]
	return nil
}

// DrawText places text with its baseline at y. Scale and thickness only affect the text's width.
func (p *Panel) DrawText(text string, x, y int, _ float64, _ int) error {
	if x < 0 || y < 0 || x >= p.width || y >= p.height+LineHeight {
		return fmt.Errorf("text %q outside panel at (%d,%d)", text, x, y)
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.items = append(p.items, item{text: text, x: x, y: y})
	return nil
}

func (p *Panel) MeasureText(text string, scale float64) int {
	return int(math.Round(float64(len([]rune(text))*GlyphWidth) * scale))
}

// Update prints the framebuffer.
func (p *Panel) Update() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.refreshes++
	_, err := io.WriteString(p.out, p.render())
	return err
}

// Refreshes returns the number of times the panel was updated.
func (p *Panel) Refreshes() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.refreshes
}

func (p *Panel) render() string {
	cols := p.width / GlyphWidth
	rows := p.height / LineHeight
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	for _, it := range p.items {
		row := min(it.y/LineHeight, rows-1)
		col := it.x / GlyphWidth
		for i, r := range []rune(it.text) {
			if col+i >= cols {
				break
			}
			grid[row][col+i] = r
		}
	}

	var buf bytes.Buffer
	border := "+" + strings.Repeat("-", cols) + "+\n"
	buf.WriteString(border)
	for _, line := range grid {
		buf.WriteString("|" + string(line) + "|\n")
	}
	buf.WriteString(border)
	return buf.String()
}

package testutil

import (
	"bytes"
	"log/slog"
	"sync"
)

// Call records one call to a FakeDisplay.
type Call struct {
	Op        string
	Text      string
	X, Y      int
	Scale     float64
	Thickness int
}

// FakeDisplay is an in-memory panel that records every driver call.
type FakeDisplay struct {
	Width, Height int
	// Err, if set, is returned by Update.
	Err   error
	calls []Call
	lock  sync.Mutex
}

func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{Width: 296, Height: 128}
}

func (f *FakeDisplay) Bounds() (int, int) {
	return f.Width, f.Height
}

func (f *FakeDisplay) Clear() error {
	f.record(Call{Op: "clear"})
	return nil
}

func (f *FakeDisplay) DrawText(text string, x, y int, scale float64, thickness int) error {
	f.record(Call{Op: "text", Text: text, X: x, Y: y, Scale: scale, Thickness: thickness})
	return nil
}

// MeasureText assumes every glyph is 10 pixels wide at scale 1.
func (f *FakeDisplay) MeasureText(text string, scale float64) int {
	return int(float64(10*len([]rune(text))) * scale)
}

func (f *FakeDisplay) Update() error {
	f.record(Call{Op: "update"})
	return f.Err
}

func (f *FakeDisplay) record(c Call) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, c)
}

// Calls returns all recorded calls.
func (f *FakeDisplay) Calls() []Call {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]Call(nil), f.calls...)
}

// Updates returns the number of panel refreshes.
func (f *FakeDisplay) Updates() int {
	var count int
	for _, c := range f.Calls() {
		if c.Op == "update" {
			count++
		}
	}
	return count
}

// Screen returns the text drawn since the last clear.
func (f *FakeDisplay) Screen() []string {
	var lines []string
	for _, c := range f.Calls() {
		switch c.Op {
		case "clear":
			lines = nil
		case "text":
			lines = append(lines, c.Text)
		}
	}
	return lines
}

// Reset forgets all recorded calls.
func (f *FakeDisplay) Reset() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = nil
}

func NewBufferLogger(buffer *bytes.Buffer) *slog.Logger {
	opts := slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}}
	return slog.New(slog.NewTextHandler(buffer, &opts))
}

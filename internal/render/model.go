// Package render keeps track of what the panel should show and only redraws the panel when that changes.
package render

import (
	"fmt"
)

// Display is the panel driver. Clear, DrawText and Update operate on the driver's framebuffer: only Update refreshes the panel.
type Display interface {
	Bounds() (width, height int)
	Clear() error
	DrawText(text string, x, y int, scale float64, thickness int) error
	MeasureText(text string, scale float64) int
	Update() error
}

// Result reports what Commit did.
type Result int

const (
	Skipped Result = iota
	Updated
)

func (r Result) String() string {
	if r == Updated {
		return "updated"
	}
	return "skipped"
}

func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Model holds the frame being built and a snapshot of the last frame sent to the panel.
type Model struct {
	display   Display
	pending   Frame
	committed Frame
	drawn     bool
}

func New(display Display) *Model {
	return &Model{display: display}
}

// Clear resets the pending frame. The committed snapshot is not affected.
func (m *Model) Clear() {
	m.pending = Frame{}
}

func (m *Model) SetLocation(location string) {
	m.normal()
	m.pending.Location = location
}

func (m *Model) SetHumidity(humidity int) {
	m.normal()
	m.pending.Humidity = FormatHumidity(humidity)
}

func (m *Model) SetTemperature(temperature float64) {
	m.normal()
	m.pending.Temperature = FormatTemperature(temperature)
}

// SetTime shows the HH:MM part of timestamp. Timestamps without a time of day clear the time line.
func (m *Model) SetTime(timestamp string) {
	m.normal()
	m.pending.Time = FormatTime(timestamp)
}

// AddMessage appends a line to the diagnostic screen, discarding any normal fields.
func (m *Model) AddMessage(line string) {
	if m.pending.Messages == nil {
		m.pending = Frame{}
	}
	m.pending.Messages = append(m.pending.Messages, line)
}

// normal switches the pending frame to the normal screen, discarding any diagnostic lines.
func (m *Model) normal() {
	m.pending.Messages = nil
}

// Pending returns a copy of the frame being built.
func (m *Model) Pending() Frame {
	return m.pending.clone()
}

// Committed returns a copy of the last frame sent to the panel.
func (m *Model) Committed() Frame {
	return m.committed.clone()
}

// Commit redraws the panel if the pending frame differs from the last committed one.
// If the driver fails, the snapshot is left unchanged, so the next Commit tries again.
func (m *Model) Commit() (Result, error) {
	if m.drawn && m.pending.Equal(m.committed) {
		return Skipped, nil
	}
	if err := m.draw(m.pending); err != nil {
		return Skipped, fmt.Errorf("display: %w", err)
	}
	m.committed = m.pending.clone()
	m.drawn = true
	return Updated, nil
}

package render

const (
	textThickness        = 2
	temperatureThickness = 4

	lineY           = 12
	messageStep     = 22
	messageScale    = 0.6
	temperatureY    = 64
	degreeRaise     = 18
	humidityFromBot = 20
)

func (m *Model) draw(f Frame) error {
	if err := m.display.Clear(); err != nil {
		return err
	}
	var err error
	if len(f.Messages) > 0 {
		err = m.drawMessages(f.Messages)
	} else {
		err = m.drawReading(f)
	}
	if err != nil {
		return err
	}
	return m.display.Update()
}

func (m *Model) drawMessages(lines []string) error {
	for i, line := range lines {
		if err := m.display.DrawText(line, 0, lineY+i*messageStep, messageScale, textThickness); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) drawReading(f Frame) error {
	width, height := m.display.Bounds()
	d := drawer{display: m.display}

	if f.Location != "" {
		d.text(f.Location, 0, lineY, 1.0, textThickness)
	}
	if f.Time != "" {
		d.text(f.Time, width-m.display.MeasureText(f.Time, 1.0), lineY, 1.0, textThickness)
	}
	if f.Humidity != "" {
		d.text(f.Humidity, 0, height-humidityFromBot, 1.0, textThickness)
	}
	if t := f.Temperature; t.Number != "" {
		x := 0
		d.text(t.Number, x, temperatureY, 2.0, temperatureThickness)
		x += m.display.MeasureText(t.Number, 2.0)
		d.text(t.Degree, x, temperatureY-degreeRaise, 1.0, temperatureThickness)
		x += m.display.MeasureText(t.Degree, 1.0)
		d.text(t.Unit, x, temperatureY, 2.0, temperatureThickness)
	}
	return d.err
}

// drawer stops drawing after the first error.
type drawer struct {
	display Display
	err     error
}

func (d *drawer) text(text string, x, y int, scale float64, thickness int) {
	if d.err == nil {
		d.err = d.display.DrawText(text, x, y, scale, thickness)
	}
}

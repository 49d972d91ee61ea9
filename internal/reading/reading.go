// Package reading turns the sensor server's response into a validated Reading or a classified ErrorCode.
package reading

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
)

// Reading is the latest measurement reported for one sensor.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	// Age is the number of seconds since the sensor reported the measurement.
	Age int `json:"age"`
	// Time is the server's timestamp for the measurement, if it reported one.
	Time string `json:"time,omitempty"`
}

func (r Reading) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("temperature", r.Temperature),
		slog.Int("humidity", r.Humidity),
		slog.Int("age", r.Age),
	)
}

// ErrorCode classifies the result of one fetch.
type ErrorCode int

const (
	OK ErrorCode = iota
	ServerUnreachable
	DataMissing
	DataStale
)

func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "ok"
	case ServerUnreachable:
		return "server_unreachable"
	case DataMissing:
		return "data_missing"
	case DataStale:
		return "data_stale"
	default:
		return "unknown"
	}
}

func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Codes lists all known error codes.
var Codes = []ErrorCode{OK, ServerUnreachable, DataMissing, DataStale}

type record struct {
	Temperature *float64 `json:"temp"`
	Humidity    *float64 `json:"humidity"`
	Age         *int     `json:"age"`
	Time        string   `json:"time"`
}

// Parse extracts the reading for sensor from the server's response body.
// Only a body that is not JSON at all yields ServerUnreachable. Well-formed JSON that does not hold a usable
// record for sensor yields DataMissing. Records of other sensors are not inspected.
// Staleness is not checked here: see CheckAge.
func Parse(body []byte, sensor string) (Reading, ErrorCode) {
	if !json.Valid(body) {
		return Reading{}, ServerUnreachable
	}
	var doc struct {
		Sensors map[string]json.RawMessage `json:"sensors"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return Reading{}, DataMissing
	}
	raw, ok := doc.Sensors[sensor]
	if !ok {
		return Reading{}, DataMissing
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Temperature == nil || rec.Humidity == nil {
		return Reading{}, DataMissing
	}
	humidity := math.Round(*rec.Humidity)
	if humidity < 0 || humidity > 100 {
		return Reading{}, DataMissing
	}
	var age int
	if rec.Age != nil {
		if age = *rec.Age; age < 0 {
			return Reading{}, DataMissing
		}
	}
	return Reading{
		Temperature: *rec.Temperature,
		Humidity:    int(humidity),
		Age:         age,
		Time:        rec.Time,
	}, OK
}

// CheckAge returns DataStale if the reading is older than maxAge seconds.
// A reading exactly maxAge seconds old is still accepted.
func CheckAge(r Reading, maxAge int) ErrorCode {
	if r.Age > maxAge {
		return DataStale
	}
	return OK
}

// A Transport retrieves the raw response body from the sensor server.
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Fetch retrieves the server's response and parses the reading for sensor.
// Any transport error is reported as ServerUnreachable, alongside the underlying error for logging.
func Fetch(ctx context.Context, t Transport, url string, sensor string) (Reading, ErrorCode, error) {
	body, err := t.Fetch(ctx, url)
	if err != nil {
		return Reading{}, ServerUnreachable, err
	}
	r, code := Parse(body, sensor)
	return r, code, nil
}

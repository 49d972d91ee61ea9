package reading_test

import (
	"context"
	"errors"
	"github.com/clambin/weather-display/internal/reading"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		want    reading.Reading
		wantErr reading.ErrorCode
	}{
		{
			name:    "valid",
			body:    `{"sensors":{"Outside":{"temp":21.25,"humidity":47,"age":12,"time":"2024-05-01T10:32:05Z"}}}`,
			want:    reading.Reading{Temperature: 21.25, Humidity: 47, Age: 12, Time: "2024-05-01T10:32:05Z"},
			wantErr: reading.OK,
		},
		{
			name:    "age defaults to zero",
			body:    `{"sensors":{"Outside":{"temp":-3.5,"humidity":80}}}`,
			want:    reading.Reading{Temperature: -3.5, Humidity: 80},
			wantErr: reading.OK,
		},
		{
			name:    "humidity is rounded",
			body:    `{"sensors":{"Outside":{"temp":10,"humidity":46.6}}}`,
			want:    reading.Reading{Temperature: 10, Humidity: 47},
			wantErr: reading.OK,
		},
		{
			name:    "other sensors are ignored",
			body:    `{"sensors":{"Inside":{"temp":21},"Outside":{"temp":10,"humidity":50}}}`,
			want:    reading.Reading{Temperature: 10, Humidity: 50},
			wantErr: reading.OK,
		},
		{
			name:    "sensor missing",
			body:    `{"sensors":{"Inside":{"temp":21,"humidity":40}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "no sensors",
			body:    `{}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "temperature missing",
			body:    `{"sensors":{"Outside":{"humidity":40}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "humidity missing",
			body:    `{"sensors":{"Outside":{"temp":21}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "humidity out of range",
			body:    `{"sensors":{"Outside":{"temp":21,"humidity":101}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "negative age",
			body:    `{"sensors":{"Outside":{"temp":21,"humidity":40,"age":-1}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "malformed record of another sensor",
			body:    `{"sensors":{"Inside":{"temp":"n/a","humidity":40},"Outside":{"temp":21.3,"humidity":47,"age":3}}}`,
			want:    reading.Reading{Temperature: 21.3, Humidity: 47, Age: 3},
			wantErr: reading.OK,
		},
		{
			name:    "fractional age",
			body:    `{"sensors":{"Outside":{"temp":21.3,"humidity":47,"age":12.5}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "temperature is a string",
			body:    `{"sensors":{"Outside":{"temp":"21.3","humidity":47}}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "sensors is a list",
			body:    `{"sensors":[]}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "record is not an object",
			body:    `{"sensors":{"Outside":21.3}}`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "document is not an object",
			body:    `[1,2,3]`,
			wantErr: reading.DataMissing,
		},
		{
			name:    "malformed",
			body:    `<html>bad gateway</html>`,
			wantErr: reading.ServerUnreachable,
		},
		{
			name:    "empty",
			body:    ``,
			wantErr: reading.ServerUnreachable,
		},
		{
			name:    "truncated",
			body:    `{"sensors":{"Outside":{"temp":21.3,`,
			wantErr: reading.ServerUnreachable,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, code := reading.Parse([]byte(tt.body), "Outside")
			assert.Equal(t, tt.wantErr, code)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestParse_MissingSensorNeverOK(t *testing.T) {
	bodies := []string{
		`{"sensors":{}}`,
		`{"sensors":{"outside":{"temp":21,"humidity":40}}}`,
		`{"sensors":{"Inside":{"temp":21,"humidity":40,"age":0}}}`,
		`{"sensors":null}`,
		`{"data":{"Outside":{"temp":21,"humidity":40}}}`,
	}
	for _, body := range bodies {
		_, code := reading.Parse([]byte(body), "Outside")
		assert.Equal(t, reading.DataMissing, code, body)
	}
}

func TestCheckAge(t *testing.T) {
	const maxAge = 600
	assert.Equal(t, reading.OK, reading.CheckAge(reading.Reading{Age: 0}, maxAge))
	assert.Equal(t, reading.OK, reading.CheckAge(reading.Reading{Age: maxAge - 1}, maxAge))
	assert.Equal(t, reading.OK, reading.CheckAge(reading.Reading{Age: maxAge}, maxAge))
	assert.Equal(t, reading.DataStale, reading.CheckAge(reading.Reading{Age: maxAge + 1}, maxAge))
}

type fakeTransport struct {
	body []byte
	err  error
}

func (f fakeTransport) Fetch(_ context.Context, _ string) ([]byte, error) {
	return f.body, f.err
}

func TestFetch(t *testing.T) {
	ctx := t.Context()

	r, code, err := reading.Fetch(ctx, fakeTransport{body: []byte(`{"sensors":{"Outside":{"temp":1.5,"humidity":3}}}`)}, "http://localhost", "Outside")
	assert.NoError(t, err)
	assert.Equal(t, reading.OK, code)
	assert.Equal(t, reading.Reading{Temperature: 1.5, Humidity: 3}, r)

	_, code, err = reading.Fetch(ctx, fakeTransport{err: errors.New("connection refused")}, "http://localhost", "Outside")
	assert.Error(t, err)
	assert.Equal(t, reading.ServerUnreachable, code)
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "ok", reading.OK.String())
	assert.Equal(t, "server_unreachable", reading.ServerUnreachable.String())
	assert.Equal(t, "data_missing", reading.DataMissing.String())
	assert.Equal(t, "data_stale", reading.DataStale.String())
	assert.Equal(t, "unknown", reading.ErrorCode(-1).String())
}

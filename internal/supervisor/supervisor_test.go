package supervisor

import (
	"context"
	"errors"
	"github.com/clambin/weather-display/internal/loop"
	"github.com/clambin/weather-display/internal/render"
	"github.com/clambin/weather-display/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"log/slog"
	"testing"
	"time"
)

type scriptedRunner struct {
	outcomes []loop.Outcome
	runs     int
}

func (r *scriptedRunner) Run(_ context.Context) loop.Outcome {
	outcome := r.outcomes[min(r.runs, len(r.outcomes)-1)]
	r.runs++
	return outcome
}

func newSupervisor(runner Runner, input loop.Input) (*Supervisor, *testutil.FakeDisplay, *testutil.FakeNotifier) {
	d := testutil.NewFakeDisplay()
	n := &testutil.FakeNotifier{}
	return &Supervisor{
		Runner:       runner,
		Input:        input,
		Model:        render.New(d),
		Notifier:     n,
		RestartDelay: time.Millisecond,
		Restarts:     prometheus.NewCounter(prometheus.CounterOpts{Name: "restarts"}),
		Logger:       slog.New(slog.DiscardHandler),
	}, d, n
}

func TestSupervisor_Run_RestartsAfterFault(t *testing.T) {
	r := &scriptedRunner{outcomes: []loop.Outcome{
		{Kind: loop.Faulted, Fault: errors.New("display: panel busy")},
		{Kind: loop.Faulted, Fault: errors.New("panic: boom")},
		{Kind: loop.Stopped},
	}}
	s, d, n := newSupervisor(r, &testutil.FakeInput{})

	assert.NoError(t, s.Run(t.Context()))
	assert.Equal(t, 3, r.runs)
	assert.Equal(t, 2.0, promtest.ToFloat64(s.Restarts))
	assert.Equal(t, []string{RestartNotice, "panic: boom"}, d.Screen())
	assert.Equal(t, []string{
		"Restarting after error: display: panel busy",
		"Restarting after error: panic: boom",
	}, n.Messages())
}

func TestSupervisor_Run_ExitBeforeStart(t *testing.T) {
	r := &scriptedRunner{outcomes: []loop.Outcome{{Kind: loop.Faulted, Fault: errors.New("fail")}}}
	s, _, _ := newSupervisor(r, &testutil.FakeInput{ExitAfter: 3})

	assert.NoError(t, s.Run(t.Context()))
	assert.Equal(t, 2, r.runs)
}

func TestSupervisor_Run_Canceled(t *testing.T) {
	r := &scriptedRunner{outcomes: []loop.Outcome{{Kind: loop.Canceled}}}
	s, d, _ := newSupervisor(r, &testutil.FakeInput{})

	assert.NoError(t, s.Run(t.Context()))
	assert.Equal(t, 1, r.runs)
	assert.Zero(t, d.Updates())
}

func TestSupervisor_Run_CanceledDuringDelay(t *testing.T) {
	r := &scriptedRunner{outcomes: []loop.Outcome{{Kind: loop.Faulted, Fault: errors.New("fail")}}}
	s, _, _ := newSupervisor(r, &testutil.FakeInput{})
	s.RestartDelay = time.Hour

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Run(ctx))
	assert.Equal(t, 1, r.runs)
}

func TestSupervisor_Run_WithLoop(t *testing.T) {
	d := testutil.NewFakeDisplay()
	model := render.New(d)
	input := &testutil.FakeInput{}
	l := &loop.Loop{
		Configuration: loop.Configuration{Sensor: "Outside", Interval: time.Millisecond, MaxAge: time.Minute, WarnAfter: time.Minute},
		Link:          &testutil.FakeLink{},
		Transport:     &testutil.FakeTransport{Responses: []testutil.Response{{Panic: "boom"}}},
		Input:         input,
		Model:         model,
		Logger:        slog.New(slog.DiscardHandler),
	}
	s := Supervisor{
		Runner:       l,
		Input:        input,
		Model:        model,
		RestartDelay: time.Millisecond,
		Logger:       slog.New(slog.DiscardHandler),
	}
	// input calls: supervisor, loop tick (panics), supervisor, loop tick (panics), supervisor: exit
	input.ExitAfter = 5

	assert.NoError(t, s.Run(t.Context()))
	assert.Equal(t, []string{RestartNotice, "panic: boom"}, d.Screen())
}

func Test_wrap(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{name: "short", text: "ab cd", want: []string{"ab cd"}},
		{name: "wrapped", text: "aaaa bbbb cccc", want: []string{"aaaa", "bbbb", "cccc"}},
		{name: "packed", text: "aa bb cc dd", want: []string{"aa bb", "cc dd"}},
		{name: "long word", text: "abcdefghijkl", want: []string{"abcde", "fghij", "kl"}},
		{name: "truncated", text: "a b c d e f g h i j k l m n o", want: []string{"a b c", "d e f", "g h i", "j k l"}},
		{name: "empty", text: "", want: nil},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.text, 5, 4))
		})
	}
}

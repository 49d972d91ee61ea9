package testutil

import (
	"context"
	"sync"
	"sync/atomic"
)

// FakeLink reports a connection after ConnectAfter calls to IsConnected.
type FakeLink struct {
	ConnectAfter int
	ConnectErr   error
	checks       atomic.Int32
}

func (f *FakeLink) Connect(_ context.Context) error {
	return f.ConnectErr
}

func (f *FakeLink) IsConnected() bool {
	return int(f.checks.Add(1)) > f.ConnectAfter
}

// Response is one scripted answer of a FakeTransport.
type Response struct {
	Body string
	Err  error
	// Panic, if set, makes Fetch panic with this value.
	Panic any
}

// FakeTransport answers Fetch calls with the scripted responses, repeating the last one once all are used.
type FakeTransport struct {
	Responses []Response
	calls     int
	lock      sync.Mutex
}

func (f *FakeTransport) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.lock.Lock()
	idx := min(f.calls, len(f.Responses)-1)
	f.calls++
	resp := f.Responses[idx]
	f.lock.Unlock()

	if resp.Panic != nil {
		panic(resp.Panic)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return []byte(resp.Body), nil
}

func (f *FakeTransport) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

// FakeInput requests an exit from the ExitAfter'th call of ExitRequested onwards. Zero never requests an exit.
type FakeInput struct {
	ExitAfter int
	calls     atomic.Int32
}

func (f *FakeInput) ExitRequested() bool {
	n := int(f.calls.Add(1))
	return f.ExitAfter > 0 && n >= f.ExitAfter
}

func (f *FakeInput) Calls() int {
	return int(f.calls.Load())
}

// FakeNotifier records all notifications.
type FakeNotifier struct {
	messages []string
	lock     sync.Mutex
}

func (f *FakeNotifier) Notify(_ context.Context, msg string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *FakeNotifier) Messages() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.messages...)
}

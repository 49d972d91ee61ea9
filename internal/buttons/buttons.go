// Package buttons tracks which of the device's buttons are held down.
package buttons

import (
	"encoding/json"
	"fmt"
	"github.com/clambin/go-common/set"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// Button identifies one of the panel's buttons.
type Button string

const (
	A Button = "a"
	B Button = "b"
	C Button = "c"
)

// ExitCombination is the set of buttons that must be held together to stop the device.
var ExitCombination = []Button{A, C}

// Panel holds the state of the buttons. It is safe for concurrent use: the control loop polls it while drivers press and release buttons.
type Panel struct {
	Logger  *slog.Logger
	pressed set.Set[Button]
	lock    sync.Mutex
}

func New(logger *slog.Logger) *Panel {
	return &Panel{Logger: logger, pressed: set.New[Button]()}
}

func (p *Panel) Press(buttons ...Button) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, b := range buttons {
		p.pressed.Add(b)
	}
	p.Logger.Debug("buttons pressed", "buttons", buttons)
}

func (p *Panel) Release(buttons ...Button) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, b := range buttons {
		p.pressed.Remove(b)
	}
}

func (p *Panel) IsPressed(b Button) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.pressed.Contains(b)
}

// ExitRequested reports whether all buttons of the exit combination are held.
func (p *Panel) ExitRequested() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, b := range ExitCombination {
		if !p.pressed.Contains(b) {
			return false
		}
	}
	return true
}

// ServeHTTP presses (POST) or releases (DELETE) the buttons listed in the "button" query parameters.
// GET returns the state of all buttons.
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		p.serveState(w)
		return
	}
	buttons, err := parseButtons(r.URL.Query()["button"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPost:
		p.Press(buttons...)
	case http.MethodDelete:
		p.Release(buttons...)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *Panel) serveState(w http.ResponseWriter) {
	state := make(map[Button]bool, 3)
	for _, b := range []Button{A, B, C} {
		state[b] = p.IsPressed(b)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

func parseButtons(names []string) ([]Button, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no buttons specified")
	}
	buttons := make([]Button, 0, len(names))
	for _, name := range names {
		b := Button(strings.ToLower(name))
		switch b {
		case A, B, C:
			buttons = append(buttons, b)
		default:
			return nil, fmt.Errorf("invalid button: %q", name)
		}
	}
	return buttons, nil
}

// Package network reports whether the sensor server can be reached, standing in for the device's radio link.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"
)

// Link considers the network up when a TCP connection to the sensor server's address succeeds.
type Link struct {
	Timeout time.Duration
	Logger  *slog.Logger
	address string
}

// New returns a Link for the server in target, which must be an http or https URL.
func New(target string, timeout time.Duration, logger *slog.Logger) (*Link, error) {
	address, err := hostPort(target)
	if err != nil {
		return nil, err
	}
	return &Link{address: address, Timeout: timeout, Logger: logger}, nil
}

func hostPort(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid url %q: no host", target)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		default:
			return "", fmt.Errorf("invalid url %q: unsupported scheme", target)
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Connect has nothing to bring up on a host: the operating system owns the network interfaces.
func (l *Link) Connect(_ context.Context) error {
	l.Logger.Debug("connecting", "address", l.address)
	return nil
}

func (l *Link) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", l.address, l.Timeout)
	if err != nil {
		l.Logger.Debug("not connected", "address", l.address, "err", err)
		return false
	}
	_ = conn.Close()
	return true
}

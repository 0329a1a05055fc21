// Package devserver launches the stk development server in the background
// and supervises it until the user stops it.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kannan/stk-executor/internal/logger"
)

var (
	// ErrPortsBusy means both the requested port and its fallback are bound.
	ErrPortsBusy = errors.New("port and fallback port are both in use")
	// ErrNotConfirmed means the port was still free after the settle delay.
	ErrNotConfirmed = errors.New("server did not bind its port")
	// ErrExited means the server process ended before it was confirmed.
	ErrExited = errors.New("server exited during startup")
)

// IsPortBound reports whether something accepts TCP connections on localhost:port.
func IsPortBound(port int) bool {
	conn, err := net.Dial("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// ServeFunc runs the server for file on port until it exits or ctx ends.
type ServeFunc func(ctx context.Context, file string, port int) error

// Launcher starts servers. Serve is required; zero values elsewhere fall
// back to IsPortBound and the package defaults.
type Launcher struct {
	Serve ServeFunc
	Probe func(port int) bool
	// Settle is how long to wait before confirming the port is bound.
	Settle time.Duration
	// Fallback is tried when the requested port is bound; 0 means port+1.
	Fallback int
}

// DefaultSettle is the wait before the port is re-probed.
const DefaultSettle = 3 * time.Second

const maxPort = 65535

// Server is a running, supervised dev server.
type Server struct {
	File string
	Port int
	URL  string
	// FellBack is true when the requested port was busy.
	FellBack bool

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Launch starts the server for file on port, moving to the fallback port
// when port is already bound. It returns once the server is confirmed to be
// listening, or with an error after stopping it.
func (l *Launcher) Launch(ctx context.Context, file string, port int) (*Server, error) {
	probe := l.Probe
	if probe == nil {
		probe = IsPortBound
	}
	settle := l.Settle
	if settle == 0 {
		settle = DefaultSettle
	}

	chosen, fellBack := port, false
	if probe(port) {
		fallback := l.Fallback
		if fallback == 0 {
			fallback = port + 1
		}
		if fallback == port || fallback > maxPort || probe(fallback) {
			return nil, fmt.Errorf("%w: %d, %d", ErrPortsBusy, port, fallback)
		}
		logger.Info("port in use, using fallback", "port", port, "fallback", fallback)
		chosen, fellBack = fallback, true
	}

	srvCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(srvCtx)
	s := &Server{
		File:     file,
		Port:     chosen,
		URL:      URL(chosen),
		FellBack: fellBack,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	served := make(chan struct{})
	confirmed := make(chan struct{})

	g.Go(func() error {
		defer close(served)
		return l.Serve(gctx, file, chosen)
	})
	// A failed confirmation cancels gctx, which stops the server above.
	g.Go(func() error {
		timer := time.NewTimer(settle)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-served:
			return nil
		case <-gctx.Done():
			return nil
		}
		if !probe(chosen) {
			return fmt.Errorf("%w: %d", ErrNotConfirmed, chosen)
		}
		close(confirmed)
		return nil
	})
	go func() {
		s.err = g.Wait()
		close(s.done)
	}()

	select {
	case <-confirmed:
	case <-s.done:
		cancel()
		select {
		case <-confirmed:
			// came up, then exited; Wait reports it
			return s, nil
		default:
		}
		switch {
		case errors.Is(s.err, ErrNotConfirmed):
			return nil, s.err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case s.err != nil:
			return nil, fmt.Errorf("%w: %v", ErrExited, s.err)
		}
		return nil, ErrExited
	}

	logger.Info("dev server confirmed", "url", s.URL)
	return s, nil
}

// URL returns the local address of a server on port.
func URL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// Wait blocks, polling every interval, until ctx is cancelled or the server
// exits on its own. It returns the server error in the latter case.
func (s *Server) Wait(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			select {
			case <-s.done:
				if s.err != nil {
					return s.err
				}
				return ErrExited
			default:
			}
		}
	}
}

// Stop cancels the server and waits until its process has been reaped.
func (s *Server) Stop() error {
	s.cancel()
	<-s.done
	return s.err
}

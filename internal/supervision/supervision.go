// Package supervision wires the server facade's long-running goroutine
// (the dispatcher loop) into a github.com/thejerf/suture
// supervision tree, adapted from the x-ipcviewer example's
// pkg/sutureext/sutureext.go: the same EventHook-to-slog logging and
// ServiceFunc wrapper, generalized from that project's X11 window-manager
// services to this one's dispatcher/intake services.
package supervision

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

// New builds a root supervisor with the logging EventHook wired in, one per
// server run (spec §4.7: the server facade owns the supervision tree).
func New(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{EventHook: eventHook()})
}

// eventHook logs every suture lifecycle event through slog, matching the
// teacher pack's convention of routing supervisor diagnostics through the
// same structured logger as everything else rather than suture's own
// default stderr writer.
func eventHook() suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			slog.Warn("service failed to terminate in time", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			slog.Error("service panic recovered", "stacktrace", e.Stacktrace, "panic", e.PanicMsg)
		case suture.EventServiceTerminate:
			slog.Error("service terminated", "error", e.Err, "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventBackoff:
			slog.Warn("supervisor entering backoff after repeated failures", "supervisor", e.SupervisorName)
		case suture.EventResume:
			slog.Info("supervisor exiting backoff", "supervisor", e.SupervisorName)
		default:
			b, _ := json.Marshal(e)
			slog.Warn("unrecognized suture event", "type", int(e.Type()), "data", string(b))
		}
	}
}

// Add registers service with super, under the name it reports via String.
func Add(super *suture.Supervisor, service Named) suture.ServiceToken {
	return super.Add(service)
}

// Named is a suture.Service that also reports a human name, the same
// constraint the teacher pack's sutureext.Service interface enforces so
// every entry in the supervision tree is identifiable in logs.
type Named interface {
	String() string
	suture.Service
}

// Func adapts a bare context-taking function into a Named suture.Service,
// for the server facade's simpler services (the dispatcher loop) that
// don't need their own type.
type Func struct {
	name string
	run  func(ctx context.Context) error
}

// NewFunc names and wraps run as a Named service.
func NewFunc(name string, run func(ctx context.Context) error) Func {
	return Func{name: name, run: run}
}

func (f Func) String() string { return f.name }

func (f Func) Serve(ctx context.Context) error {
	return sanitize(ctx, f.run(ctx))
}

// sanitize mirrors the teacher pack's SanitizeError: a service returning
// context.Canceled/DeadlineExceeded after the supervisor tree itself asked
// for shutdown should read as a clean stop, not a crash suture restarts.
func sanitize(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return err
}

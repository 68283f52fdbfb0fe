package osc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/example/meeting-conductor/internal/event"
)

// maxPacket is the largest UDP payload accepted.
const maxPacket = 65535

// Sink receives inbound control-plane messages in arrival order.
type Sink interface {
	Deliver(ctx context.Context, raw event.Raw) error
}

// Listener reads OSC packets from a UDP socket and forwards every message
// to a Sink. Packets are handled one at a time so message order is kept.
type Listener struct {
	addr   string
	sink   Sink
	logger *slog.Logger
}

// NewListener returns a listener for addr, e.g. ":1234".
func NewListener(addr string, sink Sink, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{addr: addr, sink: sink, logger: logger.With("component", "osc_listener")}
}

// Run listens on the configured address until ctx ends.
func (l *Listener) Run(ctx context.Context) error {
	pc, err := net.ListenPacket("udp", l.addr)
	if err != nil {
		return fmt.Errorf("osc: listen %s: %w", l.addr, err)
	}
	return l.Serve(ctx, pc)
}

// Serve reads from pc until ctx ends, then closes it. It returns nil on a
// clean shutdown.
func (l *Listener) Serve(ctx context.Context, pc net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() { _ = pc.Close() })
	defer stop()
	defer pc.Close()

	l.logger.InfoContext(ctx, "listening for control-plane messages", "addr", pc.LocalAddr().String())
	buf := make([]byte, maxPacket)
	for {
		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("osc: read: %w", err)
		}
		packet, err := goosc.ParsePacket(string(buf[:n]))
		if err != nil {
			l.logger.WarnContext(ctx, "dropping malformed packet", "from", from.String(), "bytes", n, "error", err)
			continue
		}
		if err := l.dispatch(ctx, packet); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.ErrorContext(ctx, "delivering message failed", "error", err)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, packet goosc.Packet) error {
	switch p := packet.(type) {
	case *goosc.Message:
		return l.sink.Deliver(ctx, FromMessage(p))
	case *goosc.Bundle:
		for _, msg := range p.Messages {
			if err := l.sink.Deliver(ctx, FromMessage(msg)); err != nil {
				return err
			}
		}
		for _, nested := range p.Bundles {
			if err := l.dispatch(ctx, nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// FromMessage converts a decoded OSC message to the conductor's raw form.
func FromMessage(msg *goosc.Message) event.Raw {
	return event.Raw{Address: msg.Address, Args: slices.Clone(msg.Arguments)}
}

// Package osc carries control-plane messages over OSC/UDP: a Client that
// sends commands to the control plane and a Listener that feeds inbound
// messages to the conductor.
package osc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	goosc "github.com/hypebeast/go-osc/osc"
)

// ErrUnsupportedArgument is returned for values OSC cannot carry.
var ErrUnsupportedArgument = errors.New("osc: unsupported argument")

// Client sends messages to one control-plane endpoint.
type Client struct {
	conn   *goosc.Client
	target string
	logger *slog.Logger
}

// NewClient returns a client sending to host:port.
func NewClient(host string, port int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		conn:   goosc.NewClient(host, port),
		target: fmt.Sprintf("%s:%d", host, port),
		logger: logger.With("component", "osc_client"),
	}
}

// Send encodes and transmits one message. Go ints become 32-bit OSC ints.
func (c *Client) Send(ctx context.Context, address string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := NewMessage(address, args...)
	if err != nil {
		return err
	}
	if err := c.conn.Send(msg); err != nil {
		return fmt.Errorf("osc: send %s to %s: %w", address, c.target, err)
	}
	return nil
}

// NewMessage builds an OSC message, converting arguments to wire types.
func NewMessage(address string, args ...any) (*goosc.Message, error) {
	msg := goosc.NewMessage(address)
	for i, arg := range args {
		v, err := wireValue(arg)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", address, i, err)
		}
		msg.Append(v)
	}
	return msg, nil
}

func wireValue(arg any) (any, error) {
	switch v := arg.(type) {
	case nil, string, bool, int32, float32, float64, []byte:
		return v, nil
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return int64(v), nil
		}
		return int32(v), nil
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return v, nil
		}
		return int32(v), nil
	case int8:
		return int32(v), nil
	case int16:
		return int32(v), nil
	case uint8:
		return int32(v), nil
	case uint16:
		return int32(v), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedArgument, arg)
	}
}

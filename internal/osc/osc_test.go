package osc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"reflect"
	"sync"
	"testing"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/example/meeting-conductor/internal/event"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type collectingSink struct {
	mu       sync.Mutex
	received []event.Raw
	notify   chan struct{}
}

func newCollectingSink() *collectingSink {
	return &collectingSink{notify: make(chan struct{}, 16)}
}

func (s *collectingSink) Deliver(_ context.Context, raw event.Raw) error {
	s.mu.Lock()
	s.received = append(s.received, raw)
	s.mu.Unlock()
	s.notify <- struct{}{}
	return nil
}

func (s *collectingSink) messages() []event.Raw {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Raw(nil), s.received...)
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("/zoom/zoomID/chat", 7, "hello", int64(8), true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{int32(7), "hello", int32(8), true, nil}
	if !reflect.DeepEqual(msg.Arguments, want) {
		t.Fatalf("unexpected arguments: %#v", msg.Arguments)
	}

	wide, err := NewMessage("/x", math.MaxInt32+1)
	if err != nil || wide.Arguments[0] != int64(math.MaxInt32+1) {
		t.Fatalf("out of range ints must widen: %#v %v", wide, err)
	}

	if _, err := NewMessage("/x", struct{}{}); !errors.Is(err, ErrUnsupportedArgument) {
		t.Fatalf("expected ErrUnsupportedArgument, got %v", err)
	}
}

func TestListener_DispatchBundle(t *testing.T) {
	sink := newCollectingSink()
	l := NewListener(":0", sink, discardLogger())

	inner := goosc.NewBundle(time.Now())
	inner.Append(goosc.NewMessage("/zoomosc/user/online", int32(0), "bob", int32(0), int32(3)))
	outer := goosc.NewBundle(time.Now())
	outer.Append(goosc.NewMessage("/zoomosc/user/online", int32(0), "alice", int32(0), int32(2)))
	outer.Append(inner)

	if err := l.dispatch(context.Background(), outer); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	got := sink.messages()
	if len(got) != 2 || got[0].Args[1] != "alice" || got[1].Args[1] != "bob" {
		t.Fatalf("unexpected delivery order: %+v", got)
	}
}

func TestClientListenerRoundTrip(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp unavailable: %v", err)
	}
	port := pc.LocalAddr().(*net.UDPAddr).Port

	sink := newCollectingSink()
	l := NewListener("", sink, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx, pc) }()

	client := NewClient("127.0.0.1", port, discardLogger())
	if err := client.Send(ctx, "/zoomosc/user/chat", 0, "alice", 0, 7, "/ma"); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case <-sink.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
	got := sink.messages()[0]
	want := event.Raw{Address: "/zoomosc/user/chat", Args: []any{int32(0), "alice", int32(0), int32(7), "/ma"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected raw message: %#v", got)
	}
	if chat, ok := event.Parse(got).(event.Chat); !ok || chat.ID != 7 || chat.Text != "/ma" {
		t.Fatalf("round-tripped message must parse as chat: %+v", chat)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestClient_SendHonoursCancelledContext(t *testing.T) {
	client := NewClient("127.0.0.1", 9, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Send(ctx, "/zoom/list"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

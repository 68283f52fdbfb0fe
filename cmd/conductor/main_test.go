package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/example/meeting-conductor/internal/application"
	"github.com/example/meeting-conductor/internal/config"
)

func TestRun_Help(t *testing.T) {
	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, strings.NewReader(""), io.Discard, &stderr); err != nil {
		t.Fatalf("help must not fail: %v", err)
	}
	if !strings.Contains(stderr.String(), "--schedule") {
		t.Fatalf("expected flag listing, got %q", stderr.String())
	}
}

func TestRun_RejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"unknown mode", []string{"--mode", "leader"}},
		{"bad log level", []string{"--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.args, strings.NewReader(""), io.Discard, io.Discard); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRun_HashCodeword(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(context.Background(), []string{"--hash-codeword"}, strings.NewReader("open-sesame\n"), &stdout, io.Discard); err != nil {
		t.Fatalf("hash-codeword returned error: %v", err)
	}
	hashed := strings.TrimSpace(stdout.String())
	if !application.IsHashedCodeword(hashed) {
		t.Fatalf("expected an argon2id hash, got %q", hashed)
	}
	if err := application.VerifyCodeword(hashed, "open-sesame"); err != nil {
		t.Fatalf("printed hash must verify: %v", err)
	}

	if err := run(context.Background(), []string{"--hash-codeword"}, strings.NewReader("  \n"), io.Discard, io.Discard); err == nil {
		t.Fatal("expected error for an empty codeword")
	}
}

func TestServe_StartsAndStops(t *testing.T) {
	zoom, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp unavailable: %v", err)
	}
	defer zoom.Close()
	inbound, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp unavailable: %v", err)
	}

	cfg := config.Default()
	cfg.ZoomOSCHost = "127.0.0.1"
	cfg.ZoomOSCPort = zoom.LocalAddr().(*net.UDPAddr).Port
	cfg.Mode = "primary"
	cfg.Timezone = "UTC"
	cfg.JournalDSN = filepath.Join(t.TempDir(), "journal.db")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, inbound, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	// startup subscribes before anything else
	buf := make([]byte, 65535)
	if err := zoom.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	n, _, err := zoom.ReadFrom(buf)
	if err != nil {
		cancel()
		t.Fatalf("expected a startup message: %v", err)
	}
	packet, err := goosc.ParsePacket(string(buf[:n]))
	if err != nil {
		cancel()
		t.Fatalf("parse: %v", err)
	}
	msg, ok := packet.(*goosc.Message)
	if !ok || msg.Address != "/zoom/subscribe" {
		cancel()
		t.Fatalf("expected /zoom/subscribe, got %+v", packet)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

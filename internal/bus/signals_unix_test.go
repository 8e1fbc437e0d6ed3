//go:build !windows

package bus

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestLifecycleResumeSignal(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe()
	defer unsub()

	l := NewLifecycle(b, "")
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer l.Stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGCONT); err != nil {
		t.Fatalf("failed to send SIGCONT: %v", err)
	}

	if !waitSignal(t, ch, 2*time.Second) {
		t.Error("no signal after SIGCONT")
	}
}

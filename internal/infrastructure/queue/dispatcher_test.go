package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Mail
}

func (s *recordingSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (s *recordingSender) snapshot() []Mail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mail, len(s.sent))
	copy(out, s.sent)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestDispatcher_DeliversAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &recordingSender{}
	d := NewDispatcher(4, sender, zerolog.Nop())
	d.Start(ctx)

	const total = 20
	for i := 0; i < total; i++ {
		if err := d.Send(fmt.Sprintf("user%d@example.com", i), "subject", "body"); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	waitFor(t, func() bool { return len(sender.snapshot()) == total })
}

func TestDispatcher_PerRecipientOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &recordingSender{}
	d := NewDispatcher(4, sender, zerolog.Nop())
	d.Start(ctx)

	const total = 10
	for i := 0; i < total; i++ {
		_ = d.Send("same@example.com", fmt.Sprintf("mail-%d", i), "body")
	}

	waitFor(t, func() bool { return len(sender.snapshot()) == total })

	for i, mail := range sender.snapshot() {
		if mail.Subject != fmt.Sprintf("mail-%d", i) {
			t.Fatalf("out of order delivery at %d: %s", i, mail.Subject)
		}
	}
}

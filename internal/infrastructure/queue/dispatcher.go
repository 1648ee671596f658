package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Mail is a queued outbound message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Sender performs the actual delivery for a dequeued message.
type Sender interface {
	Send(to, subject, body string) error
}

// Dispatcher fans mail out to a fixed set of workers, sharded by recipient so
// messages to the same address keep their order (a reset link mailed after a
// verification link arrives after it). Send never blocks an identity
// operation on delivery; it implements ports.Notifier.
type Dispatcher struct {
	workers []chan Mail
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan Mail, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Mail, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send enqueues a message for delivery. Always returns nil: delivery is
// best-effort and failures surface only in the worker's log.
func (d *Dispatcher) Send(to, subject, body string) error {
	d.workers[d.shardIndex(to)] <- Mail{To: to, Subject: subject, Body: body}
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Mail) {
	for {
		select {
		case <-ctx.Done():
			return
		case mail, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(mail.To, mail.Subject, mail.Body); err != nil {
				d.log.Error().Err(err).
					Str("recipient", mail.To).
					Int("worker_id", id).
					Msg("mail delivery failed")
			}
		}
	}
}

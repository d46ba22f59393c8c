package notify

import (
	"context"
	"errors"
	"log"
)

// Delivery is one recipient's copy of a payload.
type Delivery struct {
	Recipient string
	Payload   Payload
}

// Dispatcher fans payload deliveries out to a pool of workers, one job per
// recipient, so a slow or failing address never delays the others. Each
// worker tries the primary sender first (the edge relay, when configured)
// and falls back to the secondary.
type Dispatcher struct {
	size     int
	jobs     chan Delivery
	primary  Sender
	fallback Sender
}

// NewDispatcher creates a new dispatcher. primary may be nil; fallback must
// not be.
func NewDispatcher(size int, primary, fallback Sender) *Dispatcher {
	return &Dispatcher{
		size:     size,
		jobs:     make(chan Delivery, size),
		primary:  primary,
		fallback: fallback,
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.size; i++ {
		go d.worker(ctx, i)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	for {
		select {
		case job := <-d.jobs:
			d.deliver(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch enqueues one delivery per recipient.
func (d *Dispatcher) Dispatch(p Payload) {
	for _, recipient := range p.Recipients {
		d.jobs <- Delivery{Recipient: recipient, Payload: p}
	}
}

// Jobs returns the jobs channel for testing.
func (d *Dispatcher) Jobs() chan Delivery {
	return d.jobs
}

func (d *Dispatcher) deliver(ctx context.Context, job Delivery) {
	if d.primary != nil {
		err := d.primary.Send(ctx, job.Recipient, job.Payload)
		if err == nil {
			log.Printf("Notification delivered to %s via relay", job.Recipient)
			return
		}
		if !errors.Is(err, ErrNotConfigured) {
			log.Printf("Relay delivery to %s failed, falling back to SMTP: %v", job.Recipient, err)
		}
	}

	if err := d.fallback.Send(ctx, job.Recipient, job.Payload); err != nil {
		log.Printf("Failed to deliver notification to %s: %v", job.Recipient, err)
		return
	}
	log.Printf("Notification delivered to %s", job.Recipient)
}

// Package notify turns newly discovered availability into outbound
// notifications: an aggregate of available slots per date becomes a payload
// delivered to every registered receiver (via edge relay or SMTP) and
// broadcast to web push subscribers.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"reservation-monitor-backend/internal/store"
)

// Service owns the notification cycle for one monitoring batch.
type Service struct {
	store        store.Store
	dispatcher   *Dispatcher
	push         *PushBroadcast
	linkTemplate string
	now          func() time.Time
}

// NewService creates the notification service. push may be nil when the web
// push channel is not configured.
func NewService(s store.Store, dispatcher *Dispatcher, push *PushBroadcast, linkTemplate string) *Service {
	return &Service{
		store:        s,
		dispatcher:   dispatcher,
		push:         push,
		linkTemplate: linkTemplate,
		now:          time.Now,
	}
}

// Start launches the delivery workers.
func (s *Service) Start(ctx context.Context) {
	s.dispatcher.Start(ctx)
}

// Notify builds the payload for an aggregate and hands it to the transports.
// An empty aggregate means no notification. Delivery itself is asynchronous
// and per-recipient; a transport failure for one recipient is logged by the
// dispatcher and never surfaces here.
func (s *Service) Notify(ctx context.Context, agg Aggregate) error {
	if agg.Empty() {
		return nil
	}

	recipients, err := s.store.ListReceivers(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve notification receivers: %w", err)
	}

	payload := BuildPayload(agg, recipients, s.linkTemplate, s.now())
	log.Printf("Dispatching availability notification: %d dates, %d recipients", len(agg.Dates), len(recipients))
	s.dispatcher.Dispatch(payload)

	if s.push != nil {
		s.push.Broadcast(ctx, payload)
	}
	return nil
}

package notify

import (
	"context"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/store"
)

// PushSender defines the interface for sending a single web push message.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation using the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// PushBroadcast pushes the alert to every stored browser subscription.
// Availability alerts are not per-slot, so every subscriber gets each one.
type PushBroadcast struct {
	store   store.Store
	options *webpush.Options
	sender  PushSender
}

// NewPushBroadcast creates the broadcast channel. options may describe an
// unconfigured channel (empty keys); Broadcast is then a no-op.
func NewPushBroadcast(s store.Store, options *webpush.Options) *PushBroadcast {
	return &PushBroadcast{store: s, options: options, sender: &WebPushSender{}}
}

// Broadcast sends the payload subject to all subscriptions, dropping the
// ones the push service reports as gone.
func (b *PushBroadcast) Broadcast(ctx context.Context, p Payload) {
	if b.options == nil || b.options.VAPIDPublicKey == "" || b.options.VAPIDPrivateKey == "" {
		return
	}

	subs, err := b.store.ListPushSubscriptions(ctx)
	if err != nil {
		log.Printf("Error listing push subscriptions: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	log.Printf("Broadcasting push notification to %d subscriptions", len(subs))
	for _, sub := range subs {
		b.send(ctx, sub, []byte(p.Subject))
	}
}

func (b *PushBroadcast) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := b.sender.Send(payload, wpSub, b.options)
	if err != nil {
		log.Printf("Error sending push notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := b.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

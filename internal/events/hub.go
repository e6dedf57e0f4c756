// Package events provides the in-memory publish/subscribe hub that fans
// typed event envelopes out to live subscribers.
package events

import (
	"math"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// EventType identifies the kind of an envelope.
type EventType string

const (
	// EventConnected is delivered to a subscriber immediately on subscribe.
	EventConnected EventType = "connected"
	// EventPodStatus signals a pod lifecycle status change.
	EventPodStatus EventType = "pod_status"
	// EventSetupProgress carries setup progress for an initializing pod.
	EventSetupProgress EventType = "setup_progress"
	// EventCostUpdate carries a refreshed accumulated cost for a pod.
	EventCostUpdate EventType = "cost_update"
	// EventPodCreated signals a newly provisioned pod.
	EventPodCreated EventType = "pod_created"
	// EventPodTerminated signals a terminated pod.
	EventPodTerminated EventType = "pod_terminated"
	// EventError carries an asynchronous error notice.
	EventError EventType = "error"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind is dropped on the next publish.
const subscriberBuffer = 100

// Envelope is the immutable unit of delivery.
type Envelope struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp float64        `json:"timestamp"`
}

// Subscriber is a handle to one delivery channel.
type Subscriber struct {
	id uuid.UUID
	ch chan Envelope
}

// C returns the subscriber's receive channel. The channel is closed when
// the subscriber is removed from the hub.
func (s *Subscriber) C() <-chan Envelope {
	return s.ch
}

// Hub broadcasts envelopes to all current subscribers. Delivery is
// best-effort, at-most-once: a subscriber whose buffer is full is
// unsubscribed rather than allowed to backpressure publishers. Within one
// subscriber, delivery order matches publish order.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscriber
	log  logr.Logger
}

// NewHub creates an empty hub.
func NewHub(log logr.Logger) *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]*Subscriber),
		log:  log.WithName("events"),
	}
}

// Subscribe registers a new subscriber and immediately delivers a connected
// envelope to it.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		id: uuid.New(),
		ch: make(chan Envelope, subscriberBuffer),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()

	subscribersGauge.Set(float64(count))
	h.log.Info("subscriber connected", "subscribers", count)

	// Buffer is empty at this point, the send cannot block.
	sub.ch <- envelope(EventConnected, map[string]any{
		"message": "Connected to comfyrun event stream",
	})

	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Removing a
// subscriber that is absent (or already removed) is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	_, present := h.subs[sub.id]
	if present {
		delete(h.subs, sub.id)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if !present {
		return
	}

	close(sub.ch)
	subscribersGauge.Set(float64(count))
	h.log.Info("subscriber disconnected", "subscribers", count)
}

// Publish stamps and broadcasts an envelope to every current subscriber.
// Subscribers with a saturated buffer are dropped as a side effect.
func (h *Hub) Publish(eventType EventType, data map[string]any) {
	env := envelope(eventType, data)

	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	var slow []*Subscriber
	for _, sub := range targets {
		select {
		case sub.ch <- env:
		default:
			slow = append(slow, sub)
		}
	}

	publishedTotal.WithLabelValues(string(eventType)).Inc()

	for _, sub := range slow {
		h.log.Info("dropping slow subscriber", "event", eventType)
		droppedTotal.Inc()
		h.Unsubscribe(sub)
	}
}

// ClientCount returns the number of live subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// PodStatus publishes a pod status change. extra fields (endpoint_url,
// uptime, error) are merged into the payload.
func (h *Hub) PodStatus(podID, status string, extra map[string]any) {
	data := map[string]any{
		"pod_id": podID,
		"status": status,
	}
	for k, v := range extra {
		data[k] = v
	}
	h.Publish(EventPodStatus, data)
}

// SetupProgress publishes a setup progress update with the trailing log lines.
func (h *Hub) SetupProgress(podID, step string, percent float64, logs []string) {
	if len(logs) > 10 {
		logs = logs[len(logs)-10:]
	}
	h.Publish(EventSetupProgress, map[string]any{
		"pod_id":  podID,
		"step":    step,
		"percent": round1(percent),
		"logs":    logs,
	})
}

// CostUpdate publishes a refreshed accumulated cost for a pod.
func (h *Hub) CostUpdate(podID string, costSoFar, ratePerHour float64) {
	h.Publish(EventCostUpdate, map[string]any{
		"pod_id":        podID,
		"cost_so_far":   round2(costSoFar),
		"rate_per_hour": round2(ratePerHour),
	})
}

// PodCreated publishes a pod creation notice.
func (h *Hub) PodCreated(podID, name, gpuID string) {
	h.Publish(EventPodCreated, map[string]any{
		"pod_id": podID,
		"name":   name,
		"gpu_id": gpuID,
	})
}

// PodTerminated publishes a pod termination notice.
func (h *Hub) PodTerminated(podID string) {
	h.Publish(EventPodTerminated, map[string]any{"pod_id": podID})
}

// Error publishes an asynchronous error notice. podID may be empty when the
// error is not pod-specific.
func (h *Hub) Error(message, podID string) {
	data := map[string]any{"message": message}
	if podID != "" {
		data["pod_id"] = podID
	}
	h.Publish(EventError, data)
}

func envelope(eventType EventType, data map[string]any) Envelope {
	return Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

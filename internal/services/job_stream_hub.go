package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobStreamHub multiplexes the Redis progress channel to SSE clients without
// spawning a Redis subscription per HTTP request. Events are routed by job
// id, so a client only sees the job it subscribed to.
type JobStreamHub struct {
	redis       *redis.Client
	channelName string

	mu sync.RWMutex
	// job id -> listeners for that job
	subscribers map[string]map[chan []byte]struct{}
}

func NewJobStreamHub(redis *redis.Client, channel string) *JobStreamHub {
	hub := &JobStreamHub{
		redis:       redis,
		channelName: channel,
		subscribers: make(map[string]map[chan []byte]struct{}),
	}

	go hub.run()

	return hub
}

func (h *JobStreamHub) run() {
	ctx := context.Background()

	for {
		pubsub := h.redis.Subscribe(ctx, h.channelName)
		ch := pubsub.Channel(redis.WithChannelSize(4096))

		for msg := range ch {
			h.route([]byte(msg.Payload))
		}

		_ = pubsub.Close()

		// Avoid tight loop if Redis connection drops
		time.Sleep(time.Second)
	}
}

// route delivers a progress event to the listeners of its job
func (h *JobStreamHub) route(payload []byte) {
	var evt struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(payload, &evt); err != nil || evt.JobID == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[evt.JobID] {
		select {
		case sub <- payload:
		default:
			// Subscriber is too slow; drop the oldest event to make room
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- payload:
			default:
			}
		}
	}
}

// Subscribe registers a listener for one job's progress events and returns
// the event channel plus an idempotent cleanup function.
func (h *JobStreamHub) Subscribe(jobID string) (<-chan []byte, func()) {
	ch := make(chan []byte, 128)

	h.mu.Lock()
	set, ok := h.subscribers[jobID]
	if !ok {
		set = make(map[chan []byte]struct{})
		h.subscribers[jobID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if set, ok := h.subscribers[jobID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subscribers, jobID)
			}
		}
		h.mu.Unlock()
	}

	return ch, unsubscribe
}

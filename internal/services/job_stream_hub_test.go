package services

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestJobStreamHubRoutesEventsByJobID(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewJobStreamHub(client, JobProgressChannel)

	abc, cancelABC := hub.Subscribe("abc")
	other, cancelOther := hub.Subscribe("other")
	defer cancelABC()
	defer cancelOther()

	payload := `{"job_id":"abc","status":"running","progress":40}`
	// The hub's subscription is established asynchronously; retry the
	// publish until a listener picks it up.
	deadline := time.After(3 * time.Second)
	for {
		_ = client.Publish(context.Background(), JobProgressChannel, payload).Err()
		select {
		case got := <-abc:
			if string(got) != payload {
				t.Fatalf("unexpected payload: %s", got)
			}
			select {
			case leaked := <-other:
				t.Fatalf("subscriber for a different job received %s", leaked)
			default:
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for hub routing")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestJobStreamHubFansOutToAllJobListeners(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewJobStreamHub(client, JobProgressChannel)

	first, cancelFirst := hub.Subscribe("abc")
	second, cancelSecond := hub.Subscribe("abc")
	defer cancelFirst()
	defer cancelSecond()

	payload := `{"job_id":"abc","status":"completed","progress":100}`
	deadline := time.After(3 * time.Second)
	for {
		_ = client.Publish(context.Background(), JobProgressChannel, payload).Err()
		select {
		case got := <-first:
			if string(got) != payload {
				t.Fatalf("unexpected payload: %s", got)
			}
			select {
			case got := <-second:
				if string(got) != payload {
					t.Fatalf("unexpected payload on second subscriber: %s", got)
				}
			case <-time.After(time.Second):
				t.Fatal("second subscriber never received the event")
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for hub fan-out")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestJobStreamHubUnsubscribeClosesChannel(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewJobStreamHub(client, JobProgressChannel)

	ch, unsubscribe := hub.Subscribe("abc")
	unsubscribe()

	select {
	case _, open := <-ch:
		if open {
			t.Fatal("expected closed channel after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}

	// A second unsubscribe must be a no-op, not a double close.
	unsubscribe()
}

package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tracker/pkg/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// collector records delivered events in arrival order.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event{}, c.events...)
}

func TestBus_DeliversInPublishOrder(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	col := &collector{}
	bus.Subscribe(TypeProjectUpdated, "collector", col.handle)

	var published []Event
	for i := 0; i < 50; i++ {
		event := ProjectUpdated{ProjectID: id.NewProjectID()}
		published = append(published, event)
		bus.Publish(context.Background(), event)
	}

	require.Eventually(t, func() bool { return col.len() == 50 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, published, col.snapshot())
}

func TestBus_FailingHandlerDoesNotAffectOthers(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	col := &collector{}
	bus.Subscribe(TypeUserUpdated, "failing", func(context.Context, Event) error {
		return errors.New("subscriber exploded")
	})
	bus.Subscribe(TypeUserUpdated, "panicking", func(context.Context, Event) error {
		panic("subscriber panicked")
	})
	bus.Subscribe(TypeUserUpdated, "collector", col.handle)

	// Publish must return normally despite downstream failures.
	bus.Publish(context.Background(), UserUpdated{UserID: id.NewUserID()})
	bus.Publish(context.Background(), UserUpdated{UserID: id.NewUserID()})

	require.Eventually(t, func() bool { return col.len() == 2 }, time.Second, 5*time.Millisecond)
}

func TestBus_FailingHandlerKeepsOwnSubscriptionAlive(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	calls := make(chan struct{}, 4)
	bus.Subscribe(TypeProjectUpdated, "flaky", func(context.Context, Event) error {
		calls <- struct{}{}
		panic("boom")
	})

	bus.Publish(context.Background(), BasicProjectUpdate(id.NewProjectID()))
	bus.Publish(context.Background(), BasicProjectUpdate(id.NewProjectID()))

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("handler not invoked for event %d", i+1)
		}
	}
}

func TestBus_HandlersPerTypeAreIndependent(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	projects := &collector{}
	users := &collector{}
	bus.Subscribe(TypeProjectUpdated, "projects", projects.handle)
	bus.Subscribe(TypeUserUpdated, "users", users.handle)

	bus.Publish(context.Background(), BasicProjectUpdate(id.NewProjectID()))

	require.Eventually(t, func() bool { return projects.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, users.len())
}

func TestBus_PublishNilPanics(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	assert.Panics(t, func() {
		bus.Publish(context.Background(), nil)
	})
}

func TestBus_PublishDoesNotWaitForHandlers(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	release := make(chan struct{})
	bus.Subscribe(TypeTaskOverdue, "slow", func(context.Context, Event) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		bus.Publish(context.Background(), TaskOverdue{TaskID: id.NewTaskID()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on handler execution")
	}
	close(release)
}

func TestBus_CloseDuringConcurrentPublish(t *testing.T) {
	bus := NewBus(testLogger())

	bus.Subscribe(TypeProjectUpdated, "sink", func(context.Context, Event) error {
		return nil
	})

	// Publishers racing shutdown must either deliver or hit the dropped-event
	// path; sending on a closed queue would panic the publisher goroutine.
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 200; j++ {
				bus.Publish(context.Background(), BasicProjectUpdate(id.NewProjectID()))
			}
		}()
	}

	close(start)
	bus.Close()
	wg.Wait()
}

func TestBus_CloseDrainsQueuedEvents(t *testing.T) {
	bus := NewBus(testLogger())

	col := &collector{}
	bus.Subscribe(TypeProjectUpdated, "collector", col.handle)

	for i := 0; i < 10; i++ {
		bus.Publish(context.Background(), BasicProjectUpdate(id.NewProjectID()))
	}
	bus.Close()

	assert.Equal(t, 10, col.len())
}

func TestBus_HandlerSeesRequestValuesWithoutCancellation(t *testing.T) {
	bus := NewBus(testLogger())
	defer bus.Close()

	errs := make(chan error, 1)
	bus.Subscribe(TypeProjectUpdated, "ctx-check", func(ctx context.Context, _ Event) error {
		errs <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // request context is already gone when the handler runs
	bus.Publish(ctx, BasicProjectUpdate(id.NewProjectID()))

	select {
	case err := <-errs:
		assert.NoError(t, err, "handler context must not inherit publisher cancellation")
	case <-time.After(time.Second):
		t.Fatal("handler not invoked")
	}
}

package events

import (
	"sync"
	"testing"
	"time"

	"chatd/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatEvent(id int64, members ...int64) Event {
	return NewChat{Chat: models.Chat{ID: id, Type: models.ChatGroup, Members: members}}
}

func msgEvent(id int64) Event {
	return NewMessage{Message: models.Message{ID: id, ChatID: 1, SenderID: 1, Content: "x"}}
}

func recv(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case ev := <-sub.C():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered in time")
		return nil
	}
}

func TestGetOrCreateIsAtomic(t *testing.T) {
	reg := NewRegistry(8, 0)

	const goroutines = 64
	channels := make([]*UserChannel, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			channels[i] = reg.GetOrCreate(42)
		}(i)
	}
	wg.Wait()

	// A check-then-create race must never split delivery across two
	// channels for the same user.
	for i := 1; i < goroutines; i++ {
		require.Same(t, channels[0], channels[i])
	}

	users, _ := reg.Stats()
	assert.Equal(t, 1, users)
}

func TestPublishWithoutChannelIsNoop(t *testing.T) {
	reg := NewRegistry(8, 0)
	pub := NewPublisher(reg)

	// Nobody home: completes without error and creates nothing.
	pub.Publish(chatEvent(1, 7), []int64{7})
	users, _ := reg.Stats()
	assert.Equal(t, 0, users)

	// A later subscriber must not see the earlier event.
	sub := reg.Subscribe(7)
	defer sub.Close()
	select {
	case ev := <-sub.C():
		t.Fatalf("retroactive delivery of %v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	// But it receives events published after subscribing.
	pub.Publish(msgEvent(2), []int64{7})
	assert.Equal(t, "NewMessage", recv(t, sub).Name())
}

func TestBroadcastToAllSessionsOfUser(t *testing.T) {
	reg := NewRegistry(8, 0)
	pub := NewPublisher(reg)

	first := reg.Subscribe(1)
	defer first.Close()
	second := reg.Subscribe(1)
	defer second.Close()

	pub.Publish(msgEvent(1), []int64{1})

	assert.Equal(t, "NewMessage", recv(t, first).Name())
	assert.Equal(t, "NewMessage", recv(t, second).Name())
}

func TestRoutingIsolation(t *testing.T) {
	reg := NewRegistry(8, 0)
	pub := NewPublisher(reg)

	a := reg.Subscribe(1)
	defer a.Close()
	b := reg.Subscribe(2)
	defer b.Close()
	c := reg.Subscribe(3)
	defer c.Close()

	pub.Publish(chatEvent(10, 1, 2), []int64{1, 2})

	assert.Equal(t, "NewChat", recv(t, a).Name())
	assert.Equal(t, "NewChat", recv(t, b).Name())
	select {
	case ev := <-c.C():
		t.Fatalf("user 3 must not observe %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishOrderPreserved(t *testing.T) {
	reg := NewRegistry(64, 0)
	pub := NewPublisher(reg)

	sub := reg.Subscribe(1)
	defer sub.Close()

	for i := int64(1); i <= 10; i++ {
		pub.Publish(msgEvent(i), []int64{1})
	}
	for i := int64(1); i <= 10; i++ {
		ev := recv(t, sub).(NewMessage)
		assert.Equal(t, i, ev.Message.ID)
	}
}

func TestOverflowDropsOldestAndFlagsGap(t *testing.T) {
	reg := NewRegistry(4, 0)
	pub := NewPublisher(reg)

	sub := reg.Subscribe(1)
	defer sub.Close()

	// Burst past the buffer without reading: publishers must not block,
	// the consumer must stay live.
	for i := int64(1); i <= 10; i++ {
		pub.Publish(msgEvent(i), []int64{1})
	}

	assert.True(t, sub.TakeGap(), "drops must be observable as a gap")
	assert.False(t, sub.TakeGap(), "gap flag resets once taken")

	// The survivors are the newest events, still in order.
	var got []int64
	for i := 0; i < 4; i++ {
		got = append(got, recv(t, sub).(NewMessage).Message.ID)
	}
	assert.Equal(t, []int64{7, 8, 9, 10}, got)
}

func TestCloseDoesNotAffectOtherSubscribers(t *testing.T) {
	reg := NewRegistry(8, 0)
	pub := NewPublisher(reg)

	gone := reg.Subscribe(1)
	stay := reg.Subscribe(1)
	defer stay.Close()
	other := reg.Subscribe(2)
	defer other.Close()

	gone.Close()
	gone.Close() // idempotent

	pub.Publish(msgEvent(1), []int64{1, 2})
	assert.Equal(t, "NewMessage", recv(t, stay).Name())
	assert.Equal(t, "NewMessage", recv(t, other).Name())

	_, subscribers := reg.Stats()
	assert.Equal(t, 2, subscribers)
}

func TestChannelSurvivesLastUnsubscribeWithoutEviction(t *testing.T) {
	reg := NewRegistry(8, 0)

	uc := reg.GetOrCreate(1)
	sub := uc.Subscribe()
	sub.Close()

	// Grace zero: the entry lives for the process lifetime.
	got, ok := reg.Lookup(1)
	require.True(t, ok)
	assert.Same(t, uc, got)
}

func TestJanitorEvictsIdleChannels(t *testing.T) {
	reg := NewRegistry(8, 20*time.Millisecond)
	defer reg.Close()

	sub := reg.Subscribe(1)
	busy := reg.Subscribe(2)
	defer busy.Close()
	sub.Close()

	require.Eventually(t, func() bool {
		_, ok := reg.Lookup(1)
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "idle channel should be evicted")

	// The channel with a live subscriber stays.
	_, ok := reg.Lookup(2)
	assert.True(t, ok)
}

func TestSubscribeAfterEvictionReattachesToLiveChannel(t *testing.T) {
	reg := NewRegistry(8, time.Hour)
	defer reg.Close()
	pub := NewPublisher(reg)

	// Leave an idle entry behind, then grab a handle to it before the
	// eviction sweep runs.
	reg.Subscribe(1).Close()
	stale := reg.GetOrCreate(1)
	reg.evictIdle(time.Now().Add(2 * time.Hour))

	_, ok := reg.Lookup(1)
	require.False(t, ok, "idle channel should be evicted")

	// Attaching through the stale handle must land on a channel the
	// registry can still route to.
	sub := stale.Subscribe()
	defer sub.Close()

	live, ok := reg.Lookup(1)
	require.True(t, ok)
	assert.NotSame(t, stale, live)

	pub.Publish(msgEvent(1), []int64{1})
	assert.Equal(t, "NewMessage", recv(t, sub).Name())
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	reg := NewRegistry(DefaultCapacity, 0)
	pub := NewPublisher(reg)

	var wg sync.WaitGroup
	for u := int64(1); u <= 8; u++ {
		wg.Add(2)
		go func(u int64) {
			defer wg.Done()
			sub := reg.Subscribe(u)
			defer sub.Close()
			for i := 0; i < 50; i++ {
				select {
				case <-sub.C():
				case <-time.After(10 * time.Millisecond):
				}
			}
		}(u)
		go func(u int64) {
			defer wg.Done()
			for i := int64(0); i < 100; i++ {
				pub.Publish(msgEvent(i), []int64{u})
			}
		}(u)
	}
	wg.Wait()
}

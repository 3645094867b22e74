package events

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
)

// Listener holds the LISTEN subscription against Postgres and feeds decoded
// events into the publisher. One Listener runs per process; pq reconnects
// with backoff on its own and notifications raised while disconnected are
// lost, which clients must tolerate.
type Listener struct {
	pql     *pq.Listener
	pub     *Publisher
	healthy atomic.Bool
	done    chan struct{}
}

// NewListener connects to the database's notification channels and starts
// dispatching. Call Close on shutdown.
func NewListener(connStr string, pub *Publisher) (*Listener, error) {
	l := &Listener{pub: pub, done: make(chan struct{})}

	l.pql = pq.NewListener(connStr, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected, pq.ListenerEventReconnected:
			l.healthy.Store(true)
			log.Println("[EVENTS] listener connected")
		case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
			l.healthy.Store(false)
			log.Printf("[EVENTS] listener connection lost: %v", err)
		}
	})

	for _, ch := range []string{ChannelChatUpdated, ChannelMessageCreated} {
		if err := l.pql.Listen(ch); err != nil {
			l.pql.Close()
			return nil, err
		}
	}

	go l.run()
	return l, nil
}

// Healthy reports whether the notification subscription is currently up.
// The listener is the only path events take to clients, so /health exposes it.
func (l *Listener) Healthy() bool {
	return l.healthy.Load()
}

func (l *Listener) Close() {
	close(l.done)
	l.pql.Close()
}

func (l *Listener) run() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-l.done:
			return
		case n := <-l.pql.Notify:
			if n == nil {
				// pq signals a re-established connection with a nil
				// notification; anything raised in between is gone.
				log.Println("[EVENTS] listener reconnected, possible gap")
				continue
			}
			l.dispatch(n)
		case <-ping.C:
			go l.pql.Ping()
		}
	}
}

func (l *Listener) dispatch(n *pq.Notification) {
	var (
		ds  []Delivery
		err error
	)
	switch n.Channel {
	case ChannelChatUpdated:
		ds, err = DecodeChatUpdated([]byte(n.Extra))
	case ChannelMessageCreated:
		ds, err = DecodeMessageCreated([]byte(n.Extra))
	default:
		log.Printf("[EVENTS] notification on unexpected channel %q", n.Channel)
		return
	}
	if err != nil {
		// Malformed payloads are dropped; the subscription stays up.
		log.Printf("[EVENTS] drop notification: %v", err)
		return
	}
	for _, d := range ds {
		l.pub.Publish(d.Event, d.Recipients)
	}
}

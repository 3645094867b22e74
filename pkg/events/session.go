package events

import (
	"log"
	"time"
)

// DefaultHeartbeat is the idle keep-alive interval.
const DefaultHeartbeat = time.Second

// Sink is the transport side of a streaming session: SSE and websocket
// adapters implement it. A sink error ends the session.
type Sink interface {
	// WriteFrame sends one named frame with a serialized entity body.
	WriteFrame(name string, data []byte) error
	// WriteHeartbeat sends a liveness frame carrying no payload.
	WriteHeartbeat() error
}

// Stream pumps a subscriber's events into the sink, interleaving heartbeats,
// until the sink fails or done is closed. When the subscriber lost events
// under backpressure a "resync" marker frame is emitted first, so the client
// knows to re-fetch authoritative state. The subscriber is not closed here;
// callers defer that so release happens on every exit path.
func Stream(sub *Subscriber, heartbeat time.Duration, sink Sink, done <-chan struct{}) error {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case ev := <-sub.C():
			if sub.TakeGap() {
				if err := sink.WriteFrame("resync", []byte("{}")); err != nil {
					return err
				}
			}
			data, err := ev.Payload()
			if err != nil {
				log.Printf("[EVENTS] encode %s: %v", ev.Name(), err)
				continue
			}
			if err := sink.WriteFrame(ev.Name(), data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := sink.WriteHeartbeat(); err != nil {
				return err
			}
		}
	}
}

// Package fabric broadcasts audio kernel StateChange events to N dynamically
// subscribed UDP listeners (spec.md §4.6 "State Distribution Fabric").
//
// The design is taken verbatim from spec.md's own design note, which in turn
// cites original_source/core/benches/udp.rs's MockSender benchmark: a
// reader-writer lock over the subscriber list (readers never block each
// other on the hot broadcast path; only register/unregister take the
// write-lock) plus a buffer pool so the common case allocates nothing.
package fabric

import (
	"bytes"
	"encoding/json"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
)

// Fabric owns one UDP socket and fans StateChange events out to every
// registered subscriber. The zero value is not usable; construct with New.
type Fabric struct {
	conn *net.UDPConn
	log  *logrus.Entry

	mu          sync.RWMutex // guards subscribers only; Broadcast holds just the read side while sending
	subscribers map[string]*net.UDPAddr

	pool sync.Pool // reusable *bytes.Buffer for event serialisation
}

// New binds an ephemeral UDP socket for broadcasting and returns a Fabric
// ready to accept subscribers.
func New(log *logrus.Entry) (*Fabric, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, errors.Wrap(err, "binding state fabric UDP socket")
	}
	return &Fabric{
		conn:        conn,
		log:         log,
		subscribers: make(map[string]*net.UDPAddr),
		pool: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}, nil
}

// LocalAddr reports the socket address events are sent from.
func (f *Fabric) LocalAddr() net.Addr {
	return f.conn.LocalAddr()
}

// Subscribe registers addr (host:port) to receive every future Broadcast.
// This is the implementation of the RPC surface's register-udp-listener verb
// (spec.md §6).
func (f *Fabric) Subscribe(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return errors.Wrapf(err, "resolving subscriber address %q", addr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[udpAddr.String()] = udpAddr
	return nil
}

// Unsubscribe removes addr from the subscriber list, if present.
func (f *Fabric) Unsubscribe(addr string) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers, udpAddr.String())
}

// SubscriberCount reports how many addresses are currently registered.
func (f *Fabric) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Broadcast serialises sc once and sends it to every current subscriber
// under a single read-lock (spec.md §4.6 "iterates the subscriber list under
// a read-lock, issuing one datagram per subscriber"). Best-effort: a failed
// write to one subscriber is logged and does not block delivery to others.
func (f *Fabric) Broadcast(sc kernel.StateChange) {
	buf, _ := f.pool.Get().(*bytes.Buffer)
	buf.Reset()
	defer f.pool.Put(buf)

	if err := json.NewEncoder(buf).Encode(toWire(sc)); err != nil {
		f.log.Errorf("fabric: failed to encode state change %v: %v", sc.Kind, err)
		return
	}
	payload := buf.Bytes()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, addr := range f.subscribers {
		if _, err := f.conn.WriteToUDP(payload, addr); err != nil {
			f.log.Warnf("fabric: send to %s failed: %v", addr, err)
		}
	}
}

// Close releases the underlying UDP socket.
func (f *Fabric) Close() error {
	return f.conn.Close()
}

// wireEvent is the JSON form of a StateChange put on the wire; subscribers
// decode this and, per spec.md §4.6, treat TrackChanged/QueueChanged as a
// cue to re-query the kernel rather than trust the payload.
type wireEvent struct {
	Kind       string  `json:"kind"`
	Volume     float32 `json:"volume,omitempty"`
	TrackID    *string `json:"track_id,omitempty"`
	RepeatMode string  `json:"repeat_mode,omitempty"`
	SeekMillis int64   `json:"seek_millis,omitempty"`
	Status     string  `json:"status,omitempty"`
}

func toWire(sc kernel.StateChange) wireEvent {
	w := wireEvent{Kind: sc.Kind.String()}
	switch sc.Kind {
	case kernel.ChangeVolumeChanged:
		w.Volume = sc.Volume
	case kernel.ChangeTrackChanged:
		if sc.TrackID != nil {
			id := sc.TrackID.String()
			w.TrackID = &id
		}
	case kernel.ChangeRepeatModeChanged:
		w.RepeatMode = sc.RepeatMode.String()
	case kernel.ChangeSeeked:
		w.SeekMillis = sc.SeekAmount.Milliseconds()
	case kernel.ChangeStatusChanged:
		w.Status = sc.Status.String()
	}
	return w
}

package fabric

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/AnthonyMichaelTDM/mecomp/internal/kernel"
)

func listenOnLoopback(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listening on loopback: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastDeliversToSubscriber(t *testing.T) {
	f, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	sub := listenOnLoopback(t)
	if err := f.Subscribe(sub.LocalAddr().String()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := f.SubscriberCount(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	f.Broadcast(kernel.StateChange{Kind: kernel.ChangeStatusChanged, Status: kernel.StatusPlaying})

	buf := make([]byte, 1024)
	sub.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := sub.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var got wireEvent
	if err := json.Unmarshal(buf[:n], &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != "StatusChanged" || got.Status != "Playing" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	f, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	sub := listenOnLoopback(t)
	addr := sub.LocalAddr().String()
	if err := f.Subscribe(addr); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	f.Unsubscribe(addr)

	if got := f.SubscriberCount(); got != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe, got %d", got)
	}

	f.Broadcast(kernel.StateChange{Kind: kernel.ChangeMuted})

	sub.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 1024)
	if _, _, err := sub.ReadFromUDP(buf); err == nil {
		t.Fatalf("expected no datagram after unsubscribe, but received one")
	}
}

func TestBroadcastToNoSubscribersIsNoOp(t *testing.T) {
	f, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	f.Broadcast(kernel.StateChange{Kind: kernel.ChangeUnmuted})
}

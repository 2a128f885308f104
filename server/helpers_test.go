package server

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"sokoarena/arena"
)

// fakeSender 记录房间推送的消息
type fakeSender struct {
	msgs   chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeSender() *fakeSender {
	return &fakeSender{msgs: make(chan []byte, 256), closed: make(chan struct{})}
}

func (s *fakeSender) Enqueue(b []byte) {
	select {
	case s.msgs <- b:
	default:
	}
}

func (s *fakeSender) Close() { s.once.Do(func() { close(s.closed) }) }

// expect 读取直到出现指定类型的消息
func (s *fakeSender) expect(t *testing.T, typ string) outMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case b := <-s.msgs:
			var m outMessage
			if err := json.Unmarshal(b, &m); err != nil {
				t.Fatalf("decode %s: %v", b, err)
			}
			if m.Type == typ {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", typ)
			return outMessage{}
		}
	}
}

func (s *fakeSender) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-s.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("sender not closed")
	}
}

// testConfig 空场地、无补充的小房间
func testConfig(width, height int) Config {
	cfg := DefaultConfig()
	cfg.CheckInvariants = true
	a := arena.DefaultConfig()
	a.Width, a.Height = width, height
	a.Seed = 7
	a.Walls, a.Crates, a.Bombs, a.Coins, a.Lasers = 0, 0, 0, 0, 0
	a.BombSpawn = arena.SpawnRule{}
	a.CoinSpawn = arena.SpawnRule{}
	a.LaserSpawn = arena.SpawnRule{}
	cfg.Arena = a
	return cfg
}

func startRoom(t *testing.T, cfg Config) *Room {
	t.Helper()
	r, err := NewRoom("test", cfg, nil)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	r.StartTicker()
	t.Cleanup(func() { _ = r.Stop() })
	return r
}

func joinInput(pid PlayerID, name string) Input {
	return Input{PlayerID: pid, Intent: arena.Intent{
		Kind:    arena.IntentJoin,
		Session: string(pid),
		Profile: arena.Profile{Name: name, Color: "0f0"},
	}}
}

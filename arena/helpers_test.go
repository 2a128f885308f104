package arena

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// emptyConfig 没有任何初始实体、补充概率为 0 的小世界
func emptyConfig(width, height int) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = width, height
	cfg.Seed = 42
	cfg.Walls, cfg.Crates, cfg.Bombs, cfg.Coins, cfg.Lasers = 0, 0, 0, 0, 0
	cfg.BombSpawn = SpawnRule{}
	cfg.CoinSpawn = SpawnRule{}
	cfg.LaserSpawn = SpawnRule{}
	return cfg
}

func newTestWorld(t *testing.T, width, height int) (*World, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	w, err := New(emptyConfig(width, height), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, clock
}

// putPlayer 在指定格放置朝北的玩家
func putPlayer(t *testing.T, w *World, id string, x, y int) *Player {
	t.Helper()
	p := &Player{Item: Item{ID: id, Pos: Coord{x, y}}, Profile: Profile{Name: id, Color: "f00"}}
	w.place(p)
	return p
}

func mustVerify(t *testing.T, w *World) {
	t.Helper()
	if err := w.Verify(); err != nil {
		t.Fatal(err)
	}
}

func at(x, y int) Coord { return Coord{X: x, Y: y} }

func kindsAt(w *World, c Coord) map[Kind]int {
	out := map[Kind]int{}
	for _, e := range w.ItemsAt(c) {
		out[e.Kind()]++
	}
	return out
}

func drainKinds(w *World) map[EventKind]int {
	out := map[EventKind]int{}
	for _, e := range w.DrainEvents() {
		out[e.Kind]++
	}
	return out
}

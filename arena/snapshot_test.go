package arena

import (
	"encoding/json"
	"testing"
)

func TestLeaderboardSharesRanks(t *testing.T) {
	players := map[string]*Player{
		"a": {Item: Item{ID: "a"}, Profile: Profile{Name: "bob"}, Coins: 5},
		"b": {Item: Item{ID: "b"}, Profile: Profile{Name: "Alice"}, Coins: 5},
		"c": {Item: Item{ID: "c"}, Profile: Profile{Name: "carl"}, Coins: 2},
		"d": {Item: Item{ID: "d"}, Profile: Profile{Name: "dan"}, Coins: 9},
	}
	got := Leaderboard(players)
	want := []struct {
		id   string
		rank int
	}{{"d", 1}, {"b", 2}, {"a", 2}, {"c", 4}}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, wnt := range want {
		if got[i].ID != wnt.id || got[i].Rank != wnt.rank {
			t.Errorf("row %d = %s/%d, want %s/%d", i, got[i].ID, got[i].Rank, wnt.id, wnt.rank)
		}
	}
}

func TestSnapshotProjection(t *testing.T) {
	w, _ := newTestWorld(t, 6, 4)
	p := putPlayer(t, w, "p", 1, 1)
	p.Rot = -1
	p.Carried = &Bomb{Item: Item{ID: "held"}}
	b := w.addBomb(at(0, 1))
	l := w.addLaser(at(5, 0), South)
	w.fire(l)
	w.settle()
	w.Move("p", West)

	s := w.Snapshot()
	if s.Width != 6 || s.Height != 4 {
		t.Fatalf("dims %dx%d", s.Width, s.Height)
	}
	if len(s.Players) != 1 || len(s.Bombs) != 1 || len(s.Lasers) != 1 || len(s.Beams) != 3 {
		t.Fatalf("registries: %d players %d bombs %d lasers %d beams", len(s.Players), len(s.Bombs), len(s.Lasers), len(s.Beams))
	}
	pv := s.Players[0]
	if pv.ID != "p" || pv.X != 1 || pv.Y != 1 || pv.Rot != -1 || pv.Dir != West || pv.Held != "Bomb" || pv.Pickup != "Bomb" {
		t.Fatalf("player view = %+v", pv)
	}
	if s.Bombs[0].ID != b.ID || s.Bombs[0].Hot {
		t.Fatalf("bomb view = %+v", s.Bombs[0])
	}
	if !s.Lasers[0].Firing || s.Lasers[0].Dir != South {
		t.Fatalf("laser view = %+v", s.Lasers[0])
	}
	for i := 1; i < len(s.Beams); i++ {
		if s.Beams[i-1].ID >= s.Beams[i].ID {
			t.Fatal("beams not sorted by id")
		}
	}
	if len(s.Registries()) != 8 {
		t.Fatal("registries map incomplete")
	}
	if _, err := json.Marshal(s); err != nil {
		t.Fatal(err)
	}
}

package arena

import (
	"errors"
	"testing"
)

func TestMoveBoundaryScenario(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 2, 2)

	w.PickUp("p")
	for i := 0; i < 3; i++ {
		w.Move("p", East)
		if p.Facing() != East {
			t.Fatalf("move %d: facing = %v, want E", i, p.Facing())
		}
	}
	if p.Pos != at(4, 2) {
		t.Fatalf("pos = %v, want (4,2)", p.Pos)
	}
	if p.Rot != 1 {
		t.Fatalf("rot = %d, want 1", p.Rot)
	}
	mustVerify(t, w)
}

func TestMoveIntoWallTurnsOnly(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 2, 2)
	w.addWall(at(1, 2))

	w.Move("p", West)
	if p.Pos != at(2, 2) {
		t.Fatalf("pos = %v, want unchanged", p.Pos)
	}
	if p.Facing() != West || p.Rot != -1 {
		t.Fatalf("facing = %v rot = %d, want W/-1", p.Facing(), p.Rot)
	}
	mustVerify(t, w)
}

func TestMovePushesCrate(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 1, 2)
	c := w.addCrate(at(2, 2))

	w.Move("p", East)
	if p.Pos != at(2, 2) || c.Pos != at(3, 2) {
		t.Fatalf("player %v crate %v, want (2,2)/(3,2)", p.Pos, c.Pos)
	}
	mustVerify(t, w)
}

func TestPushRejected(t *testing.T) {
	cases := []struct {
		name    string
		blocker func(w *World)
		crateX  int
	}{
		{"wall", func(w *World) { w.addWall(at(3, 2)) }, 2},
		{"crate", func(w *World) { w.addCrate(at(3, 2)) }, 2},
		{"bomb", func(w *World) { w.addBomb(at(3, 2)) }, 2},
		{"laser", func(w *World) { w.addLaser(at(3, 2), North) }, 2},
		{"boundary", func(w *World) {}, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := newTestWorld(t, 5, 5)
			p := putPlayer(t, w, "p", tc.crateX-1, 2)
			c := w.addCrate(at(tc.crateX, 2))
			tc.blocker(w)

			w.Move("p", East)
			if p.Pos != at(tc.crateX-1, 2) || c.Pos != at(tc.crateX, 2) {
				t.Fatalf("player %v crate %v moved", p.Pos, c.Pos)
			}
			mustVerify(t, w)
		})
	}
}

func TestPushOntoPlayerAllowed(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 0, 0)
	q := putPlayer(t, w, "q", 2, 0)
	c := w.addCrate(at(1, 0))

	w.Move("p", East)
	if c.Pos != at(2, 0) || p.Pos != at(1, 0) {
		t.Fatalf("crate %v player %v", c.Pos, p.Pos)
	}
	if q.Pos != at(2, 0) {
		t.Fatal("bystander moved")
	}
	mustVerify(t, w)
}

func TestMoveCollectsCoin(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 0, 0)
	w.addCoin(at(1, 0))

	w.Move("p", East)
	if p.Coins != 1 || len(w.coins) != 0 {
		t.Fatalf("coins = %d, registry = %d", p.Coins, len(w.coins))
	}
	if p.Pos != at(1, 0) {
		t.Fatalf("pos = %v", p.Pos)
	}
	mustVerify(t, w)
}

func TestCoinCollectedEvenWhenBlocked(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 0, 0)
	w.addCoin(at(1, 0))
	w.addCrate(at(1, 0))
	w.addWall(at(2, 0))

	w.Move("p", East)
	if p.Pos != at(0, 0) {
		t.Fatalf("pos = %v, want unchanged", p.Pos)
	}
	if p.Coins != 1 || len(w.coins) != 0 {
		t.Fatalf("coin not collected: coins=%d registry=%d", p.Coins, len(w.coins))
	}
	mustVerify(t, w)
}

func TestMoveOntoBombBlockedButPending(t *testing.T) {
	w, _ := newTestWorld(t, 6, 6)
	p := putPlayer(t, w, "p", 2, 3)
	b := w.addBomb(at(3, 3))

	w.Move("p", East)
	if p.Pos != at(2, 3) {
		t.Fatalf("pos = %v, want unchanged", p.Pos)
	}
	if p.Pending != Entity(b) {
		t.Fatalf("pending = %v, want bomb", p.Pending)
	}

	w.Move("p", North)
	if p.Pending != nil {
		t.Fatal("pending must be recalculated on a successful move")
	}
	mustVerify(t, w)
}

func TestPickUpBombAndRoundTrip(t *testing.T) {
	w, _ := newTestWorld(t, 6, 6)
	p := putPlayer(t, w, "p", 2, 3)
	b := w.addBomb(at(3, 3))
	l := w.addLaser(at(2, 2), South)

	w.Move("p", East)
	w.PickUp("p")
	if p.Carried != Entity(b) || p.Pending != nil {
		t.Fatalf("carried = %v pending = %v", p.Carried, p.Pending)
	}
	if _, ok := w.bombs[b.ID]; ok || w.index.Contains(b) {
		t.Fatal("picked bomb still on grid")
	}

	// 面向激光，再次拾取：炸弹落在脚下并成为候选
	w.Move("p", North)
	if p.Pending != Entity(l) {
		t.Fatalf("pending = %v, want laser", p.Pending)
	}
	w.PickUp("p")
	if p.Carried != Entity(l) || p.Pending != Entity(b) {
		t.Fatalf("after swap carried = %v pending = %v", p.Carried, p.Pending)
	}
	if b.Pos != p.Pos || w.bombs[b.ID] != b {
		t.Fatalf("dropped bomb at %v, registered=%v", b.Pos, w.bombs[b.ID] == b)
	}
	if _, ok := w.lasers[l.ID]; ok {
		t.Fatal("picked laser still registered")
	}
	mustVerify(t, w)

	// 立即再次拾取恢复原状态
	w.PickUp("p")
	if p.Carried != Entity(b) || p.Pending != Entity(l) {
		t.Fatalf("round trip carried = %v pending = %v", p.Carried, p.Pending)
	}
	mustVerify(t, w)
}

func TestPickUpWithNothingIsNoop(t *testing.T) {
	w, _ := newTestWorld(t, 4, 4)
	p := putPlayer(t, w, "p", 1, 1)
	w.PickUp("p")
	if p.Carried != nil || p.Pending != nil {
		t.Fatal("state changed")
	}
	w.PickUp("ghost")
	mustVerify(t, w)
}

func TestPickUpStalePendingIgnored(t *testing.T) {
	w, _ := newTestWorld(t, 6, 6)
	p := putPlayer(t, w, "p", 0, 0)
	q := putPlayer(t, w, "q", 2, 0)
	b := w.addBomb(at(1, 0))

	w.Move("p", East)
	w.Move("q", West)
	w.PickUp("q")
	if q.Carried != Entity(b) {
		t.Fatal("q should hold the bomb")
	}
	w.PickUp("p")
	if p.Carried != nil {
		t.Fatal("p picked a bomb that is no longer on the grid")
	}
	mustVerify(t, w)
}

func TestPickUpDropRejectedOnSolidCell(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	p := putPlayer(t, w, "p", 1, 1)
	held := &Bomb{Item: Item{ID: "held"}}
	p.Carried = held
	w.addCrate(at(1, 1))

	w.PickUp("p")
	w.UseItem("p")
	if p.Carried != Entity(held) || w.index.Contains(held) {
		t.Fatal("item dropped onto a solid cell")
	}
	mustVerify(t, w)
}

func TestJoinAndLeave(t *testing.T) {
	w, _ := newTestWorld(t, 4, 4)
	if err := w.Join("s1", Profile{Name: "Ann", Color: "0f0"}); err != nil {
		t.Fatal(err)
	}
	p, ok := w.Player("s1")
	if !ok || p.Coins != 0 || p.Profile.Name != "Ann" {
		t.Fatalf("player = %+v", p)
	}
	if w.index.Count(p.Pos) != 1 {
		t.Fatal("joined onto an occupied cell")
	}
	mustVerify(t, w)

	w.Leave("s1")
	w.Leave("s1")
	if _, ok := w.Player("s1"); ok || w.index.Len() != 0 {
		t.Fatal("player not removed")
	}
	if got := drainKinds(w)[EventLeft]; got != 1 {
		t.Fatalf("left events = %d, want 1", got)
	}
}

func TestJoinWorldFull(t *testing.T) {
	w, _ := newTestWorld(t, 1, 1)
	w.addWall(at(0, 0))
	err := w.Join("s1", Profile{})
	if !errors.Is(err, ErrWorldFull) {
		t.Fatalf("err = %v, want ErrWorldFull", err)
	}
	if _, ok := w.Player("s1"); ok {
		t.Fatal("player added despite error")
	}
}

func TestRejoinPlacesFreshPlayer(t *testing.T) {
	w, _ := newTestWorld(t, 6, 6)
	p := putPlayer(t, w, "p", 0, 0)
	p.Coins = 5
	if err := w.Rejoin("p", Profile{Name: "again"}); err != nil {
		t.Fatal(err)
	}
	np, ok := w.Player("p")
	if !ok || np == p || np.Coins != 0 || np.Profile.Name != "again" {
		t.Fatalf("rejoin = %+v", np)
	}
	mustVerify(t, w)
}

func TestInvalidCommandsAreNoops(t *testing.T) {
	w, _ := newTestWorld(t, 4, 4)
	p := putPlayer(t, w, "p", 1, 1)
	w.Move("ghost", East)
	w.UseItem("ghost")
	w.UseItem("p")
	w.Move("p", Direction(9))
	if err := w.Apply(Intent{Kind: "dance", Session: "p"}); err != nil {
		t.Fatal(err)
	}
	if p.Pos != at(1, 1) || p.Rot != 0 {
		t.Fatalf("player changed: %+v", p)
	}
	mustVerify(t, w)
}

func TestApplyDispatch(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	if err := w.Apply(Intent{Kind: IntentJoin, Session: "s", Profile: Profile{Name: "s"}}); err != nil {
		t.Fatal(err)
	}
	p, _ := w.Player("s")
	before := p.Rot
	_ = w.Apply(Intent{Kind: IntentMove, Session: "s", Dir: Direction(mod4(before + 1))})
	if p.Rot != before+1 {
		t.Fatalf("rot = %d, want %d", p.Rot, before+1)
	}
	_ = w.Apply(Intent{Kind: IntentLeave, Session: "s"})
	if _, ok := w.Player("s"); ok {
		t.Fatal("leave not applied")
	}
}

func TestWalkIntoBeamEliminates(t *testing.T) {
	w, _ := newTestWorld(t, 5, 5)
	l := w.addLaser(at(0, 2), East)
	w.fire(l)
	w.settle()
	p := putPlayer(t, w, "p", 2, 1)
	p.Coins = 3

	w.Move("p", South)
	if _, ok := w.Player("p"); ok {
		t.Fatal("player survived the beam")
	}
	if kindsAt(w, at(2, 2))[KindExplosion] != 1 {
		t.Fatal("no explosion at elimination cell")
	}
	evs := w.DrainEvents()
	if len(evs) != 1 || evs[0].Kind != EventEliminated || evs[0].Coins != 3 || evs[0].Cause != CauseBeam {
		t.Fatalf("events = %+v", evs)
	}
	mustVerify(t, w)
}

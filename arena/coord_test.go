package arena

import "testing"

func TestTurnStep(t *testing.T) {
	cases := []struct {
		rot  int
		dir  Direction
		want int
	}{
		{0, North, 0},
		{0, East, 1},
		{0, South, 2},
		{0, West, -1},
		{1, North, -1},
		{3, North, 1},
		{-1, North, 1},
		{-1, East, 2},
		{5, East, 0},
		{6, West, 1},
	}
	for _, tc := range cases {
		if got := turnStep(tc.rot, tc.dir); got != tc.want {
			t.Errorf("turnStep(%d, %v) = %d, want %d", tc.rot, tc.dir, got, tc.want)
		}
	}
}

func TestDirectionVector(t *testing.T) {
	start := at(2, 2)
	want := map[Direction]Coord{North: at(2, 1), East: at(3, 2), South: at(2, 3), West: at(1, 2)}
	for d, c := range want {
		if got := start.Step(d); got != c {
			t.Errorf("%v: got %v, want %v", d, got, c)
		}
	}
	if Direction(7).Valid() || Direction(7).Vector() != (Coord{}) {
		t.Error("invalid direction must have zero vector")
	}
}

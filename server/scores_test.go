package server

import (
	"context"
	"path/filepath"
	"testing"

	"sokoarena/arena"
)

func TestScoresRecordAndTop(t *testing.T) {
	s, err := OpenScores(filepath.Join(t.TempDir(), "db", "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	events := []arena.Event{
		{Kind: arena.EventLeft, Session: "a", Name: "alice", Coins: 3},
		{Kind: arena.EventEliminated, Session: "b", Name: "bob", Coins: 7, Cause: arena.CauseBlast},
		{Kind: arena.EventDetonated},
		{Kind: arena.EventEliminated, Session: "c", Name: "cy", Coins: 5, Cause: arena.CauseBeam},
	}
	recorded := 0
	for _, ev := range events {
		if s.Record("room-1", ev) {
			recorded++
		}
	}
	if recorded != 3 {
		t.Fatalf("recorded = %d, want 3", recorded)
	}
	s.Flush()

	rows, err := s.Top(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Name != "bob" || rows[0].Outcome != "blast" || rows[1].Name != "cy" || rows[1].Outcome != "beam" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestScoresNilAndClosed(t *testing.T) {
	var none *ScoreIndex
	if none.Record("r", arena.Event{Kind: arena.EventLeft}) {
		t.Fatal("nil index recorded")
	}
	none.Flush()
	if err := none.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := OpenScores(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if s.Record("r", arena.Event{Kind: arena.EventLeft, Session: "x"}) {
		t.Fatal("closed index recorded")
	}
	s.Flush()
}

func TestOpenScoresEmptyPath(t *testing.T) {
	if _, err := OpenScores(""); err == nil {
		t.Fatal("expected error")
	}
}

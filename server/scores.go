package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"sokoarena/arena"
)

// ScoreRow 一条成绩：玩家离开或被淘汰时的金币数
type ScoreRow struct {
	Room       string `json:"room"`
	Session    string `json:"session"`
	Name       string `json:"name"`
	Coins      int    `json:"coins"`
	Outcome    string `json:"outcome"` // left | blast | beam
	RecordedAt string `json:"recordedAt"`
}

// ScoreIndex 成绩的 SQLite 索引。写入由单独的协程串行完成，不阻塞房间协程。
type ScoreIndex struct {
	db *sql.DB

	ch     chan scoreReq
	wg     sync.WaitGroup
	mu     sync.RWMutex // 保护 ch 的发送与关闭
	closed bool
}

type scoreReq struct {
	row  ScoreRow
	done chan struct{} // 非 nil 时为屏障请求
}

func OpenScores(path string) (*ScoreIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room TEXT NOT NULL,
			session TEXT NOT NULL,
			name TEXT NOT NULL,
			coins INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS scores_coins ON scores(coins DESC);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init scores db: %w", err)
		}
	}

	s := &ScoreIndex{db: db, ch: make(chan scoreReq, 4096)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

// Record 记录离开/淘汰事件；其他事件忽略。通道满时丢弃并返回 false。
func (s *ScoreIndex) Record(room string, ev arena.Event) bool {
	if s == nil {
		return false
	}
	outcome := ""
	switch ev.Kind {
	case arena.EventLeft:
		outcome = "left"
	case arena.EventEliminated:
		outcome = string(ev.Cause)
	default:
		return false
	}
	row := ScoreRow{
		Room:       room,
		Session:    ev.Session,
		Name:       ev.Name,
		Coins:      ev.Coins,
		Outcome:    outcome,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- scoreReq{row: row}:
		return true
	default:
		Log.Warnf("scores: queue full, dropping %s/%s", room, ev.Session)
		return false
	}
}

// Flush 等待此前提交的写入全部完成
func (s *ScoreIndex) Flush() {
	if s == nil {
		return
	}
	done := make(chan struct{})
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return
	}
	s.ch <- scoreReq{done: done}
	s.mu.RUnlock()
	<-done
}

// Top 按金币降序返回前 limit 条成绩
func (s *ScoreIndex) Top(ctx context.Context, limit int) ([]ScoreRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT room, session, name, coins, outcome, recorded_at FROM scores ORDER BY coins DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.Room, &r.Session, &r.Name, &r.Coins, &r.Outcome, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ScoreIndex) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.wg.Wait()
	return s.db.Close()
}

func (s *ScoreIndex) loop() {
	for req := range s.ch {
		if req.done != nil {
			close(req.done)
			continue
		}
		r := req.row
		if _, err := s.db.Exec(
			`INSERT INTO scores(room, session, name, coins, outcome, recorded_at) VALUES(?,?,?,?,?,?)`,
			r.Room, r.Session, r.Name, r.Coins, r.Outcome, r.RecordedAt); err != nil {
			Log.Errorf("scores: insert %s/%s: %v", r.Room, r.Session, err)
		}
	}
}

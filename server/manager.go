package server

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
)

// RoomManager 管理多个房间的生命周期；房间之间没有共享状态
type RoomManager struct {
	cfg    Config
	scores *ScoreIndex

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRoomManager scores 可为 nil（不记录成绩）
func NewRoomManager(cfg Config, scores *ScoreIndex) *RoomManager {
	return &RoomManager{cfg: cfg, scores: scores, rooms: make(map[string]*Room)}
}

// GetOrCreateRoom 获取或创建房间，并确保开始推进
func (m *RoomManager) GetOrCreateRoom(id string) (*Room, error) {
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return r, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	r, err := NewRoom(id, m.cfg, m.scores)
	if err != nil {
		return nil, fmt.Errorf("create room %s: %w", id, err)
	}
	m.rooms[id] = r
	r.StartTicker()
	Log.Infof("room %s created (%dx%d)", id, m.cfg.Arena.Width, m.cfg.Arena.Height)
	return r, nil
}

// Room 只查找，不创建
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomIDs 已创建房间的 ID（有序）
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close 停止所有房间，然后关闭成绩索引
func (m *RoomManager) Close() error {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	var err error
	for _, r := range rooms {
		err = multierr.Append(err, r.Stop())
	}
	return multierr.Append(err, m.scores.Close())
}

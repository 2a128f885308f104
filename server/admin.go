package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sokoarena/arena"
)

type spawnConfig struct {
	Bomb  *arena.SpawnRule `json:"bomb,omitempty"`
	Coin  *arena.SpawnRule `json:"coin,omitempty"`
	Laser *arena.SpawnRule `json:"laser,omitempty"`
}

// HandleAdminConfig 提供房间补充规则的读取与热更新
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room, ok := m.lookup(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		var cur arena.Config
		room.Control(func(wd *arena.World) { cur = wd.Config() })
		writeJSON(w, map[string]any{
			"room":  room.ID,
			"width": cur.Width, "height": cur.Height,
			"spawn": spawnConfig{Bomb: &cur.BombSpawn, Coin: &cur.CoinSpawn, Laser: &cur.LaserSpawn},
		})
	case http.MethodPost:
		var body spawnConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		for _, rule := range []*arena.SpawnRule{body.Bomb, body.Coin, body.Laser} {
			if rule != nil && (rule.Cap < 0 || rule.Prob < 0 || rule.Prob > 1) {
				http.Error(w, "spawn rule out of range", http.StatusBadRequest)
				return
			}
		}
		var cur arena.Config
		room.Control(func(wd *arena.World) {
			c := wd.Config()
			if body.Bomb != nil {
				c.BombSpawn = *body.Bomb
			}
			if body.Coin != nil {
				c.CoinSpawn = *body.Coin
			}
			if body.Laser != nil {
				c.LaserSpawn = *body.Laser
			}
			wd.SetSpawnRules(c.BombSpawn, c.CoinSpawn, c.LaserSpawn)
			cur = wd.Config()
		})
		Log.Infof("config updated: room=%s bomb=%+v coin=%+v laser=%+v", room.ID, cur.BombSpawn, cur.CoinSpawn, cur.LaserSpawn)
		writeJSON(w, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	room, ok := m.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"room":    room.ID,
		"metrics": room.Metrics().Snapshot(),
	})
}

// HandleState 当前世界投影（调试用）
// GET /state?room=room-1
func (m *RoomManager) HandleState(w http.ResponseWriter, r *http.Request) {
	room, ok := m.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, room.State())
}

// HandleScores 历史成绩排行
// GET /scores?limit=10
func (m *RoomManager) HandleScores(w http.ResponseWriter, r *http.Request) {
	if m.scores == nil {
		http.Error(w, "scores disabled", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := m.scores.Top(r.Context(), limit)
	if err != nil {
		Log.Errorf("scores: %v", err)
		http.Error(w, "scores unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"scores": rows})
}

func (m *RoomManager) lookup(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = m.cfg.DefaultRoom
	}
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return nil, false
	}
	return room, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

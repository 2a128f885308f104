package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount       int64 // 定时器推进次数
	IntentsApplied  int64 // 已应用的意图数
	InvalidMessages int64 // 未通过校验的消息数
	QueueFull       int64 // 队列满、发送方需要等待的次数
	WorldFull       int64 // 找不到空格被拒绝的加入次数
	Detonations     int64
	Eliminations    int64
	Spawns          int64
	Broadcasts      int64 // 发出的增量/全量消息数
	TotalTickNs     int64 // 推进累计耗时（纳秒）
}

func (m *RoomMetrics) IncApplied() { atomic.AddInt64(&m.IntentsApplied, 1) }
func (m *RoomMetrics) IncInvalid() { atomic.AddInt64(&m.InvalidMessages, 1) }
func (m *RoomMetrics) IncQueueFull() { atomic.AddInt64(&m.QueueFull, 1) }
func (m *RoomMetrics) IncWorldFull() { atomic.AddInt64(&m.WorldFull, 1) }
func (m *RoomMetrics) IncDetonations() { atomic.AddInt64(&m.Detonations, 1) }
func (m *RoomMetrics) IncEliminations() { atomic.AddInt64(&m.Eliminations, 1) }
func (m *RoomMetrics) IncSpawns() { atomic.AddInt64(&m.Spawns, 1) }
func (m *RoomMetrics) IncBroadcasts() { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":       tick,
		"intents_applied":  atomic.LoadInt64(&m.IntentsApplied),
		"invalid_messages": atomic.LoadInt64(&m.InvalidMessages),
		"queue_full":       atomic.LoadInt64(&m.QueueFull),
		"world_full":       atomic.LoadInt64(&m.WorldFull),
		"detonations":      atomic.LoadInt64(&m.Detonations),
		"eliminations":     atomic.LoadInt64(&m.Eliminations),
		"spawns":           atomic.LoadInt64(&m.Spawns),
		"broadcasts":       atomic.LoadInt64(&m.Broadcasts),
		"avg_tick_ms":      avgMs,
	}
}

package server

import (
	"sokoarena/arena"
)

// Delta 两次投影之间的差异；实体按稳定 ID 比较，移动表现为 updated 而不是删除再创建
type Delta struct {
	Added       map[string][]arena.EntityView `json:"added,omitempty"`
	Updated     map[string][]arena.EntityView `json:"updated,omitempty"`
	Removed     map[string][]string           `json:"removed,omitempty"`
	Leaderboard []arena.Rank                  `json:"leaderboard,omitempty"`
}

// Empty 没有任何实体变化
func (d *Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Updated) == 0 && len(d.Removed) == 0
}

// Diff 计算 prev → cur 的增量；prev 为 nil 时全部视为新增
func Diff(prev, cur *arena.State) *Delta {
	d := &Delta{
		Added:   map[string][]arena.EntityView{},
		Updated: map[string][]arena.EntityView{},
		Removed: map[string][]string{},
	}
	var before map[string][]arena.EntityView
	if prev != nil {
		before = prev.Registries()
	}
	for name, views := range cur.Registries() {
		old := make(map[string]arena.EntityView, len(before[name]))
		for _, v := range before[name] {
			old[v.ID] = v
		}
		for _, v := range views {
			o, ok := old[v.ID]
			switch {
			case !ok:
				d.Added[name] = append(d.Added[name], v)
			case o != v:
				d.Updated[name] = append(d.Updated[name], v)
			}
			delete(old, v.ID)
		}
		// old 中剩余的即被移除；按原顺序输出
		for _, v := range before[name] {
			if _, gone := old[v.ID]; gone {
				d.Removed[name] = append(d.Removed[name], v.ID)
			}
		}
	}
	if prev == nil || !sameRanks(prev.Leaderboard, cur.Leaderboard) {
		d.Leaderboard = cur.Leaderboard
	}
	return d
}

func sameRanks(a, b []arena.Rank) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

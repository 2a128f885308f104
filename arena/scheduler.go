package arena

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// Replenish 一次补充调度：炸弹、金币、激光各自低于上限时以概率生成一个。
// 尽力而为，找不到空格时跳过该种类。返回生成数量。
func (w *World) Replenish() int {
	rules := []struct {
		kind  Kind
		rule  SpawnRule
		live  int
		spawn func(Coord)
	}{
		{KindBomb, w.cfg.BombSpawn, len(w.bombs), func(c Coord) { w.addBomb(c) }},
		{KindCoin, w.cfg.CoinSpawn, len(w.coins), func(c Coord) { w.addCoin(c) }},
		{KindLaser, w.cfg.LaserSpawn, len(w.lasers), func(c Coord) { w.addLaser(c, Direction(w.rng.Intn(4))) }},
	}
	n := 0
	for _, r := range rules {
		if r.live >= r.rule.Cap || w.rng.Float64() >= r.rule.Prob {
			continue
		}
		c, err := w.freeCell()
		if err != nil {
			if errors.Is(err, ErrWorldFull) {
				w.log.Debug("spawn skipped", zap.Stringer("kind", r.kind))
			}
			continue
		}
		r.spawn(c)
		w.emit(Event{Kind: EventSpawned, Pos: c, Entity: r.kind})
		n++
	}
	return n
}

// Tick 推进到 now：执行到期的定时回调（炸弹引爆、爆炸消失、激光停火）
func (w *World) Tick(now time.Time) int {
	return w.RunDue(now)
}

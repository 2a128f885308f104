package arena

import (
	"sort"

	"go.uber.org/zap"
)

// arm 点燃炸弹：失去可拾取资格，引信到期后引爆
func (w *World) arm(b *Bomb) {
	b.Armed = true
	b.DetonateAt = w.after(w.cfg.BombFuse, func() {
		if w.bombs[b.ID] == b {
			w.detonate(b)
		}
	})
}

// detonate 以工作队列处理连锁爆炸，每个炸弹最多引爆一次
func (w *World) detonate(first *Bomb) {
	queue := []*Bomb{first}
	seen := map[*Bomb]bool{first: true}
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if !w.remove(b) {
			continue
		}
		b.Armed = true
		center := b.Pos
		w.log.Debug("bomb detonated", zap.String("id", b.ID), zap.Int("x", center.X), zap.Int("y", center.Y))
		w.emit(Event{Kind: EventDetonated, Pos: center})

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				c := Coord{X: center.X + dx, Y: center.Y + dy}
				if !w.InBounds(c) {
					continue
				}
				for _, e := range w.index.ItemsAt(c) {
					switch v := e.(type) {
					case *Bomb:
						if !seen[v] {
							seen[v] = true
							v.Armed = true
							queue = append(queue, v)
						}
					case *Crate:
						w.remove(v)
						w.beamsDirty = true
					case *Laser:
						w.destroyLaser(v)
					case *Player:
						w.eliminate(v, CauseBlast, false)
					case *Coin, *Explosion:
						w.remove(v)
					case *Beam:
						w.remove(v)
						w.beamsDirty = true
					}
				}
				w.spawnExplosion(c)
			}
		}
	}
}

// fire 激光开始发射并立即投射光束
func (w *World) fire(l *Laser) {
	l.Firing = true
	l.shot++
	if d := w.cfg.LaserFireDuration; d > 0 {
		shot := l.shot
		l.StopAt = w.after(d, func() {
			if w.lasers[l.ID] == l && l.Firing && l.shot == shot {
				w.stopFiring(l)
			}
		})
	}
	w.recast(l)
}

func (w *World) stopFiring(l *Laser) {
	l.Firing = false
	w.teardown(l)
}

func (w *World) destroyLaser(l *Laser) {
	w.stopFiring(l)
	w.remove(l)
}

// teardown 拆除激光的全部光束
func (w *World) teardown(l *Laser) {
	for _, id := range l.beamIDs {
		if b, ok := w.beams[id]; ok {
			w.remove(b)
		}
	}
	l.beamIDs = l.beamIDs[:0]
}

// recast 整体重建一条激光的光束：遇炸弹引爆、遇实体障碍停在其前、遇玩家淘汰后停止
func (w *World) recast(l *Laser) {
	w.teardown(l)
	if !l.Firing || w.lasers[l.ID] != l {
		return
	}
	pos := l.Pos
	for i := 0; i < w.cfg.LaserRange; i++ {
		pos = pos.Step(l.Dir)
		if !w.InBounds(pos) {
			return
		}
		items := w.index.ItemsAt(pos)
		if b := firstOf[*Bomb](items); b != nil {
			w.detonate(b)
			return
		}
		if anySolid(items) {
			return
		}
		if p := firstOf[*Player](items); p != nil {
			for _, e := range items {
				if v, ok := e.(*Player); ok {
					w.eliminate(v, CauseBeam, true)
				}
			}
			return
		}
		beam := &Beam{Item: Item{ID: w.newID(), Pos: pos}, LaserID: l.ID, Dir: l.Dir}
		w.place(beam)
		l.beamIDs = append(l.beamIDs, beam.ID)
	}
}

// recastAll 重新计算所有发射中的激光（按 ID 排序保证确定性）
func (w *World) recastAll() {
	firing := make([]*Laser, 0, len(w.lasers))
	for _, l := range w.lasers {
		if l.Firing {
			firing = append(firing, l)
		}
	}
	sort.Slice(firing, func(i, j int) bool { return firing[i].ID < firing[j].ID })
	for _, l := range firing {
		if w.lasers[l.ID] == l && l.Firing {
			w.recast(l)
		}
	}
}

// settle 视线可能改变时重算光束，直到稳定。
// 每轮额外的重算都需要一次引爆，炸弹数量有限，因此必然终止。
func (w *World) settle() {
	for w.beamsDirty {
		w.beamsDirty = false
		w.recastAll()
	}
}

// eliminate 淘汰玩家；withExplosion 为 false 时由调用方负责生成爆炸
func (w *World) eliminate(p *Player, cause Cause, withExplosion bool) {
	if w.players[p.ID] != p {
		return
	}
	rank := w.rankOf(p.ID)
	w.remove(p)
	w.log.Debug("player eliminated", zap.String("session", p.ID), zap.String("cause", string(cause)), zap.Int("coins", p.Coins), zap.Int("rank", rank))
	w.emit(Event{Kind: EventEliminated, Session: p.ID, Name: p.Profile.Name, Coins: p.Coins, Rank: rank, Pos: p.Pos, Cause: cause})
	p.Carried, p.Pending = nil, nil
	if withExplosion {
		w.spawnExplosion(p.Pos)
	}
}

// spawnExplosion 每格最多一个爆炸，新爆炸替换旧爆炸并各自独立计时消失
func (w *World) spawnExplosion(c Coord) {
	for _, e := range w.index.ItemsAt(c) {
		if x, ok := e.(*Explosion); ok {
			w.remove(x)
		}
	}
	x := &Explosion{Item: Item{ID: w.newID(), Pos: c}}
	w.place(x)
	x.ExpiresAt = w.after(w.cfg.ExplosionLifetime, func() {
		if w.explosions[x.ID] == x {
			w.remove(x)
		}
	})
}

func (w *World) hasBeam(c Coord) bool {
	return firstOf[*Beam](w.index.ItemsAt(c)) != nil
}

func firstOf[T Entity](items []Entity) T {
	var zero T
	for _, e := range items {
		if v, ok := e.(T); ok {
			return v
		}
	}
	return zero
}

func anySolid(items []Entity) bool {
	for _, e := range items {
		if Solid(e) {
			return true
		}
	}
	return false
}

package arena

import (
	"fmt"

	"go.uber.org/zap"
)

// IntentKind 外部意图类型
type IntentKind string

const (
	IntentJoin    IntentKind = "join"
	IntentLeave   IntentKind = "leave"
	IntentMove    IntentKind = "move"
	IntentPickup  IntentKind = "pickup"
	IntentUseItem IntentKind = "useItem"
	IntentRejoin  IntentKind = "rejoin"
)

// Intent 一条已归属到会话的意图
type Intent struct {
	Kind    IntentKind
	Session string
	Dir     Direction
	Profile Profile
}

// Apply 状态机入口：按意图类型分发。只有资源耗尽会返回错误。
func (w *World) Apply(in Intent) error {
	switch in.Kind {
	case IntentJoin:
		return w.Join(in.Session, in.Profile)
	case IntentRejoin:
		return w.Rejoin(in.Session, in.Profile)
	case IntentLeave:
		w.Leave(in.Session)
	case IntentMove:
		w.Move(in.Session, in.Dir)
	case IntentPickup:
		w.PickUp(in.Session)
	case IntentUseItem:
		w.UseItem(in.Session)
	default:
		w.log.Debug("unknown intent", zap.String("kind", string(in.Kind)), zap.String("session", in.Session))
	}
	return nil
}

// Join 在随机空格放置新玩家，朝向随机，金币为 0。会话已在场时为空操作。
func (w *World) Join(session string, prof Profile) error {
	if _, ok := w.players[session]; ok || session == "" {
		return nil
	}
	c, err := w.freeCell()
	if err != nil {
		w.log.Debug("join rejected", zap.String("session", session), zap.Error(err))
		return fmt.Errorf("join %s: %w", session, err)
	}
	p := &Player{
		Item:    Item{ID: session, Pos: c},
		Profile: prof,
		Rot:     w.rng.Intn(4),
	}
	w.place(p)
	w.log.Debug("player joined", zap.String("session", session), zap.Int("x", c.X), zap.Int("y", c.Y))
	return nil
}

// Rejoin 淘汰后以新位置重新加入
func (w *World) Rejoin(session string, prof Profile) error {
	w.Leave(session)
	return w.Join(session, prof)
}

// Leave 移除玩家，幂等；持有物随玩家一起消失
func (w *World) Leave(session string) {
	p, ok := w.players[session]
	if !ok {
		return
	}
	rank := w.rankOf(p.ID)
	w.remove(p)
	w.emit(Event{Kind: EventLeft, Session: p.ID, Name: p.Profile.Name, Coins: p.Coins, Rank: rank, Pos: p.Pos})
	p.Carried, p.Pending = nil, nil
}

// Move 转向并尝试前进一格；被阻挡时不移动但朝向仍然改变
func (w *World) Move(session string, dir Direction) {
	p, ok := w.players[session]
	if !ok || !dir.Valid() {
		return
	}
	defer w.settle()

	p.Rot += turnStep(p.Rot, dir)

	target := p.Pos.Step(dir)
	if !w.InBounds(target) {
		return
	}

	var (
		blocked bool
		push    Entity
		pickup  Entity
		coins   []*Coin
	)
	for _, e := range w.index.ItemsAt(target) {
		switch {
		case Pushable(e):
			push = e
		case Solid(e):
			blocked = true
		}
		if c, ok := e.(*Coin); ok {
			coins = append(coins, c)
		}
		if PickupName(e) != "" {
			pickup = e
		}
	}
	// 金币无论是否移动成功都会被收集
	for _, c := range coins {
		w.remove(c)
		p.Coins++
	}
	if blocked {
		p.Pending = pickup
		return
	}

	if push != nil {
		dest := push.Ref().Pos.Step(dir)
		if !w.InBounds(dest) {
			return
		}
		for _, e := range w.index.ItemsAt(dest) {
			if Solid(e) {
				return
			}
		}
		w.index.Relocate(push, dest)
		w.beamsDirty = true
	}

	w.index.Relocate(p, target)
	p.Pending = pickup

	if w.hasBeam(target) {
		w.eliminate(p, CauseBeam, true)
	}
}

// PickUp 用可拾取候选替换持有物；原持有物放回脚下并成为新的候选。
// 没有候选时相当于放下持有物。
func (w *World) PickUp(session string) {
	p, ok := w.players[session]
	if !ok {
		return
	}
	prev := p.Carried
	next := w.validPending(p)
	if prev == nil && next == nil {
		return
	}
	if prev != nil && !w.canDrop(p.Pos, next) {
		return
	}
	defer w.settle()

	if next != nil {
		w.take(next)
	}
	p.Carried = next
	p.Pending = nil
	if prev != nil {
		prev.Ref().Pos = p.Pos
		w.place(prev)
		p.Pending = prev
	}
}

// UseItem 触发持有物效果并放回玩家所在格：炸弹点燃，激光沿玩家朝向发射
func (w *World) UseItem(session string) {
	p, ok := w.players[session]
	if !ok || p.Carried == nil {
		return
	}
	if !w.canDrop(p.Pos, nil) {
		return
	}
	defer w.settle()

	item := p.Carried
	p.Carried = nil
	item.Ref().Pos = p.Pos
	switch v := item.(type) {
	case *Bomb:
		w.place(v)
		w.arm(v)
	case *Laser:
		v.Dir = p.Facing()
		w.place(v)
		w.fire(v)
	default:
		w.place(item)
	}
	if PickupName(item) != "" && w.index.Contains(item) {
		p.Pending = item
	} else {
		p.Pending = nil
	}
}

// validPending 候选仍在网格上、仍可拾取，且在玩家脚下或相邻格
func (w *World) validPending(p *Player) Entity {
	e := p.Pending
	if e == nil || PickupName(e) == "" || !w.index.Contains(e) {
		return nil
	}
	d := e.Ref().Pos
	dx, dy := abs(d.X-p.Pos.X), abs(d.Y-p.Pos.Y)
	if dx+dy > 1 {
		return nil
	}
	return e
}

// canDrop 放下物品后格子内不能出现第二个实体障碍；except 为即将被拿走的实体
func (w *World) canDrop(c Coord, except Entity) bool {
	for _, e := range w.index.ItemsAt(c) {
		if e != except && Solid(e) {
			return false
		}
	}
	return true
}

// take 把物品从网格取走成为持有物；发射中的激光会停止并拆除光束
func (w *World) take(e Entity) {
	if l, ok := e.(*Laser); ok && l.Firing {
		w.stopFiring(l)
	}
	w.remove(e)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package arena

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrWorldFull 在有限次数内找不到空格
var ErrWorldFull = errors.New("arena: no free cell")

// World 单个竞技场的全部可变状态。
// 非并发安全：所有调用必须来自同一个串行执行者（房间协程）。
type World struct {
	cfg    Config
	Width  int
	Height int

	index *Index

	players    map[string]*Player
	bombs      map[string]*Bomb
	coins      map[string]*Coin
	crates     map[string]*Crate
	lasers     map[string]*Laser
	beams      map[string]*Beam
	walls      map[string]*Wall
	explosions map[string]*Explosion

	rng *rand.Rand
	now func() time.Time
	log *zap.Logger

	timers   timerQueue
	timerSeq uint64

	beamsDirty bool
	events     []Event
}

type Option func(*World)

// WithLogger 注入 zap 日志（默认 Nop）
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithClock 注入时钟，测试中用于推进定时器
func WithClock(now func() time.Time) Option {
	return func(w *World) {
		if now != nil {
			w.now = now
		}
	}
}

// New 创建世界并按配置铺设初始实体
func New(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &World{
		cfg:        cfg,
		Width:      cfg.Width,
		Height:     cfg.Height,
		index:      NewIndex(),
		players:    make(map[string]*Player),
		bombs:      make(map[string]*Bomb),
		coins:      make(map[string]*Coin),
		crates:     make(map[string]*Crate),
		lasers:     make(map[string]*Laser),
		beams:      make(map[string]*Beam),
		walls:      make(map[string]*Wall),
		explosions: make(map[string]*Explosion),
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.populate(); err != nil {
		return nil, fmt.Errorf("populate %dx%d: %w", cfg.Width, cfg.Height, err)
	}
	w.log.Debug("world created",
		zap.Int("width", w.Width), zap.Int("height", w.Height), zap.Int64("seed", seed),
		zap.Int("entities", w.index.Len()))
	return w, nil
}

func (w *World) populate() error {
	steps := []struct {
		n     int
		spawn func(Coord) Entity
	}{
		{w.cfg.Walls, func(c Coord) Entity { return w.addWall(c) }},
		{w.cfg.Crates, func(c Coord) Entity { return w.addCrate(c) }},
		{w.cfg.Bombs, func(c Coord) Entity { return w.addBomb(c) }},
		{w.cfg.Coins, func(c Coord) Entity { return w.addCoin(c) }},
		{w.cfg.Lasers, func(c Coord) Entity { return w.addLaser(c, Direction(w.rng.Intn(4))) }},
	}
	for _, s := range steps {
		for i := 0; i < s.n; i++ {
			c, err := w.freeCell()
			if err != nil {
				return err
			}
			s.spawn(c)
		}
	}
	return nil
}

// Config 当前生效的参数
func (w *World) Config() Config { return w.cfg }

// SetSpawnRules 热更新补充规则（须在房间协程内调用）
func (w *World) SetSpawnRules(bomb, coin, laser SpawnRule) {
	w.cfg.BombSpawn = bomb
	w.cfg.CoinSpawn = coin
	w.cfg.LaserSpawn = laser
}

// ItemsAt 占用索引查询
func (w *World) ItemsAt(c Coord) []Entity { return w.index.ItemsAt(c) }

// Player 按会话查询玩家
func (w *World) Player(session string) (*Player, bool) {
	p, ok := w.players[session]
	return p, ok
}

// InBounds 坐标是否在网格内
func (w *World) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < w.Width && c.Y >= 0 && c.Y < w.Height
}

func (w *World) newID() string {
	id, err := uuid.NewRandomFromReader(w.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// freeCell 均匀随机找一个零占用的格子，超过尝试次数返回 ErrWorldFull
func (w *World) freeCell() (Coord, error) {
	for i := 0; i < w.cfg.PlaceAttempts; i++ {
		c := Coord{X: w.rng.Intn(w.Width), Y: w.rng.Intn(w.Height)}
		if w.index.Count(c) == 0 {
			return c, nil
		}
	}
	return Coord{}, ErrWorldFull
}

// place 同时登记到索引和所属注册表
func (w *World) place(e Entity) {
	w.index.Add(e)
	switch v := e.(type) {
	case *Player:
		w.players[v.ID] = v
	case *Bomb:
		w.bombs[v.ID] = v
	case *Coin:
		w.coins[v.ID] = v
	case *Crate:
		w.crates[v.ID] = v
	case *Laser:
		w.lasers[v.ID] = v
	case *Beam:
		w.beams[v.ID] = v
	case *Wall:
		w.walls[v.ID] = v
	case *Explosion:
		w.explosions[v.ID] = v
	}
}

// remove 同时从索引和注册表移除；不在网格上时返回 false
func (w *World) remove(e Entity) bool {
	if !w.index.Remove(e) {
		return false
	}
	switch v := e.(type) {
	case *Player:
		delete(w.players, v.ID)
	case *Bomb:
		delete(w.bombs, v.ID)
	case *Coin:
		delete(w.coins, v.ID)
	case *Crate:
		delete(w.crates, v.ID)
	case *Laser:
		delete(w.lasers, v.ID)
	case *Beam:
		delete(w.beams, v.ID)
	case *Wall:
		delete(w.walls, v.ID)
	case *Explosion:
		delete(w.explosions, v.ID)
	}
	return true
}

func (w *World) addWall(c Coord) *Wall {
	e := &Wall{Item{ID: w.newID(), Pos: c}}
	w.place(e)
	return e
}

func (w *World) addCrate(c Coord) *Crate {
	e := &Crate{Item{ID: w.newID(), Pos: c}}
	w.place(e)
	return e
}

func (w *World) addBomb(c Coord) *Bomb {
	e := &Bomb{Item: Item{ID: w.newID(), Pos: c}}
	w.place(e)
	return e
}

func (w *World) addCoin(c Coord) *Coin {
	e := &Coin{Item{ID: w.newID(), Pos: c}}
	w.place(e)
	return e
}

func (w *World) addLaser(c Coord, dir Direction) *Laser {
	e := &Laser{Item: Item{ID: w.newID(), Pos: c}, Dir: dir}
	w.place(e)
	return e
}

// Verify 检查注册表与占用索引的一致性，返回第一个不一致
func (w *World) Verify() error {
	total := 0
	check := func(e Entity) error {
		total++
		if !w.InBounds(e.Ref().Pos) {
			return fmt.Errorf("arena: invariant: %s %s out of bounds at %v", e.Kind(), e.Ref().ID, e.Ref().Pos)
		}
		if n := w.index.occurrences(e); n != 1 {
			return fmt.Errorf("arena: invariant: %s %s indexed %d times at %v", e.Kind(), e.Ref().ID, n, e.Ref().Pos)
		}
		return nil
	}
	var err error
	w.each(func(e Entity) bool {
		err = check(e)
		return err == nil
	})
	if err != nil {
		return err
	}
	if n := w.index.Len(); n != total {
		return fmt.Errorf("arena: invariant: index holds %d entities, registries hold %d", n, total)
	}
	for c, cell := range w.index.cells {
		solid := 0
		for _, e := range cell {
			if Solid(e) {
				solid++
			}
		}
		if solid > 1 {
			return fmt.Errorf("arena: invariant: %d solid entities at %v", solid, c)
		}
	}
	for _, p := range w.players {
		if p.Carried != nil && w.index.Contains(p.Carried) {
			return fmt.Errorf("arena: invariant: carried %s %s of %s still on grid", p.Carried.Kind(), p.Carried.Ref().ID, p.ID)
		}
	}
	return nil
}

// each 遍历所有注册表中的实体，fn 返回 false 时停止
func (w *World) each(fn func(Entity) bool) {
	for _, v := range w.players {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.bombs {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.coins {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.crates {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.lasers {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.beams {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.walls {
		if !fn(v) {
			return
		}
	}
	for _, v := range w.explosions {
		if !fn(v) {
			return
		}
	}
}

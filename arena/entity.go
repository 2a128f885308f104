package arena

import (
	"fmt"
	"time"
)

// Kind 实体种类判别值
type Kind uint8

const (
	KindPlayer Kind = iota + 1
	KindCrate
	KindBomb
	KindCoin
	KindLaser
	KindBeam
	KindWall
	KindExplosion
)

var kindNames = map[Kind]string{
	KindPlayer:    "Player",
	KindCrate:     "Crate",
	KindBomb:      "Bomb",
	KindCoin:      "Coin",
	KindLaser:     "Laser",
	KindBeam:      "Beam",
	KindWall:      "Wall",
	KindExplosion: "Explosion",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("arena: unknown kind %q", b)
}

// Entity 所有网格实体的公共能力；具体种类通过类型分支处理
type Entity interface {
	Ref() *Item
	Kind() Kind
}

// Item 公共字段：稳定 ID 与网格位置
type Item struct {
	ID  string `json:"id"`
	Pos Coord  `json:"pos"`
}

func (it *Item) Ref() *Item { return it }

// Profile 玩家加入时提供的展示信息
type Profile struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Player 玩家；ID 即会话 ID
type Player struct {
	Item
	Profile Profile
	// Rot 累计旋转计数（不取模），Facing = Rot mod 4
	Rot     int
	Coins   int
	Carried Entity // 持有物（不在网格上）
	Pending Entity // 可拾取候选（非持有引用，每次移动重算）
}

func (*Player) Kind() Kind { return KindPlayer }

// Facing 当前朝向
func (p *Player) Facing() Direction { return Direction(mod4(p.Rot)) }

type Crate struct{ Item }

func (*Crate) Kind() Kind { return KindCrate }

type Bomb struct {
	Item
	Armed      bool
	DetonateAt time.Time
}

func (*Bomb) Kind() Kind { return KindBomb }

type Coin struct{ Item }

func (*Coin) Kind() Kind { return KindCoin }

type Laser struct {
	Item
	Firing  bool
	Dir     Direction
	StopAt  time.Time
	shot    int // 每次发射递增，过期的停止回调据此忽略
	beamIDs []string
}

func (*Laser) Kind() Kind { return KindLaser }

// Beam 激光束段，随所属激光整体重建
type Beam struct {
	Item
	LaserID string
	Dir     Direction
}

func (*Beam) Kind() Kind { return KindBeam }

type Wall struct{ Item }

func (*Wall) Kind() Kind { return KindWall }

type Explosion struct {
	Item
	ExpiresAt time.Time
}

func (*Explosion) Kind() Kind { return KindExplosion }

// Solid 占据格子，阻挡其他实体进入
func Solid(e Entity) bool {
	switch e.(type) {
	case *Crate, *Bomb, *Laser, *Wall:
		return true
	}
	return false
}

// Pushable 可被移动者推动
func Pushable(e Entity) bool {
	_, ok := e.(*Crate)
	return ok
}

// PickupName 返回可拾取名称；空串表示不可拾取。
// 发射中的激光仍可拾取，拾取即停止发射。
func PickupName(e Entity) string {
	switch v := e.(type) {
	case *Bomb:
		if !v.Armed {
			return "Bomb"
		}
	case *Laser:
		return "Laser"
	}
	return ""
}

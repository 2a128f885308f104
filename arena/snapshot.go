package arena

import (
	"sort"
	"strings"
)

// EntityView 单个实体的只读投影；可比较，便于做增量
type EntityView struct {
	ID       string    `json:"id"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Name     string    `json:"name,omitempty"`
	Color    string    `json:"color,omitempty"`
	ImageURL string    `json:"imageUrl,omitempty"`
	Rot      int       `json:"rot,omitempty"`
	Coins    int       `json:"coins,omitempty"`
	Held     string    `json:"heldItem,omitempty"`
	Pickup   string    `json:"pickupItem,omitempty"`
	Hot      bool      `json:"hot,omitempty"`
	Firing   bool      `json:"firing,omitempty"`
	LaserID  string    `json:"laserId,omitempty"`
	Dir      Direction `json:"dir"`
}

// Rank 排行榜条目
type Rank struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Coins int    `json:"coins"`
	Rank  int    `json:"rank"`
}

// State 一次变更之后的完整世界投影
type State struct {
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Players     []EntityView `json:"players"`
	Bombs       []EntityView `json:"bombs"`
	Coins       []EntityView `json:"coins"`
	Crates      []EntityView `json:"crates"`
	Lasers      []EntityView `json:"lasers"`
	Beams       []EntityView `json:"beams"`
	Walls       []EntityView `json:"walls"`
	Explosions  []EntityView `json:"explosions"`
	Leaderboard []Rank       `json:"leaderboard"`
}

// Registries 按注册表名返回实体投影
func (s *State) Registries() map[string][]EntityView {
	return map[string][]EntityView{
		"players":    s.Players,
		"bombs":      s.Bombs,
		"coins":      s.Coins,
		"crates":     s.Crates,
		"lasers":     s.Lasers,
		"beams":      s.Beams,
		"walls":      s.Walls,
		"explosions": s.Explosions,
	}
}

// Snapshot 纯读取投影，不修改世界
func (w *World) Snapshot() *State {
	s := &State{
		Width:      w.Width,
		Height:     w.Height,
		Players:    views(w.players, viewPlayer),
		Bombs:      views(w.bombs, func(b *Bomb) EntityView { v := base(&b.Item); v.Hot = b.Armed; return v }),
		Coins:      views(w.coins, func(c *Coin) EntityView { return base(&c.Item) }),
		Crates:     views(w.crates, func(c *Crate) EntityView { return base(&c.Item) }),
		Lasers:     views(w.lasers, func(l *Laser) EntityView { v := base(&l.Item); v.Firing = l.Firing; v.Dir = l.Dir; return v }),
		Beams:      views(w.beams, func(b *Beam) EntityView { v := base(&b.Item); v.LaserID = b.LaserID; v.Dir = b.Dir; return v }),
		Walls:      views(w.walls, func(x *Wall) EntityView { return base(&x.Item) }),
		Explosions: views(w.explosions, func(x *Explosion) EntityView { return base(&x.Item) }),
	}
	s.Leaderboard = Leaderboard(w.players)
	return s
}

// Leaderboard 按金币降序、名字（忽略大小写）升序排名，金币相同名次相同
func Leaderboard(players map[string]*Player) []Rank {
	out := make([]Rank, 0, len(players))
	for _, p := range players {
		out = append(out, Rank{ID: p.ID, Name: p.Profile.Name, Color: p.Profile.Color, Coins: p.Coins})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coins != out[j].Coins {
			return out[i].Coins > out[j].Coins
		}
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		if i > 0 && out[i].Coins == out[i-1].Coins {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

// rankOf 玩家当前名次；不在场时为 0
func (w *World) rankOf(id string) int {
	for _, r := range Leaderboard(w.players) {
		if r.ID == id {
			return r.Rank
		}
	}
	return 0
}

func viewPlayer(p *Player) EntityView {
	v := base(&p.Item)
	v.Name = p.Profile.Name
	v.Color = p.Profile.Color
	v.ImageURL = p.Profile.ImageURL
	v.Rot = p.Rot
	v.Dir = p.Facing()
	v.Coins = p.Coins
	if p.Carried != nil {
		v.Held = PickupName(p.Carried)
	}
	if p.Pending != nil {
		v.Pickup = PickupName(p.Pending)
	}
	return v
}

func base(it *Item) EntityView { return EntityView{ID: it.ID, X: it.Pos.X, Y: it.Pos.Y} }

func views[T Entity](reg map[string]T, fn func(T) EntityView) []EntityView {
	out := make([]EntityView, 0, len(reg))
	for _, e := range reg {
		out = append(out, fn(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

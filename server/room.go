package server

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"sokoarena/arena"
)

// Room 房间世界：权威状态维护在内存，由单个协程串行推进
type Room struct {
	ID string

	cfg   Config
	world *arena.World

	// 以下字段只在房间协程内访问
	sessions map[PlayerID]Sender
	last     *arena.State
	seq      uint64

	// inbox 接入、意图、离开、管理操作共用一个 FIFO，按发送顺序应用
	inbox chan roomMsg

	metrics *RoomMetrics
	journal *Journal
	scores  *ScoreIndex

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	done      chan struct{}
}

type msgKind uint8

const (
	msgAttach msgKind = iota + 1
	msgInput
	msgLeave
	msgControl
)

type roomMsg struct {
	kind   msgKind
	pid    PlayerID
	sender Sender             // msgAttach
	in     Input              // msgInput
	fn     func(*arena.World) // msgControl
	ack    chan struct{}      // msgAttach/msgControl：处理完后关闭
}

// 出站消息
type outMessage struct {
	Type    string       `json:"type"`
	Session string       `json:"session,omitempty"`
	State   *arena.State `json:"state,omitempty"`
	Delta   *Delta       `json:"delta,omitempty"`
	Event   *arena.Event `json:"event,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// NewRoom 创建房间与其世界；scores 可为 nil
func NewRoom(id string, cfg Config, scores *ScoreIndex) (*Room, error) {
	logger := Log.Desugar().Named("arena").With(zap.String("room", id))
	world, err := arena.New(cfg.Arena, arena.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	r := &Room{
		ID:       id,
		cfg:      cfg,
		world:    world,
		sessions: make(map[PlayerID]Sender),
		inbox:    make(chan roomMsg, cfg.InputQueue), // 足够缓冲，避免网络读阻塞影响推进
		metrics:  &RoomMetrics{},
		scores:   scores,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if cfg.JournalDir != "" {
		r.journal = NewJournal(filepath.Join(cfg.JournalDir, id), "events")
	}
	r.last = world.Snapshot()
	return r, nil
}

// Metrics 运行指标
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Attach 绑定会话的发送端，等房间协程登记完才返回；之后发出的意图都排在它后面。
// 玩家需要再发送 join 才会进入世界。房间已停止时直接关闭 s。
func (r *Room) Attach(pid PlayerID, s Sender) {
	m := roomMsg{kind: msgAttach, pid: pid, sender: s, ack: make(chan struct{})}
	if !r.enqueue(m) {
		s.Close()
		return
	}
	select {
	case <-m.ack:
	case <-r.done:
		// 可能已被房间登记并在退出时关闭，Close 可重复调用
		s.Close()
	}
}

// OnInput 入站意图进入 FIFO 队列；队列满时阻塞调用方（连接读协程）直到有空位
func (r *Room) OnInput(in Input) {
	r.enqueue(roomMsg{kind: msgInput, pid: in.PlayerID, in: in})
}

// RequestLeave 连接断开时排在该会话所有意图之后移除玩家
func (r *Room) RequestLeave(pid PlayerID) {
	r.enqueue(roomMsg{kind: msgLeave, pid: pid})
}

func (r *Room) enqueue(m roomMsg) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.inbox <- m:
		return true
	default:
		r.metrics.IncQueueFull()
	}
	select {
	case r.inbox <- m:
		return true
	case <-r.done:
		return false
	}
}

// Control 在房间协程内执行 fn（管理接口热更新、只读检查），排在此前入队的意图之后；
// 房间已停止、fn 未执行时返回 false
func (r *Room) Control(fn func(*arena.World)) bool {
	m := roomMsg{kind: msgControl, fn: fn, ack: make(chan struct{})}
	if !r.enqueue(m) {
		return false
	}
	select {
	case <-m.ack:
		return true
	case <-r.done:
		// ack 在 done 之前关闭
		select {
		case <-m.ack:
			return true
		default:
			return false
		}
	}
}

// State 当前世界投影（经房间协程读取）
func (r *Room) State() *arena.State {
	var s *arena.State
	r.Control(func(w *arena.World) { s = w.Snapshot() })
	return s
}

// Stop 停止推进并关闭所有连接与事件日志
func (r *Room) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.quit)
		r.startOnce.Do(func() { close(r.done) })
		<-r.done
		if r.journal != nil {
			err = r.journal.Close()
		}
	})
	return err
}

func (r *Room) handle(m roomMsg) {
	switch m.kind {
	case msgAttach:
		r.attach(m.pid, m.sender)
		close(m.ack)
	case msgInput:
		r.apply(m.in)
	case msgLeave:
		r.detach(m.pid)
	case msgControl:
		m.fn(r.world)
		close(m.ack)
		r.publish()
	}
}

// drain 房间退出时关闭仍在队列中的接入请求
func (r *Room) drain() {
	for {
		select {
		case m := <-r.inbox:
			if m.kind == msgAttach {
				m.sender.Close()
			}
		default:
			return
		}
	}
}

func (r *Room) attach(pid PlayerID, s Sender) {
	if old, ok := r.sessions[pid]; ok {
		old.Close()
	}
	r.sessions[pid] = s
	r.sendTo(pid, outMessage{Type: "welcome", Session: string(pid), State: r.last})
}

func (r *Room) detach(pid PlayerID) {
	s, ok := r.sessions[pid]
	if ok {
		s.Close()
		delete(r.sessions, pid)
	}
	r.world.Leave(string(pid))
	r.commit(JournalEntry{Source: "intent", Session: string(pid), Intent: string(arena.IntentLeave)})
}

// apply 应用一条意图，然后提交事件并广播增量
func (r *Room) apply(in Input) {
	entry := JournalEntry{Source: "intent", Session: string(in.PlayerID), Intent: string(in.Intent.Kind)}
	if in.Intent.Kind == arena.IntentMove {
		d := int(in.Intent.Dir)
		entry.Dir = &d
	}
	if err := r.world.Apply(in.Intent); err != nil {
		entry.Error = err.Error()
		if errors.Is(err, arena.ErrWorldFull) {
			r.metrics.IncWorldFull()
			r.sendTo(in.PlayerID, outMessage{Type: "error", Error: "world_full"})
		}
		Log.Debugf("room=%s session=%s %s rejected: %v", r.ID, in.PlayerID, in.Intent.Kind, err)
	}
	r.metrics.IncApplied()
	r.commit(entry)
}

func (r *Room) tick(now time.Time) {
	start := time.Now()
	if n := r.world.Tick(now); n > 0 {
		r.commit(JournalEntry{Source: "tick"})
	}
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

func (r *Room) spawn() {
	if n := r.world.Replenish(); n > 0 {
		r.commit(JournalEntry{Source: "spawn"})
	}
}

// commit 处理一次变更的后续：事件分发、日志、一致性检查、广播
func (r *Room) commit(entry JournalEntry) {
	events := r.world.DrainEvents()
	for i := range events {
		ev := events[i]
		switch ev.Kind {
		case arena.EventDetonated:
			r.metrics.IncDetonations()
		case arena.EventSpawned:
			r.metrics.IncSpawns()
		case arena.EventEliminated:
			r.metrics.IncEliminations()
			r.sendTo(PlayerID(ev.Session), outMessage{Type: "dead", Event: &ev})
			r.scores.Record(r.ID, ev)
		case arena.EventLeft:
			r.scores.Record(r.ID, ev)
		}
	}

	if r.journal != nil {
		r.seq++
		entry.Seq = r.seq
		entry.Time = time.Now()
		entry.Events = events
		if err := r.journal.Write(entry); err != nil {
			Log.Errorf("room=%s journal: %v", r.ID, err)
		}
	}

	if r.cfg.CheckInvariants {
		if err := r.world.Verify(); err != nil {
			Log.Panicf("room=%s: %v", r.ID, err)
		}
	}
	r.publish()
}

// publish 计算与上次投影的差异并广播
func (r *Room) publish() {
	cur := r.world.Snapshot()
	d := Diff(r.last, cur)
	r.last = cur
	if d.Empty() && d.Leaderboard == nil {
		return
	}
	b, err := json.Marshal(outMessage{Type: "delta", Delta: d})
	if err != nil {
		Log.Errorf("room=%s marshal delta: %v", r.ID, err)
		return
	}
	for _, s := range r.sessions {
		s.Enqueue(b)
	}
	r.metrics.IncBroadcasts()
}

func (r *Room) sendTo(pid PlayerID, msg outMessage) {
	s, ok := r.sessions[pid]
	if !ok {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		Log.Errorf("room=%s marshal %s: %v", r.ID, msg.Type, err)
		return
	}
	s.Enqueue(b)
}

package server

import "time"

// StartTicker 启动房间协程：队列消息、定时推进、补充调度在同一个循环里串行执行。
// 未启动的房间在 Stop 时直接关闭 done。
func (r *Room) StartTicker() {
	r.startOnce.Do(func() {
		go r.run()
	})
}

func (r *Room) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()
	spawnEvery := r.world.Config().SpawnInterval
	if spawnEvery <= 0 {
		spawnEvery = time.Second
	}
	spawn := time.NewTicker(spawnEvery)
	defer spawn.Stop()

	for {
		select {
		case <-r.quit:
			for pid, s := range r.sessions {
				s.Close()
				delete(r.sessions, pid)
			}
			r.drain()
			return
		case m := <-r.inbox:
			r.handle(m)
		case now := <-ticker.C:
			r.tick(now)
		case <-spawn.C:
			r.spawn()
		}
	}
}

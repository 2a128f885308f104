package arena

import (
	"container/heap"
	"time"
)

// timer 延迟回调；触发时作为一次普通的串行变更执行
type timer struct {
	due time.Time
	seq uint64
	fn  func()
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}
func (q timerQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *timerQueue) Push(x any)   { *q = append(*q, x.(*timer)) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// after 在 d 之后执行 fn。没有取消：回调自行检查目标实体是否仍然存在。
func (w *World) after(d time.Duration, fn func()) time.Time {
	w.timerSeq++
	due := w.now().Add(d)
	heap.Push(&w.timers, &timer{due: due, seq: w.timerSeq, fn: fn})
	return due
}

// RunDue 按到期顺序执行所有不晚于 now 的回调，返回执行数量
func (w *World) RunDue(now time.Time) int {
	n := 0
	for len(w.timers) > 0 && !w.timers[0].due.After(now) {
		t := heap.Pop(&w.timers).(*timer)
		t.fn()
		w.settle()
		n++
	}
	return n
}

// NextDue 最近的到期时间；没有待执行回调时 ok=false
func (w *World) NextDue() (due time.Time, ok bool) {
	if len(w.timers) == 0 {
		return time.Time{}, false
	}
	return w.timers[0].due, true
}

// PendingTimers 待执行回调数
func (w *World) PendingTimers() int { return len(w.timers) }

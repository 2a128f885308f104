package arena

import "fmt"

// Index 坐标 → 实体集合，"(x,y) 上有什么" 的唯一来源。
// 每格保留插入顺序，保证遍历确定。
type Index struct {
	cells map[Coord][]Entity
}

func NewIndex() *Index {
	return &Index{cells: make(map[Coord][]Entity)}
}

// ItemsAt 返回格子内实体的副本，调用方可在遍历中修改索引
func (ix *Index) ItemsAt(c Coord) []Entity {
	cur := ix.cells[c]
	if len(cur) == 0 {
		return nil
	}
	out := make([]Entity, len(cur))
	copy(out, cur)
	return out
}

// Count 格子内实体数量
func (ix *Index) Count(c Coord) int { return len(ix.cells[c]) }

// Add 以实体当前位置登记
func (ix *Index) Add(e Entity) {
	pos := e.Ref().Pos
	if ix.find(pos, e) >= 0 {
		panic(fmt.Sprintf("arena: invariant: %s %s already indexed at %v", e.Kind(), e.Ref().ID, pos))
	}
	ix.cells[pos] = append(ix.cells[pos], e)
}

// Remove 从实体当前位置注销；未登记时返回 false
func (ix *Index) Remove(e Entity) bool {
	pos := e.Ref().Pos
	i := ix.find(pos, e)
	if i < 0 {
		return false
	}
	cur := ix.cells[pos]
	copy(cur[i:], cur[i+1:])
	cur[len(cur)-1] = nil
	cur = cur[:len(cur)-1]
	if len(cur) == 0 {
		delete(ix.cells, pos)
	} else {
		ix.cells[pos] = cur
	}
	return true
}

// Relocate 旧格移除、新格加入，再更新实体位置
func (ix *Index) Relocate(e Entity, to Coord) {
	if !ix.Remove(e) {
		panic(fmt.Sprintf("arena: invariant: %s %s missing from index at %v", e.Kind(), e.Ref().ID, e.Ref().Pos))
	}
	e.Ref().Pos = to
	ix.cells[to] = append(ix.cells[to], e)
}

// Contains 实体是否登记在其当前位置
func (ix *Index) Contains(e Entity) bool { return ix.find(e.Ref().Pos, e) >= 0 }

// Len 索引中的实体总数
func (ix *Index) Len() int {
	n := 0
	for _, cell := range ix.cells {
		n += len(cell)
	}
	return n
}

func (ix *Index) occurrences(e Entity) int {
	n := 0
	for _, cur := range ix.cells[e.Ref().Pos] {
		if cur == e {
			n++
		}
	}
	return n
}

func (ix *Index) find(c Coord, e Entity) int {
	for i, cur := range ix.cells[c] {
		if cur == e {
			return i
		}
	}
	return -1
}

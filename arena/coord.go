package arena

// Coord 网格坐标，同时作为占用索引的键
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction 四个基本方向，取值与客户端协议一致（0..3）
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

var dirVectors = [4]Coord{
	{0, -1}, // N
	{1, 0},  // E
	{0, 1},  // S
	{-1, 0}, // W
}

// Valid 是否为合法方向
func (d Direction) Valid() bool { return d >= North && d <= West }

// Vector 方向对应的单位位移
func (d Direction) Vector() Coord {
	if !d.Valid() {
		return Coord{}
	}
	return dirVectors[d]
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return "?"
}

// Add 坐标平移
func (c Coord) Add(d Coord) Coord { return Coord{X: c.X + d.X, Y: c.Y + d.Y} }

// Step 沿方向走一格
func (c Coord) Step(d Direction) Coord { return c.Add(d.Vector()) }

// turnStep 从当前朝向转到目标方向的最短一步：顺时针 0..2，或逆时针 -1
func turnStep(rot int, dir Direction) int {
	dr := ((int(dir)-mod4(rot))%4 + 4) % 4
	if dr == 3 {
		return -1
	}
	return dr
}

func mod4(v int) int { return ((v % 4) + 4) % 4 }

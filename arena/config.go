package arena

import (
	"fmt"
	"time"
)

// SpawnRule 单一危险物种类的补充规则：低于上限时每次调度以概率 P 生成一个
type SpawnRule struct {
	Cap  int     `yaml:"cap" json:"cap"`
	Prob float64 `yaml:"prob" json:"prob"`
}

// Config 单个竞技场的世界参数
type Config struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"` // 0 表示按时间取种子

	Walls  int `yaml:"walls"`
	Crates int `yaml:"crates"`
	Bombs  int `yaml:"bombs"`
	Coins  int `yaml:"coins"`
	Lasers int `yaml:"lasers"`

	// PlaceAttempts 随机找空格的最大尝试次数
	PlaceAttempts int `yaml:"place_attempts"`

	BombFuse          time.Duration `yaml:"bomb_fuse"`
	ExplosionLifetime time.Duration `yaml:"explosion_lifetime"`
	LaserRange        int           `yaml:"laser_range"`
	LaserFireDuration time.Duration `yaml:"laser_fire_duration"` // 0 表示一直发射

	SpawnInterval time.Duration `yaml:"spawn_interval"`
	BombSpawn     SpawnRule     `yaml:"bomb_spawn"`
	CoinSpawn     SpawnRule     `yaml:"coin_spawn"`
	LaserSpawn    SpawnRule     `yaml:"laser_spawn"`
}

func DefaultConfig() Config {
	return Config{
		Width:             20,
		Height:            15,
		Walls:             12,
		Crates:            10,
		Bombs:             4,
		Coins:             8,
		Lasers:            2,
		PlaceAttempts:     100,
		BombFuse:          3 * time.Second,
		ExplosionLifetime: 500 * time.Millisecond,
		LaserRange:        20,
		LaserFireDuration: 5 * time.Second,
		SpawnInterval:     time.Second,
		BombSpawn:         SpawnRule{Cap: 6, Prob: 0.2},
		CoinSpawn:         SpawnRule{Cap: 12, Prob: 0.5},
		LaserSpawn:        SpawnRule{Cap: 3, Prob: 0.1},
	}
}

// Validate 检查参数是否可用
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("arena: invalid grid %dx%d", c.Width, c.Height)
	}
	if c.PlaceAttempts <= 0 {
		return fmt.Errorf("arena: place_attempts must be positive, got %d", c.PlaceAttempts)
	}
	if c.LaserRange < 0 {
		return fmt.Errorf("arena: laser_range must not be negative, got %d", c.LaserRange)
	}
	for name, r := range map[string]SpawnRule{"bomb_spawn": c.BombSpawn, "coin_spawn": c.CoinSpawn, "laser_spawn": c.LaserSpawn} {
		if r.Cap < 0 || r.Prob < 0 || r.Prob > 1 {
			return fmt.Errorf("arena: %s out of range: cap=%d prob=%.2f", name, r.Cap, r.Prob)
		}
	}
	return nil
}

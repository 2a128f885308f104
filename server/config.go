package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sokoarena/arena"
)

// Config 进程级配置（YAML）
type Config struct {
	Addr           string `yaml:"addr"`
	TicksPerSecond int    `yaml:"ticks_per_second"`
	InputQueue     int    `yaml:"input_queue"`
	DefaultRoom    string `yaml:"default_room"`
	// CheckInvariants 每次变更后校验世界一致性，失败即终止进程
	CheckInvariants bool `yaml:"check_invariants"`

	Log        LogConfig    `yaml:"log"`
	JournalDir string       `yaml:"journal_dir"` // 为空时不记录事件日志
	ScoresDB   string       `yaml:"scores_db"`   // 为空时不记录成绩
	Arena      arena.Config `yaml:"arena"`
}

func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		TicksPerSecond: 20,
		InputQueue:     256,
		DefaultRoom:    "room-1",
		Log: LogConfig{
			File:       "app.log",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Arena: arena.DefaultConfig(),
	}
}

// TickInterval 定时器推进间隔
func (c Config) TickInterval() time.Duration {
	if c.TicksPerSecond <= 0 {
		return 50 * time.Millisecond
	}
	return time.Second / time.Duration(c.TicksPerSecond)
}

// LoadConfig 在默认值之上叠加 YAML 文件；path 为空时只返回默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Arena.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.InputQueue <= 0 {
		return cfg, fmt.Errorf("%s: input_queue must be positive", path)
	}
	return cfg, nil
}

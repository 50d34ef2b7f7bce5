package watcher

const (
	ModeMemory = "memory"
	ModeRedis  = "redis"
)

type Config struct {
	// Mode selects the fan-out backend, memory (single instance) or redis (pub/sub across instances).
	Mode string `conf:"mode" yaml:"mode" json:"mode"`
	// Channel is the redis pub/sub channel, unused in memory mode.
	Channel string `conf:"channel" yaml:"channel" json:"channel"`
	// Buffer is the per-subscriber channel size. Slow subscribers drop events once it is full.
	Buffer int `conf:"buffer" yaml:"buffer" json:"buffer"`
}

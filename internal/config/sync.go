package config

import "time"

type Sync struct {
	MinRefreshInterval   time.Duration `env:"SYNC_MIN_REFRESH_INTERVAL" envDefault:"3s"`
	QueryTimeout         time.Duration `env:"SYNC_QUERY_TIMEOUT" envDefault:"10s"`
	ListenerMinReconnect time.Duration `env:"SYNC_LISTENER_MIN_RECONNECT" envDefault:"10s"`
	ListenerMaxReconnect time.Duration `env:"SYNC_LISTENER_MAX_RECONNECT" envDefault:"1m"`
	SweepSchedule        string        `env:"SYNC_SWEEP_SCHEDULE" envDefault:"@daily"`
}

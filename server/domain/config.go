package domain

import "time"

// Config carries the server's runtime settings.
type Config struct {
	ListenAddr        string
	DatabasePath      string
	NoPersistence     bool
	HeartbeatInterval time.Duration
}

func NewConfig(listenAddr, databasePath string, noPersistence bool, heartbeatInterval time.Duration) Config {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 5 * time.Second
	}
	return Config{
		ListenAddr:        listenAddr,
		DatabasePath:      databasePath,
		NoPersistence:     noPersistence,
		HeartbeatInterval: heartbeatInterval,
	}
}

// HeartbeatTimeout is the window without liveness evidence after which a
// session is treated as dead.
func (c Config) HeartbeatTimeout() time.Duration {
	return 2 * c.HeartbeatInterval
}

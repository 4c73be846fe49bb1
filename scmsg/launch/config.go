package launch

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sjy-dv/scmsg/scmsg/pkg/log"
	tcp "github.com/sjy-dv/scmsg/scmsg/server/tcpcore"
)

const adminOff = "off"

type Config struct {
	Addresses        []string
	ReadBufSize      int
	ConnLimit        int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	AcceptBackoffMin time.Duration
	AcceptBackoffMax time.Duration
	KeepAlivePeriod  time.Duration
	PeerHistory      int
	AdminAddr        string
	LockFile         string
	ShutdownGrace    time.Duration
	LogLevel         string
	LogColor         bool
}

func defaultConfig() Config {
	return Config{
		Addresses:        []string{"127.0.0.1:9001"},
		ReadBufSize:      tcp.DefaultReadBufLen,
		AcceptBackoffMin: tcp.DefaultAcceptBackoffMin,
		AcceptBackoffMax: tcp.DefaultAcceptBackoffMax,
		KeepAlivePeriod:  tcp.DefaultKeepAlivePeriod,
		PeerHistory:      tcp.DefaultPeerHistory,
		AdminAddr:        "127.0.0.1:50051",
		LockFile:         filepath.Join(os.TempDir(), "scmsg", "scmsg.lock"),
		ShutdownGrace:    3 * time.Second,
		LogLevel:         "info",
	}
}

// AdminEnabled reports whether the gRPC admin listener should be started.
func (c Config) AdminEnabled() bool {
	return c.AdminAddr != "" && !strings.EqualFold(c.AdminAddr, adminOff)
}

// Options converts the config into endpoint options.
func (c Config) Options() []tcp.Option {
	return []tcp.Option{
		tcp.WithReadBufLen(uint32(c.ReadBufSize)),
		tcp.WithConnLimit(uint32(c.ConnLimit)),
		tcp.WithTimeout(c.ReadTimeout, c.WriteTimeout),
		tcp.WithAcceptBackoff(c.AcceptBackoffMin, c.AcceptBackoffMax),
		tcp.WithKeepAlive(c.KeepAlivePeriod, tcp.DefaultKeepAliveCount, tcp.DefaultKeepAliveInterval),
		tcp.WithPeerHistory(c.PeerHistory),
	}
}

func parseConfig(getenv func(string) string) Config {
	c := defaultConfig()
	if v := getenv("ADDRESSES"); v != "" {
		var addrs []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		if len(addrs) == 0 {
			log.Warnf("Failed to Configure ADDRESSES %q. Set Default %v", v, c.Addresses)
		} else {
			c.Addresses = addrs
		}
	}
	c.ReadBufSize = envInt(getenv, "READ_BUF_SIZE", c.ReadBufSize, 1)
	c.ConnLimit = envInt(getenv, "CONN_LIMIT", c.ConnLimit, 0)
	c.ReadTimeout = envDuration(getenv, "READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = envDuration(getenv, "WRITE_TIMEOUT", c.WriteTimeout)
	c.AcceptBackoffMin = envDuration(getenv, "ACCEPT_BACKOFF_MIN", c.AcceptBackoffMin)
	c.AcceptBackoffMax = envDuration(getenv, "ACCEPT_BACKOFF_MAX", c.AcceptBackoffMax)
	c.KeepAlivePeriod = envDuration(getenv, "KEEPALIVE_PERIOD", c.KeepAlivePeriod)
	c.PeerHistory = envInt(getenv, "PEER_HISTORY", c.PeerHistory, 1)
	if v := getenv("ADMIN_ADDR"); v != "" {
		c.AdminAddr = v
	}
	if v := getenv("LOCK_FILE"); v != "" {
		c.LockFile = v
	}
	c.ShutdownGrace = envDuration(getenv, "SHUTDOWN_GRACE", c.ShutdownGrace)
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.LogColor = getenv("LOG_COLOR") == "1"
	return c
}

func envInt(getenv func(string) string, key string, def, min int) int {
	v := getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		log.Warnf("Failed to Configure %s %q. Set Default %d", key, v, def)
		return def
	}
	return n
}

func envDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	v := getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Warnf("Failed to Configure %s %q. Set Default %v", key, v, def)
		return def
	}
	return d
}

package config

import (
	"strings"
	"time"
)

// RedisConfig contains Redis configuration. Sessions and the in-flight lock live here.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// LockTTL bounds how long a crashed request can hold an in-flight key.
	LockTTL time.Duration `env:"LOCK_TTL" envDefault:"30s"`
	// LocalInflight keeps the in-flight guard in process instead of Redis (single instance only).
	LocalInflight bool `env:"LOCAL_INFLIGHT" envDefault:"false"`
}

// Sanitize drops empty node entries and enforces a positive lock TTL.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	r.SentinelNodes = compact(r.SentinelNodes)
	r.ClusterNodes = compact(r.ClusterNodes)
	if r.UseCluster && len(r.ClusterNodes) == 0 {
		r.UseCluster = false
	}
	if r.LockTTL <= 0 {
		r.LockTTL = 30 * time.Second
	}
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

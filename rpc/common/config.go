package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lni/dragonboat/v4/config"
)

// --------------------------------------------------------------------------
// Server configuration
// --------------------------------------------------------------------------

// ServerConfig holds every setting the serve command needs. Populated from
// flags, environment variables (AP_-prefixed, see cmd/util) and an optional
// .env file, in the teacher's cobra/viper/godotenv style.
type ServerConfig struct {
	// TCP listen address, e.g. "0.0.0.0:7534".
	Host string
	Port int
	// SocketPath, if non-empty, selects the Unix-socket transport
	// (rpc/transport/unix) in place of TCP, binding here instead of Addr().
	SocketPath string

	// Path to the on-disk JSON document. Created on first write if absent.
	DataFile string
	// How often the persistence loop flushes a dirty document to DataFile.
	FlushInterval time.Duration
	// Bound on the query cache's entry count; <= 0 uses cache.DefaultMaxEntries.
	CacheSize int

	// Whether to expose Prometheus-format metrics and on what address.
	MetricsEnabled bool
	MetricsAddr    string

	LogLevel string

	// Cluster mode (optional; out of scope except where it touches the core
	// engine's interface, per spec.md's design notes).
	Cluster        bool
	ReplicaID      uint64
	ShardID        uint64
	ClusterMembers map[uint64]string
	RTTMillisecond uint64
	DataDir        string // Dragonboat's WAL/NodeHost directory, distinct from DataFile
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ToDragonboatConfig converts the relevant fields to Dragonboat's shard
// config. RTT-derived election/heartbeat factors follow the values the
// teacher used, themselves taken from the raft paper's recommendations.
func (c *ServerConfig) ToDragonboatConfig() config.Config {
	const (
		electionRTTFactor  = 10
		heartbeatRTTFactor = 1
	)
	return config.Config{
		ReplicaID:    c.ReplicaID,
		ShardID:      c.ShardID,
		ElectionRTT:  electionRTTFactor,
		HeartbeatRTT: heartbeatRTTFactor,
		CheckQuorum:  true,
	}
}

// ToNodeHostConfig builds Dragonboat's NodeHostConfig from this ServerConfig.
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// String renders the configuration for the server's startup banner, in the
// section/field layout the teacher's ServerConfig.String used.
func (c *ServerConfig) String() string {
	var sb strings.Builder
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(strings.ToUpper(title))
		sb.WriteString("\n")
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Server")
	addField("Listen Address", c.Addr())
	addField("Data File", c.DataFile)
	addField("Flush Interval", c.FlushInterval.String())
	addField("Cache Size", strconv.Itoa(c.CacheSize))
	addField("Log Level", c.LogLevel)

	addSection("Metrics")
	addField("Enabled", strconv.FormatBool(c.MetricsEnabled))
	if c.MetricsEnabled {
		addField("Address", c.MetricsAddr)
	}

	if c.Cluster {
		addSection("Cluster")
		addField("Shard ID", strconv.FormatUint(c.ShardID, 10))
		addField("Replica ID", strconv.FormatUint(c.ReplicaID, 10))
		addField("Raft Address", c.ClusterMembers[c.ReplicaID])
		addField("RTT (ms)", strconv.FormatUint(c.RTTMillisecond, 10))
		addField("Node Host Dir", c.DataDir)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration
// --------------------------------------------------------------------------

// ClientConfig holds the settings for the CLI's one-shot query client.
type ClientConfig struct {
	Host          string
	Port          int
	SocketPath    string
	TimeoutSecond int
}

// Addr returns the server address in host:port form.
func (c *ClientConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

func (c *ClientConfig) String() string {
	return fmt.Sprintf("server=%s timeout=%ds", c.Addr(), c.TimeoutSecond)
}

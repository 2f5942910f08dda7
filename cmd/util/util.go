package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrap is the number of characters to wrap help text at.
const Wrap int = 50

// WrapString wraps text at Wrap characters, word by word. Lifted verbatim
// from the teacher's cmd/util.WrapString.
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env/.env.local if present and configures viper to read
// AP_-prefixed environment variables (spec.md §6's AP_HOST/AP_PORT/AP_CNFG),
// in place of the teacher's DKV_ prefix. AP_CNFG is read as a second name
// for the data file path, after AP_DATA_FILE.
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("ap")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("data-file", "AP_DATA_FILE", "AP_CNFG")
}

// BindCommandFlags binds a command's flags to viper so AP_ environment
// variables and flags of the same name resolve to a single value.
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// SetupServerFlags registers the flags the serve command reads into a
// common.ServerConfig.
func SetupServerFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "0.0.0.0", WrapString("Host to listen on"))
	cmd.Flags().Int("port", 7534, WrapString("Port to listen on"))
	cmd.Flags().String("data-file", "apocrypha.json", WrapString("Path to the on-disk JSON document"))
	cmd.Flags().Duration("flush-interval", time.Second, WrapString("How often the persistence loop flushes a dirty document to disk"))
	cmd.Flags().Int("cache-size", 1024, WrapString("Maximum number of cached query results"))
	cmd.Flags().Bool("metrics", false, WrapString("Expose Prometheus-format metrics"))
	cmd.Flags().String("metrics-addr", "0.0.0.0:9090", WrapString("Address for the metrics endpoint"))
	cmd.Flags().String("log-level", "info", WrapString("Log level (debug, info, warn, error)"))
	cmd.Flags().String("socket", "", WrapString("Path to a Unix domain socket to listen on instead of TCP"))

	cmd.Flags().Bool("cluster", false, WrapString("Run in clustered (Dragonboat RAFT) mode instead of single-node mode"))
	cmd.Flags().Uint64("replica-id", 1, WrapString("(cluster mode) this node's replica ID"))
	cmd.Flags().Uint64("shard-id", 1, WrapString("(cluster mode) the shard ID this node serves"))
	cmd.Flags().String("cluster-members", "", WrapString("(cluster mode) comma-separated replicaID=address pairs, e.g. 1=localhost:63001,2=localhost:63002"))
	cmd.Flags().Uint64("rtt-millisecond", 100, WrapString("(cluster mode) average round trip time between nodes, in milliseconds"))
	cmd.Flags().String("data-dir", "data", WrapString("(cluster mode) directory for Dragonboat's WAL and node host state"))
}

// ServerConfigFromViper builds a common.ServerConfig from bound flags/env.
func ServerConfigFromViper() (*common.ServerConfig, error) {
	cfg := &common.ServerConfig{
		Host:           viper.GetString("host"),
		Port:           viper.GetInt("port"),
		SocketPath:     viper.GetString("socket"),
		DataFile:       viper.GetString("data-file"),
		FlushInterval:  viper.GetDuration("flush-interval"),
		CacheSize:      viper.GetInt("cache-size"),
		MetricsEnabled: viper.GetBool("metrics"),
		MetricsAddr:    viper.GetString("metrics-addr"),
		LogLevel:       viper.GetString("log-level"),
		Cluster:        viper.GetBool("cluster"),
		ReplicaID:      viper.GetUint64("replica-id"),
		ShardID:        viper.GetUint64("shard-id"),
		RTTMillisecond: viper.GetUint64("rtt-millisecond"),
		DataDir:        viper.GetString("data-dir"),
	}

	if members := viper.GetString("cluster-members"); members != "" {
		cfg.ClusterMembers = make(map[uint64]string)
		for _, pair := range strings.Split(members, ",") {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) != 2 {
				continue
			}
			if id, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64); err == nil {
				cfg.ClusterMembers[id] = parts[1]
			}
		}
	}

	return cfg, nil
}

// SetupClientFlags registers the flags the query command reads into a
// common.ClientConfig.
func SetupClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("host", "H", "localhost", WrapString("Host of the Apocrypha server"))
	cmd.Flags().Int("port", 7534, WrapString("Port of the Apocrypha server"))
	cmd.Flags().String("socket", "", WrapString("Path to a Unix domain socket, instead of host/port"))
	cmd.Flags().Int("timeout", 10, WrapString("Request timeout, in seconds"))
}

// ClientConfigFromViper builds a common.ClientConfig from bound flags/env.
func ClientConfigFromViper() *common.ClientConfig {
	return &common.ClientConfig{
		Host:          viper.GetString("host"),
		Port:          viper.GetInt("port"),
		SocketPath:    viper.GetString("socket"),
		TimeoutSecond: viper.GetInt("timeout"),
	}
}

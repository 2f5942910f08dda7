package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cmdutil "github.com/ValentinKolb/apocrypha/cmd/util"
	"github.com/ValentinKolb/apocrypha/internal/cluster"
	"github.com/ValentinKolb/apocrypha/lib/document"
	"github.com/ValentinKolb/apocrypha/lib/persistence"
	"github.com/ValentinKolb/apocrypha/lib/store"
	"github.com/ValentinKolb/apocrypha/metrics"
	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/ValentinKolb/apocrypha/rpc/transport"
	"github.com/ValentinKolb/apocrypha/rpc/transport/tcp"
	"github.com/ValentinKolb/apocrypha/rpc/transport/unix"
	"github.com/lni/dragonboat/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Cmd is the "serve" subcommand.
var Cmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Apocrypha server",
	Long:    `Start the Apocrypha server with the given configuration. Settings can be passed as flags or as AP_-prefixed environment variables (e.g. AP_PORT=7534).`,
	PreRunE: preRun,
	RunE:    run,
}

func init() {
	cobra.OnInitialize(cmdutil.InitConfig)
	cmdutil.SetupServerFlags(Cmd)
}

func preRun(cmd *cobra.Command, _ []string) error {
	if err := cmdutil.BindCommandFlags(cmd); err != nil {
		return err
	}
	return viperClusterGuard()
}

func run(_ *cobra.Command, _ []string) error {
	cfg, err := cmdutil.ServerConfigFromViper()
	if err != nil {
		return err
	}

	log := common.New("serve", common.ParseLevel(cfg.LogLevel))
	log.Infof("starting apocrypha server")
	log.Infof(cfg.String())

	if cfg.Cluster {
		return runCluster(cfg, log)
	}
	return runStandalone(cfg, log)
}

// runStandalone is the default, single-node server: one store.Store backed
// by one on-disk document, a persistence loop flushing it, and a TCP
// listener serving queries against it.
func runStandalone(cfg *common.ServerConfig, log *common.Logger) error {
	doc, err := document.Load(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	s := store.New(doc, cfg.CacheSize)

	persistLog := common.New("persistence", common.ParseLevel(cfg.LogLevel))
	loop := persistence.New(s, cfg.DataFile, cfg.FlushInterval, persistLog)

	stop := make(chan struct{})
	loopDone := make(chan struct{})
	go func() {
		loop.Run(stop)
		close(loopDone)
	}()

	transportLog := common.New("transport", common.ParseLevel(cfg.LogLevel))
	var srv transport.Server
	if cfg.SocketPath != "" {
		srv = unix.New(transportLog)
	} else {
		srv = tcp.New(transportLog)
	}
	srv.RegisterHandler(func(req []byte) []byte {
		return handle(s, req)
	})

	if cfg.MetricsEnabled {
		metrics.ConnectionGauge(func() float64 { return float64(srv.ConnectionCount()) })
		go func() {
			log.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(*cfg) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorf("server: %v", err)
		}
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
		_ = srv.Shutdown()
	}

	close(stop)
	<-loopDone

	// A final synchronous flush catches anything mutated between the last
	// tick and shutdown, so a clean shutdown never loses acknowledged writes.
	if err := loop.Flush(); err != nil {
		log.Errorf("final flush failed: %v", err)
		return err
	}
	log.Infof("shutdown complete")
	return nil
}

// handle decodes one request frame, evaluates it, and encodes the response
// frame - the glue between rpc/transport's wire format and lib/engine's
// token-based query interface.
func handle(s *store.Store, req []byte) []byte {
	raw := transport.DecodeTokens(req)
	tokens, opts := common.ParseRequestFlags(raw)
	lines, err := s.Query(tokens, opts)
	if err != nil {
		return transport.EncodeLines([]string{"error: " + err.Error()})
	}
	return transport.EncodeLines(lines)
}

// runCluster starts a single Dragonboat replica hosting one shard of the
// document, replicated via RAFT to the other members of cfg.ClusterMembers.
// Grounded on the teacher's rpc/server.init's remote-shard branch, simplified
// to exactly one shard (Apocrypha has no shard concept of its own - see
// internal/cluster's doc comment).
func runCluster(cfg *common.ServerConfig, log *common.Logger) error {
	common.InitClusterLoggers(common.ParseLevel(cfg.LogLevel))

	nh, err := dragonboat.NewNodeHost(cfg.ToNodeHostConfig())
	if err != nil {
		return fmt.Errorf("serve: creating node host: %w", err)
	}
	defer nh.Close()

	newDoc := func() *document.Document {
		doc, loadErr := document.Load(cfg.DataFile)
		if loadErr != nil {
			log.Errorf("cluster: loading seed document: %v", loadErr)
			return document.New()
		}
		return doc
	}

	factory := cluster.Factory(newDoc, cfg.CacheSize)
	if err := nh.StartReplica(cfg.ClusterMembers, false, factory, cfg.ToDragonboatConfig()); err != nil {
		return fmt.Errorf("serve: starting replica: %w", err)
	}
	log.Infof("cluster replica %d serving shard %d", cfg.ReplicaID, cfg.ShardID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received %s, shutting down", sig)
	return nil
}

func viperClusterGuard() error {
	if viper.GetBool("cluster") && viper.GetString("cluster-members") == "" {
		return fmt.Errorf("serve: --cluster-members is required in cluster mode")
	}
	return nil
}

package query

import (
	"fmt"

	cmdutil "github.com/ValentinKolb/apocrypha/cmd/util"
	"github.com/ValentinKolb/apocrypha/lib/engine"
	"github.com/ValentinKolb/apocrypha/rpc/common"
	"github.com/ValentinKolb/apocrypha/rpc/transport"
	"github.com/ValentinKolb/apocrypha/rpc/transport/tcp"
	"github.com/ValentinKolb/apocrypha/rpc/transport/unix"
	"github.com/spf13/cobra"
)

// Cmd is the "query" subcommand: apocrypha query [-c] [-s] token [token...].
var Cmd = &cobra.Command{
	Use:     "query [flags] token [token...]",
	Short:   "Send a single query to an Apocrypha server",
	Long:    `Send one tokenized query to a running Apocrypha server and print the response. Each shell argument becomes one token, exactly as the server's engine dispatches them.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: preRun,
	RunE:    run,
}

func init() {
	cobra.OnInitialize(cmdutil.InitConfig)
	cmdutil.SetupClientFlags(Cmd)
	// Flags are parsed only before the first token, so operator tokens such
	// as --keys or -d reach the server unchanged.
	Cmd.Flags().SetInterspersed(false)
	Cmd.Flags().BoolP("context", "c", false, cmdutil.WrapString("Prefix index/search results with their path"))
	Cmd.Flags().BoolP("strict", "s", false, cmdutil.WrapString("Error instead of autovivifying on a missing key"))
}

func preRun(cmd *cobra.Command, _ []string) error {
	return cmdutil.BindCommandFlags(cmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg := cmdutil.ClientConfigFromViper()

	addContext, _ := cmd.Flags().GetBool("context")
	strict, _ := cmd.Flags().GetBool("strict")

	wireTokens := common.EncodeRequestFlags(args, engine.Options{AddContext: addContext, Strict: strict})

	var client transport.Client
	var err error
	if cfg.SocketPath != "" {
		client, err = unix.Dial(*cfg)
	} else {
		client, err = tcp.Dial(*cfg)
	}
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer client.Close()

	resp, err := client.Send(transport.EncodeTokens(wireTokens))
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	for _, line := range transport.DecodeLines(resp) {
		fmt.Println(line)
	}
	return nil
}

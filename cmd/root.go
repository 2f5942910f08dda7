package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/apocrypha/cmd/query"
	"github.com/ValentinKolb/apocrypha/cmd/serve"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	// RootCmd is the base command invoked when apocrypha is run without a
	// subcommand.
	RootCmd = &cobra.Command{
		Use:   "apocrypha",
		Short: "in-memory, schema-less document store",
		Long: fmt.Sprintf(`Apocrypha (v%s)

An in-memory document store keyed by a hierarchical path through nested
mappings, with a small query language for reading and mutating it over TCP.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Apocrypha",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apocrypha v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.AddCommand(serve.Cmd)
	RootCmd.AddCommand(query.Cmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to RootCmd and runs it. Called once by
// main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

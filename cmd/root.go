package cmd

import (
	"fmt"
	"os"

	"github.com/rowan-kv/rowan/cmd/om"
	"github.com/rowan-kv/rowan/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "rowan",
		Short: "persistent ordered map on a key-value store",
		Long: fmt.Sprintf(`rowan (v%s)

A persistent ordered map library written in Go: a self-balancing
search-tree index stored node by node in an unordered key-value store,
with bounded double-ended lazy iteration.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rowan",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rowan v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(om.OrderedMapCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "codec"
	RootCmd.PersistentFlags().String(key, "string", util.WrapString("value codec to use (string, json, gob)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

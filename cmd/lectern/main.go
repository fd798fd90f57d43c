package main

// @title           Lectern API
// @version         1.0
// @description     Book search and summarization API. Lectern aggregates public catalogs and summarizes full texts with a pluggable AI backend.

// @contact.name   Lectern OSS
// @contact.url    https://github.com/custodia-labs/lectern/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:10000
// @BasePath  /api
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin JWT Bearer token. Format: "Bearer {token}"

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/custodia-labs/lectern/docs"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "lectern",
		Short:         "Book search and summarization service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Without a subcommand, run the API and the worker together
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, configPath, true, true)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $LECTERN_CONFIG)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newWorkerCmd(&configPath))
	root.AddCommand(newAllCmd(&configPath))
	root.AddCommand(newSearchCmd(&configPath))
	root.AddCommand(newSummarizeCmd(&configPath))
	root.AddCommand(newHashKeyCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

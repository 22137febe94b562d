package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/client"
	"github.com/BrandonDHaskell/rollcall/internal/config"
	"github.com/BrandonDHaskell/rollcall/internal/logging"
)

const serviceName = "rollcall"

// cli carries state shared by every subcommand once the root pre-run has
// loaded it.
type cli struct {
	cfg       config.Config
	logger    *zap.Logger
	serverURL string
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "rollcall",
		Short:         "Badge-scan attendance server and tools",
		Long:          `rollcall records badge scans as IN/OUT attendance events and reports on them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, serviceName)
			if err != nil {
				return err
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	defaultURL := os.Getenv("ROLLCALL_SERVER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&c.serverURL, "server", defaultURL, "base URL of a running rollcall server")

	root.AddCommand(
		c.serveCmd(),
		c.scanCmd(),
		c.personCmd(),
		c.reportCmd(),
		c.updatesCmd(),
	)
	return root
}

func (c *cli) client() *client.Client {
	return client.New(c.serverURL, c.logger)
}

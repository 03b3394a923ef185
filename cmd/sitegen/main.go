// Command sitegen enumerates the localized routes of the site and pre-renders them to
// a static directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compagnie-lumen.org/web/internal/config"
	"compagnie-lumen.org/web/internal/observability"
	"compagnie-lumen.org/web/internal/site"
)

// cli holds state shared by the subcommands.
type cli struct {
	envFile    string
	configOpts []config.Option

	cfg    config.Config
	logger *zap.Logger
	site   *site.Site
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cli{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "sitegen",
		Short: "Enumerate and pre-render the Compagnie Lumen site",
		Long: `sitegen reads the content store configured through SITE_* variables
and either lists the routes to pre-render or writes the rendered site.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "optional dotenv file")
	root.AddCommand(newRoutesCmd(c), newBuildCmd(c))
	return root
}

func (c *cli) setup() error {
	opts := append([]config.Option{config.WithEnvFile(c.envFile)}, c.configOpts...)
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	c.cfg = cfg

	if c.logger == nil {
		logger, err := observability.NewLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("initialise logger: %w", err)
		}
		c.logger = logger.Named("sitegen")
	}

	s, err := site.FromConfig(cfg, c.logger)
	if err != nil {
		return err
	}
	c.site = s
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lixenwraith/attention-era/config"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "attention-era: %v\n", err)
		os.Exit(1)
	}
}

// options holds the persistent flags
type options struct {
	configPath string
	debug      bool
}

// load reads the config and applies the flags over it
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "attention-era",
		Short: "ATTENTION ERA, a neon resistance broadcast for the terminal",
		Long: `attention-era renders the resistance page in the terminal with its glitch
effects, the CHAOS storm, the attention score and a synthwave loop.

Run without a subcommand to open the page. Type CHAOS anywhere to break the feed.
F2 toggles reduced motion, F3 enables or mutes sound, Esc quits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd.Context(), opts, runFlags{})
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug logs")

	root.AddCommand(newRunCmd(opts), newServeCmd(opts), newConfigCmd(opts))
	return root
}

// runFlags are the page command switches
type runFlags struct {
	withServer bool
	mute       bool
	noAudio    bool
}

func newRunCmd(opts *options) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the page in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd.Context(), opts, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.withServer, "with-server", false, "start the contact endpoint in-process and submit to it")
	cmd.Flags().BoolVar(&flags.mute, "mute", false, "start with sound muted")
	cmd.Flags().BoolVar(&flags.noAudio, "no-audio", false, "disable background audio")
	return cmd
}

// localURL turns a listen address into a loopback base URL
func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

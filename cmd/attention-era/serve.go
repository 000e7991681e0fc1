package main

import (
	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/contact"
	"github.com/lixenwraith/attention-era/logging"
	"github.com/lixenwraith/attention-era/status"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the contact endpoint",
		Long: `serve accepts contact form submissions on POST ` + constants.ContactPath + ` and answers
with an acknowledgement. Submissions are logged, not stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Contact.Addr = addr
			}

			logger, err := logging.NewConsole(cfg.Log.Debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			metrics := status.NewRegistry()
			handler := contact.NewRouter(contact.Options{Logger: logger, Metrics: metrics})
			err = contact.NewServer(cfg.Contact.Addr, handler, logger).Run(cmd.Context())
			logger.Info("contact endpoint stopped", append(metricFields(metrics), zap.Error(err))...)
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	return cmd
}

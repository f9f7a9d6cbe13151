package cli

import (
	"bufio"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the gophauth command tree over cfg. Values from the
// --config file override cfg, explicit flags override both.
func NewRootCmd(cfg *config.Config, dial Dialer) *cobra.Command {
	app := &App{config: cfg, dial: dial}

	var (
		configPath  string
		addr        string
		timeout     time.Duration
		sessionFile string
	)

	cmd := &cobra.Command{
		Use:           "gophauth",
		Short:         "Command-line client for the gophauth credential service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := cfg.LoadFile(configPath); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.ServerEndpointAddr = addr
			}
			if flags.Changed("timeout") {
				cfg.RequestTimeout = timeout
			}
			if flags.Changed("session") {
				cfg.SessionFile = sessionFile
			}

			app.reader = bufio.NewReader(cmd.InOrStdin())
			app.out = cmd.OutOrStdout()
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file path (JSON or YAML)")
	pf.StringVarP(&addr, "addr", "a", cfg.ServerEndpointAddr, "address and port of the gophauth server")
	pf.DurationVar(&timeout, "timeout", cfg.RequestTimeout, "request timeout")
	pf.StringVar(&sessionFile, "session", cfg.SessionFile, "file the token pair is stored in")

	cmd.AddCommand(
		app.registerCmd(),
		app.loginCmd(),
		app.refreshCmd(),
		app.meCmd(),
		app.logoutCmd(),
	)

	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-logr/logr"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mt-inside/muslimkit/pkg/fetch"
	"github.com/mt-inside/muslimkit/pkg/logging"
	"github.com/mt-inside/muslimkit/pkg/state"
	"github.com/mt-inside/muslimkit/pkg/utils"
)

func init() {
	spew.Config.DisableMethods = true
	spew.Config.DisablePointerMethods = true
}

// app is what every subcommand gets once flags, env, and config have been read.
type app struct {
	log         logr.Logger
	sync        func() error
	s           utils.Styler
	requestData *state.RequestData
}

func (a *app) client() *fetch.Client {
	return fetch.New(a.requestData.FetchConfig(a.log))
}

func main() {
	a := &app{sync: func() error { return nil }, s: utils.NewStyler(true)}

	cmd := &cobra.Command{
		Use:           "muslimkit",
		Short:         "Prayer times from api.myquran.com, over a hand-rolled HTTPS/1.1 client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.sync()
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (yaml, json, toml)")
	cmd.PersistentFlags().StringP("host", "a", state.DefaultHost, "Host to connect to; also the SNI ServerName and HTTP Host")
	cmd.PersistentFlags().StringP("port", "p", fetch.DefaultPort, "TCP port")
	cmd.PersistentFlags().Duration("connect-timeout", 0, "Timeout for each of the TCP connect and TLS handshake (0 = none)")
	cmd.PersistentFlags().Duration("read-timeout", 0, "Timeout for each read of the response (0 = none)")
	cmd.PersistentFlags().Duration("write-timeout", 0, "Timeout for writing the request (0 = none)")
	cmd.PersistentFlags().String("resolver", "system", "How to resolve the host: system or dns")
	cmd.PersistentFlags().StringSlice("dns-server", nil, "DNS servers for --resolver=dns (default: from /etc/resolv.conf)")
	cmd.PersistentFlags().Bool("dnssec", false, "Require a DNSSEC-valid answer, validated via /etc/resolv.conf servers (--resolver=dns only)")
	cmd.PersistentFlags().StringSlice("resolve", nil, "Static host=ip overrides, like curl --resolve")
	cmd.PersistentFlags().StringSliceP("ca", "C", nil, "Extra PEM CA bundle(s) to trust, on top of the system roots")
	cmd.PersistentFlags().Int("max-response-bytes", 0, "Fail responses bigger than this (0 = unlimited)")
	cmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().Bool("log-json", false, "Log as JSON")
	cmd.PersistentFlags().Bool("no-color", false, "Don't colour output")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(errors.New("can't set up flags"))
	}

	cmd.AddCommand(
		getCmd(a),
		citiesCmd(a),
		scheduleCmd(a),
		compareCmd(a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		a.s.PrintErr(os.Stderr, err)
		_ = a.sync()
		stop()
		os.Exit(1)
	}
}

func (a *app) setup() error {
	// A missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	viper.SetEnvPrefix("MUSLIMKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	a.s = utils.NewStyler(!viper.GetBool("no-color"))

	log, sync, err := logging.New(viper.GetString("log-level"), viper.GetBool("log-json"))
	if err != nil {
		return err
	}
	a.log, a.sync = log, sync

	rd, err := state.RequestDataFromViper(log)
	if err != nil {
		return err
	}
	a.requestData = rd
	a.log.V(1).Info("Settings", "host", rd.Host, "port", rd.Port, "resolver", rd.ResolverName)

	return nil
}

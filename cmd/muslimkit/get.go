package main

import (
	"context"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mt-inside/muslimkit/pkg/state"
)

func getCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get path",
		Short: "GET one path and show what came back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.get(cmd.Context(), args[0])
		},
	}

	cmd.Flags().Bool("dump", false, "Dump the whole response structure")
	cmd.Flags().Bool("body-only", false, "Print only the body, in full")
	cmd.Flags().Bool("tls", true, "Print TLS summary")
	cmd.Flags().Bool("tls-full", false, "Print TLS summary and resolver details")
	cmd.Flags().Bool("http", true, "Print HTTP summary")
	cmd.Flags().Bool("http-full", false, "Print every response header")
	cmd.Flags().Bool("body", true, "Print the start of the body")
	cmd.Flags().Bool("body-full", false, "Print the whole body")
	cmd.Flags().BoolP("requests", "r", false, "Print what was sent, as well as what was received")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

func (a *app) get(ctx context.Context, path string) error {
	rtData, err := state.DeriveRoundTripData(a.requestData.Host, path)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := a.client().Fetch(ctx, a.requestData.Host, path)
	if err != nil {
		return err
	}

	if viper.GetBool("dump") {
		spew.Dump(resp)
		return nil
	}

	responseData := state.NewResponseData(a.log, start, resp)
	responseData.Print(os.Stdout, a.s, a.requestData, rtData, state.PrintOptsFromViper())

	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mt-inside/muslimkit/pkg/myquran"
)

func citiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "List the cities there are schedules for, and their IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cities(cmd.Context(), viper.GetString("search"))
		},
	}

	cmd.Flags().StringP("search", "s", "", "Only show cities whose name contains this (case-insensitive)")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

func (a *app) myquran() *myquran.Client {
	return &myquran.Client{Fetcher: a.client(), Host: a.requestData.Host, Log: a.log}
}

func (a *app) cities(ctx context.Context, search string) error {
	cs, err := a.myquran().Cities(ctx)
	if err != nil {
		return err
	}

	matches := myquran.FilterCities(cs.Data, search)
	if len(matches) == 0 {
		a.s.PrintWarn(os.Stderr, fmt.Sprintf("No city matches %q", search))
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, c := range matches {
		fmt.Fprintf(tw, "%s\t%s\n", a.s.Addr(c.ID), a.s.Noun(c.Location))
	}
	return tw.Flush()
}

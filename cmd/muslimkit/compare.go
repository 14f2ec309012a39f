package main

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/mt-inside/muslimkit/pkg/fetch"
)

func compareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare path",
		Short: "GET the same path from --host and --against, and diff the bodies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			against := viper.GetString("against")
			if against == "" {
				return fmt.Errorf("--against is required")
			}
			return a.compare(cmd.Context(), args[0], a.requestData.Host, against)
		},
	}

	cmd.Flags().String("against", "", "Host to compare with")
	cmd.Flags().Bool("print-body", false, "Print both bodies as well as the diff")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}

	return cmd
}

func (a *app) compare(ctx context.Context, path, refHost, newHost string) error {
	fmt.Printf("Comparing %s from %s against reference %s\n", a.s.Addr(path), a.s.Addr(newHost), a.s.Addr(refHost))

	resps, err := fetchAll(ctx, a.client(), path, refHost, newHost)
	if err != nil {
		return err
	}
	ref, cand := resps[0], resps[1]

	a.s.Banner(os.Stdout, "Status")
	fmt.Printf("reference %s, new %s\n", a.s.Status(ref.Status), a.s.Status(cand.Status))
	if ref.Status != cand.Status {
		a.s.PrintWarn(os.Stdout, "status codes differ")
	}

	a.s.Banner(os.Stdout, "Differences")

	if viper.GetBool("print-body") {
		fmt.Println("Reference response body:")
		fmt.Println(string(ref.Body))
		fmt.Println("New response body:")
		fmt.Println(string(cand.Body))
		fmt.Println()
	}

	if !utf8.Valid(ref.Body) || !utf8.Valid(cand.Body) {
		a.s.PrintWarn(os.Stdout, "one or more response bodies aren't valid utf-8; diff engine might do unexpected things")
	}
	differ := dmp.New()
	diffs := differ.DiffMain(string(ref.Body), string(cand.Body), true)

	if len(diffs) > 1 || (len(diffs) == 1 && diffs[0].Type != dmp.DiffEqual) {
		a.s.PrintWarn(os.Stdout, "response bodies differ")
		fmt.Println(differ.DiffPrettyText(diffs))
	} else {
		fmt.Println(a.s.Ok("response bodies equal"))
	}

	return nil
}

// fetchAll GETs path from every host at once. If any fail, all the failures are returned, not just the first.
func fetchAll(ctx context.Context, c *fetch.Client, path string, hosts ...string) ([]*fetch.Response, error) {
	resps := make([]*fetch.Response, len(hosts))
	errs := make([]error, len(hosts))

	var g errgroup.Group
	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			var err error
			resps[i], err = c.Fetch(ctx, host, path)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", host, err)
			}
			return errs[i]
		})
	}
	if g.Wait() != nil {
		return nil, multierr.Combine(errs...)
	}

	return resps, nil
}

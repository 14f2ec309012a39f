package main

import (
	"context"
	"net/netip"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/mt-inside/muslimkit/internal/testserver"
	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
	"github.com/mt-inside/muslimkit/pkg/fetch"
	"github.com/mt-inside/muslimkit/pkg/resolver"
)

func TestFetchAll(t *testing.T) {
	srv := testserver.New(t, testserver.RawResponse("HTTP/1.1 200 OK\r\n\r\nsame"))
	c := fetch.New(fetch.Config{
		Port:     srv.Port(),
		RootCAs:  srv.Pool,
		Resolver: &resolver.Static{Hosts: map[string]netip.Addr{"localhost": netip.MustParseAddr("127.0.0.1")}},
		Log:      logr.Discard(),
	})
	ctx := context.Background()

	resps, err := fetchAll(ctx, c, "/", "localhost", "127.0.0.1")
	require.NoError(t, err)
	require.Len(t, resps, 2)
	require.Equal(t, "same", string(resps[0].Body))
	require.Equal(t, "same", string(resps[1].Body))

	_, err = fetchAll(ctx, c, "/", "one.invalid", "two.invalid")
	require.ErrorIs(t, err, httperrors.ResolutionError)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	require.Contains(t, errs[0].Error(), "one.invalid")
	require.Contains(t, errs[1].Error(), "two.invalid")
}

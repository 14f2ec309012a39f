package parser

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	hs := ParseHeaders([]byte("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nx-thing:  a \r\ngarbage line\r\nX-Thing: b"))

	require.Equal(t, "application/json", hs.Get("content-type"))
	require.Equal(t, []string{"a", "b"}, hs.Values("X-Thing"))
	require.Len(t, hs, 2)
}

func TestParseDraft03(t *testing.T) {
	hs := http.Header{}
	hs.Add("x-ratelimit-limit", "42, 69;w=1, 101;w=3600")
	hs.Add("x-ratelimit-remaining", "3")
	hs.Add("x-ratelimit-reset", "11")

	res := ParseRatelimit(logr.Discard(), hs)

	require.Equal(t,
		&Ratelimit{
			Bucket: 42,
			Remain: 3,
			Reset:  11 * time.Second,
			Policies: []RatelimitPolicy{
				{
					Bucket: 69,
					Window: 1 * time.Second,
				},
				{
					Bucket: 101,
					Window: 1 * time.Hour,
				},
			},
		},
		res,
	)
}

func TestParseDraft07(t *testing.T) {
	hs := http.Header{}
	hs.Add("ratelimit", "limit=42, remaining=3, reset=11")
	hs.Add("ratelimit-policy", "69;w=1, 101;w=3600")

	res := ParseRatelimit(logr.Discard(), hs)

	require.Equal(t,
		&Ratelimit{
			Bucket: 42,
			Remain: 3,
			Reset:  11 * time.Second,
			Policies: []RatelimitPolicy{
				{
					Bucket: 69,
					Window: 1 * time.Second,
				},
				{
					Bucket: 101,
					Window: 1 * time.Hour,
				},
			},
		},
		res,
	)
}

func TestParseRatelimitAbsentOrBroken(t *testing.T) {
	require.Nil(t, ParseRatelimit(logr.Discard(), http.Header{}))

	hs := http.Header{}
	hs.Add("x-ratelimit-limit", "lots")
	require.Nil(t, ParseRatelimit(logr.Discard(), hs))
}

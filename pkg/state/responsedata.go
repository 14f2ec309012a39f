package state

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/spf13/viper"

	"github.com/mt-inside/muslimkit/pkg/fetch"
	"github.com/mt-inside/muslimkit/pkg/parser"
	"github.com/mt-inside/muslimkit/pkg/utils"
)

const bodyPreviewLen = 72

type PrintOpts struct {
	Tls, TlsFull   bool
	Http, HttpFull bool
	Body, BodyFull bool
	Requests       bool
}

func PrintOptsFromViper() PrintOpts {
	if viper.GetBool("body-only") {
		return PrintOpts{BodyFull: true}
	}
	return PrintOpts{
		Tls: viper.GetBool("tls"), TlsFull: viper.GetBool("tls-full"),
		Http: viper.GetBool("http"), HttpFull: viper.GetBool("http-full"),
		Body: viper.GetBool("body"), BodyFull: viper.GetBool("body-full"),
		Requests: viper.GetBool("requests"),
	}
}

type ResponseData struct {
	StartTime time.Time
	Duration  time.Duration

	Response *fetch.Response

	HttpHeaders   http.Header
	HttpRatelimit *parser.Ratelimit
}

func NewResponseData(log logr.Logger, start time.Time, resp *fetch.Response) *ResponseData {
	hs := resp.Headers()
	return &ResponseData{
		StartTime:     start,
		Duration:      time.Since(start),
		Response:      resp,
		HttpHeaders:   hs,
		HttpRatelimit: parser.ParseRatelimit(log, hs),
	}
}

func (pD *ResponseData) Print(
	w io.Writer,
	s utils.Styler,
	requestData *RequestData,
	rtData *RoundTripData,
	pO PrintOpts,
) {
	resp := pD.Response

	if pO.Tls || pO.TlsFull {
		s.Banner(w, "TLS")

		if pO.Requests {
			fmt.Fprintf(w, "Request: ")
			if rtData.TlsServerName != "" {
				fmt.Fprintf(w, "SNI ServerName %s\n", s.Addr(rtData.TlsServerName))
			} else {
				fmt.Fprintln(w)
				s.PrintWarn(w, "Not sending SNI ServerName: the host is an address literal.")
			}
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "%s handshake complete with %s (%s)\n",
			s.Noun(resp.Conn.TlsVersionName()),
			s.Addr(resp.Conn.ServerName),
			s.Addr(resp.Conn.Addr.String()),
		)
		fmt.Fprintf(w, "\tSymmetric cypher suite %s\n", s.Noun(resp.Conn.TlsCipherSuiteName()))
		fmt.Fprintf(w, "\tSNI sent? %s\n", s.YesNo(resp.Conn.SNISent))
		fmt.Fprintf(w, "\tHSTS? %s\n", s.YesNo(pD.HttpHeaders.Get("Strict-Transport-Security") != ""))
		if pO.TlsFull && requestData != nil {
			fmt.Fprintf(w, "\tResolver: %s\n", s.Noun(requestData.ResolverName))
		}
	}

	if pO.Http || pO.HttpFull {
		s.Banner(w, "HTTP")

		if pO.Requests {
			fmt.Fprintf(w, "Request: Host %s %s %s\n", s.Addr(rtData.HttpHost), s.Verb("GET"), s.Addr(rtData.HttpPath))
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "%s from %s, in %s\n",
			s.Status(resp.Status),
			s.OptionalString(pD.HttpHeaders.Get("server"), s.NounStyle),
			s.Bright(pD.Duration.Round(time.Millisecond)),
		)
		if resp.Status == parser.StatusUnknown {
			fmt.Fprintf(w, "\tstatus line: %q\n", resp.StatusLine())
		}

		if !pO.HttpFull {
			fmt.Fprintf(w, "\t%s bytes received, %s bytes of %s\n",
				s.Number(resp.RawLen),
				s.Number(len(resp.Body)),
				s.OptionalString(pD.HttpHeaders.Get("content-type"), s.NounStyle),
			)
			if resp.Chunked {
				fmt.Fprintf(w, "\tbody was chunked\n")
			}
		} else {
			keys := make([]string, 0, len(pD.HttpHeaders))
			for k := range pD.HttpHeaders {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "\t%s = %s\n", s.Addr(k), s.List(pD.HttpHeaders[k], s.NounStyle))
			}
		}

		if rl := pD.HttpRatelimit; rl != nil {
			fmt.Fprintf(w, "\tRatelimit: %s of %s remaining, resets in %s\n", s.Bright(rl.Remain), s.Bright(rl.Bucket), s.Bright(rl.Reset))
			for _, p := range rl.Policies {
				fmt.Fprintf(w, "\t\tpolicy: %s per %s\n", s.Noun(p.Bucket), s.Noun(p.Window))
			}
		}
	}

	if pO.Body || pO.BodyFull {
		body := resp.Body
		if pO.Http || pO.HttpFull || pO.Tls || pO.TlsFull {
			s.Banner(w, "Body")

			fmt.Fprintf(w, "%s bytes of body\n", s.Number(len(body)))
			fmt.Fprintf(w, "Valid utf-8? %s\n", s.YesNo(utf8.Valid(body)))
			fmt.Fprintln(w)
		}

		if pO.BodyFull {
			fmt.Fprintf(w, "%s", body)
		} else {
			fmt.Fprint(w, s.Truncate(string(body), bodyPreviewLen)) // assumes utf8
		}
		if len(body) > 0 {
			fmt.Fprintln(w)
		}
	}
}

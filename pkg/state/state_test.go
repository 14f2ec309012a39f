package state

import (
	"bytes"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/mt-inside/muslimkit/pkg/fetch"
	"github.com/mt-inside/muslimkit/pkg/resolver"
	"github.com/mt-inside/muslimkit/pkg/utils"
)

func TestRequestDataDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	rd, err := RequestDataFromViper(logr.Discard())
	require.NoError(t, err)

	require.Equal(t, DefaultHost, rd.Host)
	require.Equal(t, "443", rd.Port)
	require.Zero(t, rd.ConnectTimeout)
	require.Zero(t, rd.ReadTimeout)
	require.Nil(t, rd.TlsServingCAs)
	require.IsType(t, &resolver.System{}, rd.Resolver)
}

func TestRequestDataFromSettings(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("host", "localhost")
	viper.Set("port", "8443")
	viper.Set("read-timeout", "3s")
	viper.Set("resolver", "dns")
	viper.Set("dns-server", []string{"10.0.0.53", "10.0.0.54:5353"})
	viper.Set("resolve", []string{"api.myquran.com=10.1.1.1"})
	viper.Set("max-response-bytes", 1024)

	rd, err := RequestDataFromViper(logr.Discard())
	require.NoError(t, err)

	require.Equal(t, "8443", rd.Port)
	require.Equal(t, 3*time.Second, rd.ReadTimeout)

	static, ok := rd.Resolver.(*resolver.Static)
	require.True(t, ok)
	require.Equal(t, netip.MustParseAddr("10.1.1.1"), static.Hosts["api.myquran.com"])
	dns, ok := static.Fallback.(*resolver.DNS)
	require.True(t, ok)
	require.Equal(t, []string{"10.0.0.53:53", "10.0.0.54:5353"}, dns.Servers)

	cfg := rd.FetchConfig(logr.Discard())
	require.Equal(t, "8443", cfg.Port)
	require.Equal(t, 1024, cfg.MaxResponseBytes)
}

func TestRequestDataInvalid(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"port":     {"port": "https"},
		"resolver": {"resolver": "carrier-pigeon"},
		"timeout":  {"connect-timeout": "-1s"},
		"max":      {"max-response-bytes": -1},
		"static":   {"resolve": []string{"nohost"}},
		"ca":       {"ca": []string{"/nonexistent/ca.pem"}},
	}
	for name, settings := range cases {
		t.Run(name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			for k, v := range settings {
				viper.Set(k, v)
			}

			_, err := RequestDataFromViper(logr.Discard())
			require.Error(t, err)
		})
	}
}

func TestRequestDataCA(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	notPEM := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(notPEM, []byte("not a cert"), 0o600))

	viper.Set("ca", []string{notPEM})
	_, err := RequestDataFromViper(logr.Discard())
	require.Error(t, err)
}

func TestDeriveRoundTripData(t *testing.T) {
	rtd, err := DeriveRoundTripData("API.myquran.com", "/v2/sholat/kota/semua")
	require.NoError(t, err)
	require.Equal(t, "api.myquran.com", rtd.HttpHost)
	require.Equal(t, "api.myquran.com", rtd.TlsServerName)

	rtd, err = DeriveRoundTripData("10.0.0.1", "/")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1", rtd.HttpHost)
	require.Empty(t, rtd.TlsServerName)
}

func TestPrint(t *testing.T) {
	resp := &fetch.Response{
		Status:  429,
		Header:  []byte("HTTP/1.1 429 Too Many Requests\r\nServer: nginx\r\nContent-Type: application/json\r\nX-RateLimit-Limit: 60\r\nX-RateLimit-Remaining: 0\r\nX-RateLimit-Reset: 30"),
		Body:    []byte(`{"status":false,"message":"slow down"}`),
		Chunked: true,
		RawLen:  200,
		Conn: fetch.ConnInfo{
			Addr:       netip.MustParseAddrPort("10.0.0.1:443"),
			ServerName: "api.myquran.com",
			SNISent:    true,
			TlsVersion: 0x0304,
		},
	}
	pD := NewResponseData(logr.Discard(), time.Now(), resp)
	rtd, err := DeriveRoundTripData("api.myquran.com", "/v2/sholat/kota/semua")
	require.NoError(t, err)

	var out bytes.Buffer
	pD.Print(&out, utils.NewStyler(false), nil, rtd, PrintOpts{Tls: true, Http: true, Body: true, Requests: true})

	got := out.String()
	require.Contains(t, got, "== TLS ==")
	require.Contains(t, got, "TLS 1.3 handshake complete with api.myquran.com (10.0.0.1:443)")
	require.Contains(t, got, "SNI ServerName api.myquran.com")
	require.Contains(t, got, "Request: Host api.myquran.com GET /v2/sholat/kota/semua")
	require.Contains(t, got, "429 from nginx")
	require.Contains(t, got, "200 bytes received, 38 bytes of application/json")
	require.Contains(t, got, "body was chunked")
	require.Contains(t, got, "Ratelimit: 0 of 60 remaining, resets in 30s")
	require.Contains(t, got, `{"status":false,"message":"slow down"}`)
}

func TestPrintHttpFull(t *testing.T) {
	resp := &fetch.Response{
		Status: 200,
		Header: []byte("HTTP/1.1 200 OK\r\nVary: Origin\r\nContent-Type: application/json\r\nVary: Accept-Encoding"),
	}
	pD := NewResponseData(logr.Discard(), time.Now(), resp)

	var out bytes.Buffer
	pD.Print(&out, utils.NewStyler(false), nil, &RoundTripData{}, PrintOpts{HttpFull: true})

	got := out.String()
	require.Contains(t, got, "\tContent-Type = application/json\n")
	require.Contains(t, got, "\tVary = Origin, Accept-Encoding\n")
	require.NotContains(t, got, "bytes received")
}

func TestPrintBodyOnly(t *testing.T) {
	resp := &fetch.Response{Status: 200, Header: []byte("HTTP/1.1 200 OK"), Body: []byte("hello")}
	pD := NewResponseData(logr.Discard(), time.Now(), resp)

	var out bytes.Buffer
	pD.Print(&out, utils.NewStyler(false), nil, &RoundTripData{}, PrintOpts{BodyFull: true})
	require.Equal(t, "hello\n", out.String())
}

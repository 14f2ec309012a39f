package state

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/viper"

	"github.com/mt-inside/muslimkit/pkg/fetch"
	"github.com/mt-inside/muslimkit/pkg/resolver"
	"github.com/mt-inside/muslimkit/pkg/utils"
)

const DefaultHost = "api.myquran.com"

type RequestData struct {
	Host string
	Port string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	MaxResponseBytes int

	// Human-readable, for printing
	ResolverName string
	Resolver     resolver.Resolver

	// nil means system roots only
	TlsServingCAs *x509.CertPool
}

/* RequestDataFromViper reads and validates the fetch settings, from flags, MUSLIMKIT_* env vars, or config file.
* Nothing is dialed or resolved here; bad values are reported before any I/O happens.
 */
func RequestDataFromViper(log logr.Logger) (*RequestData, error) {
	requestData := &RequestData{
		Host:             viper.GetString("host"),
		Port:             viper.GetString("port"),
		ConnectTimeout:   viper.GetDuration("connect-timeout"),
		ReadTimeout:      viper.GetDuration("read-timeout"),
		WriteTimeout:     viper.GetDuration("write-timeout"),
		MaxResponseBytes: viper.GetInt("max-response-bytes"),
	}

	if requestData.Host == "" {
		requestData.Host = DefaultHost
	}
	if requestData.Port == "" {
		requestData.Port = fetch.DefaultPort
	}
	if p, err := strconv.ParseUint(requestData.Port, 10, 16); err != nil || p == 0 {
		return nil, fmt.Errorf("invalid port %q", requestData.Port)
	}

	for name, d := range map[string]time.Duration{
		"connect-timeout": requestData.ConnectTimeout,
		"read-timeout":    requestData.ReadTimeout,
		"write-timeout":   requestData.WriteTimeout,
	} {
		if d < 0 {
			return nil, fmt.Errorf("%s can't be negative", name)
		}
	}
	if requestData.MaxResponseBytes < 0 {
		return nil, errors.New("max-response-bytes can't be negative")
	}

	/* Resolver */

	switch viper.GetString("resolver") {
	case "system", "":
		requestData.ResolverName = "system: " + resolver.SystemResolverName
		requestData.Resolver = resolver.NewSystem(log)
	case "dns":
		var servers []string
		for _, s := range viper.GetStringSlice("dns-server") {
			if _, _, err := net.SplitHostPort(s); err != nil {
				s = net.JoinHostPort(s, "53")
			}
			servers = append(servers, s)
		}
		requestData.ResolverName = "manual DNS queries"
		if viper.GetBool("dnssec") {
			requestData.ResolverName += ", DNSSEC required"
		}
		requestData.Resolver = &resolver.DNS{
			Servers: servers,
			DNSSEC:  viper.GetBool("dnssec"),
			Timeout: requestData.ConnectTimeout,
			Log:     log,
		}
	default:
		return nil, fmt.Errorf("unknown resolver %q, want system or dns", viper.GetString("resolver"))
	}

	if overrides := viper.GetStringSlice("resolve"); len(overrides) > 0 {
		hosts, err := resolver.ParseStatic(overrides)
		if err != nil {
			return nil, err
		}
		requestData.ResolverName += fmt.Sprintf(" (%d static overrides)", len(hosts))
		requestData.Resolver = &resolver.Static{Hosts: hosts, Fallback: requestData.Resolver}
	}

	/* Load TLS material */

	if caPaths := viper.GetStringSlice("ca"); len(caPaths) > 0 {
		pool, err := x509.SystemCertPool()
		if err != nil {
			log.Info("Can't load system roots, trusting only given CAs", "error", err)
			pool = x509.NewCertPool()
		}
		for _, caPath := range caPaths {
			bytes, err := os.ReadFile(caPath)
			if err != nil {
				return nil, fmt.Errorf("reading CA bundle: %w", err)
			}
			if !pool.AppendCertsFromPEM(bytes) {
				return nil, fmt.Errorf("no PEM certificates in %s", caPath)
			}
		}
		requestData.TlsServingCAs = pool
	}

	return requestData, nil
}

func (rd *RequestData) FetchConfig(log logr.Logger) fetch.Config {
	return fetch.Config{
		Port:             rd.Port,
		ConnectTimeout:   rd.ConnectTimeout,
		ReadTimeout:      rd.ReadTimeout,
		WriteTimeout:     rd.WriteTimeout,
		MaxResponseBytes: rd.MaxResponseBytes,
		RootCAs:          rd.TlsServingCAs,
		Resolver:         rd.Resolver,
		Log:              log,
	}
}

// RoundTripData is what a fetch of Path from Host will put on the wire.
type RoundTripData struct {
	// Host header value, ASCII form
	HttpHost string
	HttpPath string

	// Name to send for SNI, empty if the host isn't a valid SNI name
	TlsServerName string
}

func DeriveRoundTripData(host, path string) (*RoundTripData, error) {
	ascii, err := fetch.NormalizeHost(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}

	rtd := &RoundTripData{
		HttpHost: ascii,
		HttpPath: path,
	}
	if utils.ServerNameConformant(ascii) {
		rtd.TlsServerName = ascii
	}

	return rtd, nil
}

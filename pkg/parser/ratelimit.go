package parser

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

type RatelimitPolicy struct {
	Bucket uint64
	Window time.Duration
}

type Ratelimit struct {
	Bucket   uint64
	Remain   uint64
	Reset    time.Duration
	Policies []RatelimitPolicy
}

/* Rate limit headers are a draft standard [https://datatracker.ietf.org/doc/draft-ietf-httpapi-ratelimit-headers/]
* Draft 03 is what Envoy and most API gateways emit (x-ratelimit-*)
* Draft 07 folds them into ratelimit / ratelimit-policy
 */
func ParseRatelimit(log logr.Logger, hs http.Header) *Ratelimit {
	/* Note on the log levels:
	 * - nothing is an Error, cause we can gracefully recover
	 * - Info for parse errors, cause either we don't code that case yet, or the origin is buggy
	 * - V(1) for algo trace
	 */

	if limitH := hs.Get("x-ratelimit-limit"); limitH != "" {
		return parseDraft03(log, hs)
	} else if limitH := hs.Get("ratelimit"); limitH != "" {
		return parseDraft07(log, hs)
	} else {
		log.V(1).Info("No ratelimit header")
		return nil
	}
}

func parseDraft03(log logr.Logger, hs http.Header) *Ratelimit {

	/* Format
	 * x-ratelimit-limit: 42, 69;w=1, 101;w=3600 (first expiring bucket, then policies)
	 * x-ratelimit-remaining: 3
	 * x-ratelimit-reset: 11 (seconds)
	 */

	// REQUIRED by the draft
	limitH := hs.Get("x-ratelimit-limit")

	policies := strings.Split(limitH, ",")
	log.V(1).Info("Found ratelimit policies", "count", len(policies)-1)
	expiring, err := strconv.Atoi(strings.TrimSpace(policies[0]))
	if err != nil {
		log.Info("x-ratelimit-limit's expiring-limit doesn't parse", "error", err)
		return nil
	}

	// RECOMMENDED by the draft
	remain, err := strconv.Atoi(hs.Get("x-ratelimit-remaining"))
	if err != nil {
		log.Info("can't parse ratelimit remaining", "error", err)
	}

	// REQUIRED by the draft
	resetN, err := strconv.Atoi(hs.Get("x-ratelimit-reset"))
	if err != nil {
		log.Info("can't parse ratelimit reset duration", "error", err)
	}

	r := &Ratelimit{
		Bucket: uint64(expiring),
		Remain: uint64(remain),
		Reset:  time.Duration(resetN) * time.Second,
	}

	for _, p := range policies[1:] {
		policy, ok := parsePolicy(log, strings.TrimSpace(p))
		if !ok {
			return nil
		}
		r.Policies = append(r.Policies, policy)
	}

	return r
}

func parseDraft07(log logr.Logger, hs http.Header) *Ratelimit {
	/* Format
	 * ratelimit: limit=42, remaining=3, reset=11 (seconds)
	 * ratelimit-policy: 69;w=1, 101;w=3600
	 */

	r := &Ratelimit{}
	for _, item := range strings.Split(hs.Get("ratelimit"), ",") {
		k, v, found := strings.Cut(strings.TrimSpace(item), "=")
		if !found {
			log.Info("unknown ratelimit format", "error", fmt.Errorf("expecting item to have form foo=bar"), "item", item)
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			log.Info("can't parse ratelimit item", "key", k, "error", err)
			return nil
		}
		switch k {
		case "limit":
			r.Bucket = n
		case "remaining":
			r.Remain = n
		case "reset":
			r.Reset = time.Duration(n) * time.Second
		default:
			log.V(1).Info("Unhandled ratelimit item", "item", item)
		}
	}

	if policyH := hs.Get("ratelimit-policy"); policyH != "" {
		for _, p := range strings.Split(policyH, ",") {
			policy, ok := parsePolicy(log, strings.TrimSpace(p))
			if !ok {
				return nil
			}
			r.Policies = append(r.Policies, policy)
		}
	}

	return r
}

func parsePolicy(log logr.Logger, policy string) (RatelimitPolicy, bool) {
	sections := strings.Split(policy, ";")
	log.V(1).Info("Parsed policy", "sections", len(sections))

	bucket, err := strconv.Atoi(sections[0])
	if err != nil {
		log.Info("can't parse ratelimit bucket size", "error", err)
		return RatelimitPolicy{}, false
	}

	p := RatelimitPolicy{Bucket: uint64(bucket)}

	for _, section := range sections[1:] {
		k, v, found := strings.Cut(section, "=")
		if !found {
			log.Info("unknown ratelimit policy format", "error", fmt.Errorf("expecting policy section to have form foo=bar"))
			return RatelimitPolicy{}, false
		}
		switch k {
		// MANDATORY
		case "w":
			window, err := strconv.Atoi(v)
			if err != nil {
				log.Info("can't parse ratelimit window", "error", err)
			} else {
				p.Window = time.Duration(window) * time.Second
			}
		default:
			log.V(1).Info("Unhandled policy statement", "statement", section)
		}
	}

	return p, true
}

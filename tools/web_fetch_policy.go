package tools

import (
	"net"
	"strings"
)

// hostPolicy gates which hosts the fetcher may contact. A nil allow list
// allows every host; an empty non-nil one allows none. Blocks win. Denials
// wrap ErrInvalidArgument.
type hostPolicy struct {
	allowed []string
	blocked []string
}

func newHostPolicy(allowed, blocked []string) hostPolicy {
	p := hostPolicy{}
	if allowed != nil {
		p.allowed = normalizePatterns(allowed)
	}
	p.blocked = normalizePatterns(blocked)
	return p
}

func (p hostPolicy) check(host string) error {
	host = normalizeFetchHost(host)
	if host == "" {
		return invalidArgf("invalid host")
	}
	for _, pattern := range p.blocked {
		if domainMatchesPattern(host, pattern) {
			return invalidArgf("host %s is blocked by policy", host)
		}
	}
	if p.allowed == nil {
		return nil
	}
	if len(p.allowed) == 0 {
		return invalidArgf("no allowed domains configured")
	}
	for _, pattern := range p.allowed {
		if pattern == "*" || domainMatchesPattern(host, pattern) {
			return nil
		}
	}
	return invalidArgf("host %s is not in allowed domains", host)
}

func normalizePatterns(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if p := normalizeDomainPattern(r); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func domainMatchesPattern(host, pattern string) bool {
	if host == "" || pattern == "" {
		return false
	}
	if host == pattern {
		return true
	}
	if net.ParseIP(host) != nil || net.ParseIP(pattern) != nil {
		return false
	}
	return strings.HasSuffix(host, "."+pattern)
}

func normalizeFetchHost(raw string) string {
	h := strings.TrimSpace(raw)
	if h == "" {
		return ""
	}
	if parsedHost, _, err := net.SplitHostPort(h); err == nil {
		h = parsedHost
	}
	h = strings.TrimPrefix(h, "[")
	h = strings.TrimSuffix(h, "]")
	return strings.ToLower(strings.TrimSuffix(h, "."))
}

func normalizeDomainPattern(raw string) string {
	p := strings.ToLower(strings.TrimSpace(raw))
	if p == "" || p == "*" {
		return p
	}
	p = strings.TrimPrefix(p, "*.")
	return normalizeFetchHost(strings.TrimPrefix(p, "."))
}

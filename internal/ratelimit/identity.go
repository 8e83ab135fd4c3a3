package ratelimit

import (
	"fmt"
	"net"
	"strings"
)

const UnknownIdentity = "unknown"

// ProxyPolicy says whether forwarding headers are honoured and which hops inside them
// belong to our own proxies.
type ProxyPolicy struct {
	Trust   bool
	Proxies []*net.IPNet
}

// ParseTrustedProxies reads a comma separated list of IPs or CIDRs.
func ParseTrustedProxies(list string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			ip := net.ParseIP(raw)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", raw)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			raw = fmt.Sprintf("%s/%d", ip, bits)
		}
		_, n, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

func (p ProxyPolicy) isProxy(ip net.IP) bool {
	for _, n := range p.Proxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// headerIP accepts a forwarded address only when it could be the real client: loopback
// and our own proxies never are, so a forged header cannot claim the loopback exemption.
func (p ProxyPolicy) headerIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	ip := net.ParseIP(strings.Trim(raw, "[]"))
	if ip == nil || ip.IsLoopback() || ip.IsUnspecified() || p.isProxy(ip) {
		return "", false
	}
	return ip.String(), true
}

// ClientIdentity picks the identifier a request is counted under.
// Proxy headers are only honoured when the policy trusts them. X-Forwarded-For is read from
// the right, since proxies append and everything left of the last hop is client supplied.
func ClientIdentity(remoteIP, forwardedFor, realIP string, policy ProxyPolicy) string {
	if policy.Trust {
		hops := strings.Split(forwardedFor, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			if id, ok := policy.headerIP(hops[i]); ok {
				return id
			}
		}
		if id, ok := policy.headerIP(realIP); ok {
			return id
		}
	}

	remoteIP = strings.TrimSpace(remoteIP)
	if host, _, err := net.SplitHostPort(remoteIP); err == nil && host != "" {
		return host
	}
	if remoteIP != "" {
		return remoteIP
	}
	return UnknownIdentity
}

func IsLoopback(id string) bool {
	if strings.EqualFold(id, "localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(id, "[]"))
	return ip != nil && ip.IsLoopback()
}

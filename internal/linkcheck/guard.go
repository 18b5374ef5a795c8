package linkcheck

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"
)

// hostGuard refuses URLs whose host is, or resolves to, a non-public address.
// Unresolvable hosts are refused too.
type hostGuard struct {
	resolver      *net.Resolver
	lookupTimeout time.Duration
}

func newHostGuard() *hostGuard {
	return &hostGuard{resolver: net.DefaultResolver, lookupTimeout: 2 * time.Second}
}

func (g *hostGuard) allowed(ctx context.Context, raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u == nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	host := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !isPrivateIP(ip)
	}

	resCtx, cancel := context.WithTimeout(ctx, g.lookupTimeout)
	defer cancel()
	ips, err := g.resolver.LookupIP(resCtx, "ip", host)
	if err != nil || len(ips) == 0 {
		return false
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return false
		}
	}
	return true
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast()
}

package emailcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// DomainResolution is the outcome of a mail-routing capability check.
// Exists is false on every DNS failure mode; Detail always explains why.
type DomainResolution struct {
	Exists bool   `json:"exists"`
	Detail string `json:"detail"`
}

// Resolver determines whether a domain can plausibly receive mail.
// Implementations must honor ctx cancellation and deadlines, and must fold
// every resolver failure into the returned DomainResolution instead of
// surfacing it: DNS problems are data, not errors.
type Resolver interface {
	Resolve(ctx context.Context, domain string) DomainResolution
}

// NetResolver resolves mail-routing capability with the standard library
// resolver: MX lookup first, A lookup as fallback when the domain exists
// but publishes no MX records. It is safe for concurrent use; the timeout
// of each call is whatever deadline the caller puts on ctx, so concurrent
// callers with different timeout requirements never interfere.
type NetResolver struct {
	resolver *net.Resolver
}

// NewNetResolver returns a NetResolver backed by the default resolver.
func NewNetResolver() *NetResolver {
	return &NetResolver{resolver: &net.Resolver{}}
}

// Resolve checks whether domain can receive mail.
func (n *NetResolver) Resolve(ctx context.Context, domain string) DomainResolution {
	mx, err := n.resolver.LookupMX(ctx, domain)
	if err == nil && len(mx) > 0 {
		return DomainResolution{Exists: true, Detail: fmt.Sprintf("found %d MX record(s)", len(mx))}
	}

	var dnsErr *net.DNSError
	switch {
	case err == nil || (errors.As(err, &dnsErr) && dnsErr.IsNotFound):
		// Either an empty answer or "no such host". The latter covers both
		// NXDOMAIN and a domain without MX records, so an A lookup settles it.
		return n.resolveFallback(ctx, domain)
	case errors.As(err, &dnsErr) && dnsErr.IsTimeout:
		return DomainResolution{Detail: fmt.Sprintf("DNS lookup timed out: %v", err)}
	default:
		// Nameserver trouble or an unusual resolver failure. Best-effort
		// hostname resolution is a weaker existence signal than MX, noted
		// in the detail.
		if addrs, herr := n.resolver.LookupHost(ctx, domain); herr == nil && len(addrs) > 0 {
			return DomainResolution{
				Exists: true,
				Detail: fmt.Sprintf("host resolves, but MX lookup was unavailable: %v", err),
			}
		}

		return DomainResolution{Detail: fmt.Sprintf("DNS lookup failed: %v", err)}
	}
}

// resolveFallback decides existence from A records once the MX lookup came
// back empty or not-found.
func (n *NetResolver) resolveFallback(ctx context.Context, domain string) DomainResolution {
	addrs, err := n.resolver.LookupHost(ctx, domain)
	if err == nil && len(addrs) > 0 {
		return DomainResolution{Exists: true, Detail: "no MX records, but an A record exists"}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return DomainResolution{Detail: "domain does not exist"}
	}
	if err != nil {
		return DomainResolution{Detail: fmt.Sprintf("no MX records and A lookup failed: %v", err)}
	}

	return DomainResolution{Detail: "no MX or A records found"}
}

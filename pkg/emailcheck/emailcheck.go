package emailcheck

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDNSTimeout bounds a single domain resolution.
	DefaultDNSTimeout = 5 * time.Second
	// DefaultConcurrency bounds batch fan-out when the caller does not
	// supply a limit.
	DefaultConcurrency = 8
)

// Options configure a Checker. Zero values fall back to the package
// defaults, so Options{} gives the stock engine. The configuration surface
// is deliberately small: the provider and TLD sets, the validity threshold
// and the DNS timeout. Nothing is read from the environment here.
type Options struct {
	// FreeProviders overrides the consumer mail provider set.
	FreeProviders []string
	// LowTrustTLDs overrides the low-trust TLD set.
	LowTrustTLDs []string
	// ValidityThreshold is the minimum score for a well-formed address to
	// be judged valid overall.
	ValidityThreshold float64
	// DNSTimeout bounds each domain resolution call.
	DNSTimeout time.Duration
	// Resolver performs the mail-routing capability check. Defaults to
	// NetResolver.
	Resolver Resolver
}

// Checker runs the full scoring pipeline. It holds no mutable state and is
// safe for any number of concurrent callers; the resolver call is the only
// suspension point and its timeout is scoped per invocation.
type Checker struct {
	rules     []suspicionRule
	threshold float64
	timeout   time.Duration
	resolver  Resolver
}

// New constructs a Checker, applying defaults for unset options.
func New(opts Options) *Checker {
	free := opts.FreeProviders
	if free == nil {
		free = DefaultFreeProviders
	}
	tlds := opts.LowTrustTLDs
	if tlds == nil {
		tlds = DefaultLowTrustTLDs
	}
	threshold := opts.ValidityThreshold
	if threshold == 0 {
		threshold = DefaultValidityThreshold
	}
	timeout := opts.DNSTimeout
	if timeout == 0 {
		timeout = DefaultDNSTimeout
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewNetResolver()
	}

	return &Checker{
		rules:     suspicionRules(toSet(free), toSet(tlds)),
		threshold: threshold,
		timeout:   timeout,
		resolver:  resolver,
	}
}

// DetectSuspicion applies the checker's heuristic table to a single address.
func (c *Checker) DetectSuspicion(address string) SuspicionReport {
	return detectSuspicion(address, c.rules)
}

// Validate scores a single candidate address against an expected brand.
// The DNS step runs only when checkDNS is true and the format gate passed;
// it is bounded by the configured timeout on top of whatever deadline ctx
// already carries. Validate never fails: every problem ends up inside the
// report.
func (c *Checker) Validate(ctx context.Context, address, expectedBrand string, checkDNS bool) ValidationReport {
	address = strings.ToLower(strings.TrimSpace(address))

	format := CheckFormat(address)

	var resolution DomainResolution
	switch {
	case !format.Valid:
		resolution.Detail = "skipped: invalid address"
	case !checkDNS:
		resolution.Detail = "skipped: DNS check disabled"
	default:
		_, domain, _ := splitAddress(address)
		rctx, cancel := context.WithTimeout(ctx, c.timeout)
		resolution = c.resolver.Resolve(rctx, domain)
		cancel()
	}

	brand := MatchBrand(address, expectedBrand)
	suspicion := c.DetectSuspicion(address)

	return compose(format, resolution, brand, suspicion, c.threshold)
}

// ValidateAll scores every address concurrently, bounded by concurrency
// (DefaultConcurrency when <= 0). Results keep input order. One address's
// DNS failure never cancels a sibling: Validate returns failure as data.
func (c *Checker) ValidateAll(ctx context.Context,
	addresses []string,
	expectedBrand string,
	checkDNS bool,
	concurrency int) []ValidationReport {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	reports := make([]ValidationReport, len(addresses))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, addr := range addresses {
		g.Go(func() error {
			reports[i] = c.Validate(ctx, addr, expectedBrand, checkDNS)

			return nil
		})
	}
	// the workers never return errors; Wait only synchronizes
	_ = g.Wait()

	return reports
}

// ValidateText extracts candidate addresses from free text and scores each
// of them with ValidateAll.
func (c *Checker) ValidateText(ctx context.Context,
	text, expectedBrand string,
	checkDNS bool,
	concurrency int) []ValidationReport {
	return c.ValidateAll(ctx, Extract(text), expectedBrand, checkDNS, concurrency)
}

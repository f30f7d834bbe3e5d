package emailcheck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultFreeProviders are consumer mail providers. A support contact on
// one of these is unlikely to be an official organization address.
var DefaultFreeProviders = []string{
	"gmail.com",
	"yahoo.com",
	"yahoo.co.uk",
	"hotmail.com",
	"outlook.com",
	"live.com",
	"aol.com",
	"icloud.com",
	"mail.com",
	"protonmail.com",
	"proton.me",
	"zoho.com",
	"yandex.com",
	"gmx.com",
	"gmx.net",
	"tutanota.com",
	"fastmail.com",
}

// DefaultLowTrustTLDs are TLDs disproportionately used by throwaway and
// fraudulent domains.
var DefaultLowTrustTLDs = []string{
	"xyz",
	"top",
	"click",
	"link",
	"info",
	"biz",
	"win",
	"loan",
	"work",
	"date",
	"racing",
	"review",
	"download",
	"stream",
}

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

const (
	maxReasonableLength = 100
	maxDomainDigits     = 3
	minLettersForVowels = 4
	minVowelRatio       = 0.15
)

// SuspicionReport lists the triggered heuristics and the resulting penalty.
// Penalty is the sum of triggered rule weights, clamped to 1.0; Flags keeps
// trigger order and drives the explanation text.
type SuspicionReport struct {
	Flags   []string `json:"flags,omitempty"`
	Penalty float64  `json:"penalty"`
}

// candidate is an address pre-split for the suspicion rules.
type candidate struct {
	address string
	local   string
	domain  string
	base    string // domain without its final TLD label
	tld     string
}

// suspicionRule pairs a fixed weight with a predicate. The predicate
// returns whether it triggered and the flag text to record.
type suspicionRule struct {
	weight float64
	check  func(c candidate) (bool, string)
}

// suspicionRules builds the fixed, ordered heuristic table. Each rule is
// independent of the others and of network state.
func suspicionRules(freeProviders, lowTrustTLDs map[string]struct{}) []suspicionRule {
	return []suspicionRule{
		{0.40, func(c candidate) (bool, string) {
			_, ok := freeProviders[c.domain]

			return ok, fmt.Sprintf("free email provider: %s", c.domain)
		}},
		{0.30, func(c candidate) (bool, string) {
			_, ok := lowTrustTLDs[c.tld]

			return ok, fmt.Sprintf("low-trust TLD: .%s", c.tld)
		}},
		{0.20, func(c candidate) (bool, string) {
			digits := 0
			for _, r := range c.base {
				if unicode.IsDigit(r) {
					digits++
				}
			}

			return digits > maxDomainDigits, fmt.Sprintf("domain contains many numbers: %d digits", digits)
		}},
		{0.15, func(c candidate) (bool, string) {
			letters, vowels := 0, 0
			for _, r := range strings.ReplaceAll(c.base, "-", "") {
				if !unicode.IsLetter(r) {
					continue
				}
				letters++
				if strings.ContainsRune("aeiou", r) {
					vowels++
				}
			}
			if letters <= minLettersForVowels {
				return false, ""
			}

			return float64(vowels)/float64(letters) < minVowelRatio,
				"domain appears random (low vowel ratio)"
		}},
		{0.10, func(c candidate) (bool, string) {
			hit := strings.HasPrefix(c.local, "no-reply") || strings.HasPrefix(c.local, "noreply")

			return hit, "no-reply address is unlikely to be a support contact"
		}},
		{0.05, func(c candidate) (bool, string) {
			hit := strings.HasPrefix(c.local, "admin") || strings.HasPrefix(c.local, "postmaster")

			return hit, "administrative address is unlikely to be a support contact"
		}},
		{0.10, func(c candidate) (bool, string) {
			return len(c.address) > maxReasonableLength,
				fmt.Sprintf("unusually long address: %d characters", len(c.address))
		}},
		{0.50, func(c candidate) (bool, string) {
			return ipv4Pattern.MatchString(c.domain), "domain is an IP address"
		}},
	}
}

// detectSuspicion evaluates every rule in order and accumulates the capped
// penalty. An address with no "@" short-circuits to a single flag with the
// maximum penalty.
func detectSuspicion(address string, rules []suspicionRule) SuspicionReport {
	address = strings.TrimSpace(address)

	local, domain, ok := splitAddress(address)
	if !ok {
		return SuspicionReport{
			Flags:   []string{"address is not a well-formed email"},
			Penalty: 1.0,
		}
	}

	c := candidate{address: address, local: local, domain: domain, base: domain}
	if i := strings.LastIndex(domain, "."); i >= 0 {
		c.base = domain[:i]
		c.tld = domain[i+1:]
	}

	var report SuspicionReport
	for _, rule := range rules {
		hit, flag := rule.check(c)
		if !hit {
			continue
		}
		report.Flags = append(report.Flags, flag)
		report.Penalty += rule.weight
	}
	if report.Penalty > 1.0 {
		report.Penalty = 1.0
	}

	return report
}

// DetectSuspicion applies the default heuristic table to a single address.
func DetectSuspicion(address string) SuspicionReport {
	return detectSuspicion(address, suspicionRules(toSet(DefaultFreeProviders), toSet(DefaultLowTrustTLDs)))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}

	return set
}

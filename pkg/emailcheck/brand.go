package emailcheck

import (
	"fmt"
	"strings"
)

// Brand match confidence tiers.
const (
	// ConfidenceExact means the domain's base name equals the brand.
	ConfidenceExact = 1.0
	// ConfidenceContains means the brand appears inside the full domain
	// once separators are removed.
	ConfidenceContains = 0.9
	// ConfidenceVariation means a normalized variation of the brand
	// appears inside the domain's base name.
	ConfidenceVariation = 0.8
)

// BrandMatch describes how well an address's domain matches an expected
// organization name.
type BrandMatch struct {
	Matches    bool    `json:"matches"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// MatchBrand compares the domain of address against an expected
// organization name and assigns one of the fixed confidence tiers.
//
// The "contains" tier strips hyphens and dots from the full domain before
// the substring test, which is known to produce false positives for very
// short brand names; that behavior is kept on purpose.
func MatchBrand(address, expectedName string) BrandMatch {
	brand := strings.ToLower(strings.TrimSpace(expectedName))
	if brand == "" {
		return BrandMatch{Reason: "no brand provided"}
	}
	if !CheckFormat(address).Valid {
		return BrandMatch{Reason: "address is not a well-formed email"}
	}

	_, domain, _ := splitAddress(strings.TrimSpace(address))

	// brand.com, brand.co, ...: compare against the domain minus its
	// final TLD label.
	base := domain
	if i := strings.LastIndex(domain, "."); i >= 0 {
		base = domain[:i]
	}

	if base == brand {
		return BrandMatch{
			Matches:    true,
			Confidence: ConfidenceExact,
			Reason:     fmt.Sprintf("domain %q exactly matches brand %q", domain, expectedName),
		}
	}

	// support.brand.com, brand-support.com, ...
	collapsed := strings.NewReplacer("-", "", ".", "").Replace(domain)
	if strings.Contains(collapsed, brand) {
		return BrandMatch{
			Matches:    true,
			Confidence: ConfidenceContains,
			Reason:     fmt.Sprintf("domain %q contains brand %q", domain, expectedName),
		}
	}

	variations := []string{
		brand,
		strings.ReplaceAll(brand, " ", ""),
		strings.ReplaceAll(brand, " ", "-"),
		strings.ReplaceAll(brand, ".", ""),
	}
	for _, v := range variations {
		if strings.Contains(base, v) {
			return BrandMatch{
				Matches:    true,
				Confidence: ConfidenceVariation,
				Reason:     fmt.Sprintf("domain contains brand variation %q", v),
			}
		}
	}

	return BrandMatch{
		Reason: fmt.Sprintf("domain %q does not appear to match brand %q", domain, expectedName),
	}
}

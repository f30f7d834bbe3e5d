package emailcheck

import (
	"fmt"
	"regexp"
	"strings"
)

// fullAddressPattern is a simplified RFC 5322 check. An address must match
// it in full before the finer-grained local/domain rules run.
var fullAddressPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

const (
	maxLocalLength  = 64
	minDomainLength = 3
	maxDomainLength = 255
)

// FormatResult reports the structural validity of a single address.
// Issues is empty iff Valid is true.
type FormatResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// CheckFormat validates the structure of a single email address. The full
// pattern match is a gate: failing it short-circuits with a single issue.
// Otherwise every violated local-part and domain rule is itemized.
func CheckFormat(address string) FormatResult {
	address = strings.TrimSpace(address)
	if address == "" {
		return FormatResult{Issues: []string{"address is empty"}}
	}

	if !fullAddressPattern.MatchString(address) {
		return FormatResult{Issues: []string{"address does not match the RFC 5322 pattern"}}
	}

	at := strings.LastIndex(address, "@")
	local, domain := address[:at], address[at+1:]

	var issues []string

	switch {
	case local == "":
		issues = append(issues, "local part is empty")
	case len(local) > maxLocalLength:
		issues = append(issues, fmt.Sprintf("local part exceeds %d characters", maxLocalLength))
	}
	if strings.HasPrefix(local, ".") {
		issues = append(issues, "local part starts with a period")
	}
	if strings.HasSuffix(local, ".") {
		issues = append(issues, "local part ends with a period")
	}
	if strings.Contains(local, "..") {
		issues = append(issues, "local part contains consecutive periods")
	}

	switch {
	case len(domain) < minDomainLength:
		issues = append(issues, "domain is too short")
	case len(domain) > maxDomainLength:
		issues = append(issues, fmt.Sprintf("domain exceeds %d characters", maxDomainLength))
	}
	if strings.HasPrefix(domain, ".") {
		issues = append(issues, "domain starts with a period")
	}
	if strings.HasPrefix(domain, "-") {
		issues = append(issues, "domain starts with a hyphen")
	}
	if strings.HasSuffix(domain, "-") {
		issues = append(issues, "domain ends with a hyphen")
	}
	if strings.Contains(domain, "..") {
		issues = append(issues, "domain contains consecutive periods")
	}

	return FormatResult{Valid: len(issues) == 0, Issues: issues}
}

// splitAddress returns the local part and domain of an address, lower-cased.
// ok is false when the address has no "@".
func splitAddress(address string) (local, domain string, ok bool) {
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return "", "", false
	}

	return strings.ToLower(address[:at]), strings.ToLower(address[at+1:]), true
}

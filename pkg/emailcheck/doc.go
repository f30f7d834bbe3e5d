// Package emailcheck scores how trustworthy an email address is as a
// contact point for a given organization. It extracts candidate addresses
// from free text, validates structure, resolves mail-routing capability
// over DNS, matches the domain against an expected brand, flags suspicious
// patterns, and composes those signals into a single [0,1] trust score with
// a human-readable explanation.
//
// Every check returns its outcome as data. DNS timeouts, nonexistent
// domains and malformed input all end up inside the ValidationReport, never
// as errors, so batch callers cannot lose sibling results to one bad
// address.
package emailcheck

package emailcheck

import (
	"fmt"
	"strings"
)

// Score composition weights.
const (
	baseScore    = 0.5
	domainWeight = 0.2
	brandWeight  = 0.3

	// DefaultValidityThreshold is the minimum score for an address with a
	// valid format to be considered valid overall.
	DefaultValidityThreshold = 0.30

	legitimateScore = 0.7
	concernedScore  = 0.4

	maxMessageFlags = 3
)

// ValidationReport is the engine's sole output: the component results plus
// a single calibrated trust score, a validity verdict and an explanation.
type ValidationReport struct {
	IsValid   bool             `json:"isValid"`
	Format    FormatResult     `json:"format"`
	Domain    DomainResolution `json:"domain"`
	Brand     BrandMatch       `json:"brand"`
	Suspicion SuspicionReport  `json:"suspicion"`
	Score     float64          `json:"score"`
	Message   string           `json:"message"`
}

// Compose combines the component results into a ValidationReport using the
// default validity threshold.
//
// An invalid format pins the score to 0 regardless of the other signals.
// Otherwise the score starts at 0.5, gains 0.2 for a resolvable domain and
// up to 0.3 for the brand match, and the suspicion penalty scales the total
// down. The result is clamped to [0,1].
func Compose(format FormatResult, domain DomainResolution, brand BrandMatch, suspicion SuspicionReport) ValidationReport {
	return compose(format, domain, brand, suspicion, DefaultValidityThreshold)
}

func compose(format FormatResult,
	domain DomainResolution,
	brand BrandMatch,
	suspicion SuspicionReport,
	threshold float64) ValidationReport {
	var score float64
	if format.Valid {
		score = baseScore + brandWeight*brand.Confidence
		if domain.Exists {
			score += domainWeight
		}
		score *= 1 - suspicion.Penalty

		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
	}

	return ValidationReport{
		IsValid:   format.Valid && score >= threshold,
		Format:    format,
		Domain:    domain,
		Brand:     brand,
		Suspicion: suspicion,
		Score:     score,
		Message:   composeMessage(format, suspicion, score),
	}
}

// composeMessage renders the deterministic human-readable summary.
func composeMessage(format FormatResult, suspicion SuspicionReport, score float64) string {
	if !format.Valid {
		return "invalid email format: " + strings.Join(format.Issues, ", ")
	}

	var msg string
	switch {
	case score >= legitimateScore:
		msg = fmt.Sprintf("address appears legitimate (score: %.2f)", score)
	case score >= concernedScore:
		msg = fmt.Sprintf("address may be valid but has concerns (score: %.2f)", score)
	default:
		msg = fmt.Sprintf("address has significant concerns (score: %.2f)", score)
	}

	if len(suspicion.Flags) > 0 {
		flags := suspicion.Flags
		if len(flags) > maxMessageFlags {
			flags = flags[:maxMessageFlags]
		}
		msg += ". concerns: " + strings.Join(flags, ", ")
	}

	return msg
}

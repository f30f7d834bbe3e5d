package v1handler

import (
	"context"
	"net/http"
	"time"

	"mailtrust/pkg/emailcheck"
	"mailtrust/pkg/serrors"
)

// ValidateRequest is the payload for the synchronous validate endpoint.
// Exactly one of Address or Addresses must be provided.
type ValidateRequest struct {
	// Address is a single candidate address to score.
	Address string `json:"address,omitempty"`
	// Addresses is a batch of candidate addresses scored concurrently.
	Addresses []string `json:"addresses,omitempty"`
	// Brand is the expected organization name, optional.
	Brand string `json:"brand,omitempty"`
	// CheckDNS controls whether domain resolution is part of the scoring.
	// Defaults to true when omitted.
	CheckDNS *bool `json:"checkDns,omitempty"`
	// TimeoutMs bounds the whole scoring run, overriding the configured
	// DNS timeout when shorter. Zero means no per-request bound.
	TimeoutMs int `json:"timeoutMs,omitempty"`
}

// ValidateBatchResponse carries the reports of a batch request in input order.
type ValidateBatchResponse struct {
	Reports []emailcheck.ValidationReport `json:"reports"`
}

// ValidateAddress scores one address or a batch synchronously. Malformed
// addresses are data, not errors: the response is always a report, only an
// empty request is rejected. Single-address requests return the report
// itself, batch requests return the reports in input order.
func (h *Handler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)

		return
	}
	if (req.Address == "") == (len(req.Addresses) == 0) {
		respondError(w, r, serrors.With(serrors.ErrBadRequest, "exactly one of address or addresses is required"))

		return
	}

	checkDNS := true
	if req.CheckDNS != nil {
		checkDNS = *req.CheckDNS
	}

	ctx := r.Context()
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	if req.Address != "" {
		report := h.deps.Checker.Validate(ctx, req.Address, req.Brand, checkDNS)
		h.countVerdict(r, &report)

		respondJSON(w, http.StatusOK, report)

		return
	}

	reports := h.deps.Checker.ValidateAll(ctx, req.Addresses, req.Brand, checkDNS, h.deps.BatchConcurrency)
	for i := range reports {
		h.countVerdict(r, &reports[i])
	}

	respondJSON(w, http.StatusOK, ValidateBatchResponse{Reports: reports})
}

// ExtractRequest is the payload for the extraction endpoint.
type ExtractRequest struct {
	// Text is the free-form text to search for candidate addresses.
	Text string `json:"text"`
}

// ExtractResponse lists the candidate addresses found in the text, lowercased
// and de-duplicated in order of first appearance.
type ExtractResponse struct {
	Candidates []string `json:"candidates"`
}

// ExtractCandidates extracts candidate addresses from free-form text without
// scoring them. Text without any candidate yields an empty list.
func (h *Handler) ExtractCandidates(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, ExtractResponse{
		Candidates: emailcheck.Extract(req.Text),
	})
}

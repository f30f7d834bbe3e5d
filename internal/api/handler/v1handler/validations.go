package v1handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mailtrust/pkg/domain"
	"mailtrust/pkg/emailcheck"
	"mailtrust/pkg/serrors"
)

// Validation is the API representation of a stored validation request.
type Validation struct {
	ID       uuid.UUID `json:"id"`
	Address  string    `json:"address"`
	Brand    string    `json:"brand,omitempty"`
	CheckDNS bool      `json:"checkDns"`
	Status   string    `json:"status"`
	// Report is present once the validation completed.
	Report    *emailcheck.ValidationReport `json:"report,omitempty"`
	Attempts  uint                         `json:"attempts"`
	LastError string                       `json:"lastError,omitempty"`
	CreatedAt time.Time                    `json:"createdAt"`
	UpdatedAt *time.Time                   `json:"updatedAt,omitempty"`
}

// ValidationList is a page of validations with an optional cursor for the
// next page.
type ValidationList struct {
	Items      []Validation `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// DomainValidationToV1 maps a domain validation to its API representation.
func DomainValidationToV1(in *domain.Validation) Validation {
	out := Validation{
		ID:       uuid.UUID(in.ID),
		Address:  in.Address,
		Brand:    in.Brand,
		CheckDNS: in.CheckDNS,
		Status:   string(in.Status),
		Attempts: in.Attempts,
		// last errors are only surfaced for failed validations
		CreatedAt: in.CreatedAt,
	}
	if in.Status == domain.ValidationStatusCompleted {
		report := in.Report
		out.Report = &report
	}
	if in.Status == domain.ValidationStatusFailed {
		out.LastError = in.LastError
	}
	if !in.UpdatedAt.IsZero() {
		updatedAt := in.UpdatedAt
		out.UpdatedAt = &updatedAt
	}

	return out
}

func domainValidationsToV1(in []domain.Validation) []Validation {
	out := make([]Validation, 0, len(in))
	for i := range in {
		out = append(out, DomainValidationToV1(&in[i]))
	}

	return out
}

// CreateValidationsRequest is the payload for enqueueing validations. Exactly
// one of Address or Text must be provided: Address schedules one validation,
// Text schedules one per extracted candidate.
type CreateValidationsRequest struct {
	Address  string `json:"address,omitempty"`
	Text     string `json:"text,omitempty"`
	Brand    string `json:"brand,omitempty"`
	CheckDNS *bool  `json:"checkDns,omitempty"`
}

// CreateValidations stores validations and schedules them for background
// scoring. Responds 202 with the created records, which may already be
// completed when a recent report was reused.
func (h *Handler) CreateValidations(w http.ResponseWriter, r *http.Request) {
	var req CreateValidationsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)

		return
	}
	if (req.Address == "") == (req.Text == "") {
		respondError(w, r, serrors.With(serrors.ErrBadRequest, "exactly one of address or text is required"))

		return
	}

	checkDNS := true
	if req.CheckDNS != nil {
		checkDNS = *req.CheckDNS
	}

	userID := GetUserIDFromContext(r.Context())

	var created []domain.Validation
	if req.Address != "" {
		validation, err := h.deps.Verifier.Request(r.Context(), userID, req.Address, req.Brand, checkDNS)
		if err != nil {
			respondError(w, r, err)

			return
		}
		created = []domain.Validation{*validation}
	} else {
		validations, err := h.deps.Verifier.RequestFromText(r.Context(), userID, req.Text, req.Brand, checkDNS)
		if err != nil {
			respondError(w, r, err)

			return
		}
		created = validations
	}

	respondJSON(w, http.StatusAccepted, ValidationList{Items: domainValidationsToV1(created)})
}

// ListValidations returns a page of the user's validations, newest first.
// Supports cursor, limit and status query parameters.
func (h *Handler) ListValidations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := uint(DefaultLimit)
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 {
			respondError(w, r, serrors.With(serrors.ErrBadRequest, "invalid limit"))

			return
		}
		limit = uint(parsed)
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	status := domain.ValidationStatus(q.Get("status"))
	switch status {
	case "", domain.ValidationStatusPending, domain.ValidationStatusCompleted, domain.ValidationStatusFailed:
	default:
		respondError(w, r, serrors.With(serrors.ErrBadRequest, "invalid status"))

		return
	}

	validations, nextCursor, err := h.deps.Verifier.UserValidations(r.Context(),
		GetUserIDFromContext(r.Context()),
		status,
		q.Get("cursor"),
		limit)
	if err != nil {
		respondError(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, ValidationList{
		Items:      domainValidationsToV1(validations),
		NextCursor: nextCursor,
	})
}

// pathID parses the {id} path parameter as a validation ID.
func pathID(r *http.Request) (domain.ValidationID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return domain.ValidationID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid validation id")
	}

	return domain.ValidationID(id), nil
}

// GetValidation returns a single validation by ID.
func (h *Handler) GetValidation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)

		return
	}

	validation, err := h.deps.Verifier.Result(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		respondError(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, DomainValidationToV1(validation))
}

// DeleteValidation removes a validation by ID.
func (h *Handler) DeleteValidation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)

		return
	}

	if err := h.deps.Verifier.Delete(r.Context(), GetUserIDFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package providers

import "enrichment-workers/internal/models"

// Response is the envelope returned by every single-record provider call.
// CreditsConsumed reflects what the source actually billed, including for
// unsuccessful lookups it charges for.
type Response[T any] struct {
	Success         bool     `json:"success"`
	Data            *T       `json:"data,omitempty"`
	Error           string   `json:"error,omitempty"`
	CreditsConsumed float64  `json:"creditsConsumed"`
	FieldsPopulated []string `json:"fieldsPopulated,omitempty"`
	QualityScore    float64  `json:"qualityScore"`
}

// HasData reports whether the call succeeded with a payload.
func (r *Response[T]) HasData() bool {
	return r != nil && r.Success && r.Data != nil
}

// PaginatedResponse is the envelope for search calls.
type PaginatedResponse[T any] struct {
	Success         bool    `json:"success"`
	Data            []T     `json:"data,omitempty"`
	Error           string  `json:"error,omitempty"`
	CreditsConsumed float64 `json:"creditsConsumed"`
	QualityScore    float64 `json:"qualityScore"`
	TotalResults    int     `json:"totalResults"`
	HasMore         bool    `json:"hasMore"`
	NextCursor      string  `json:"nextCursor,omitempty"`
}

// HasData reports whether the search succeeded with at least one result.
func (r *PaginatedResponse[T]) HasData() bool {
	return r != nil && r.Success && len(r.Data) > 0
}

// Success builds a successful envelope. Populated fields and quality are
// derived from the record when the caller passes a negative quality.
func Success[T any](data *T, credits, quality float64) *Response[T] {
	if quality < 0 {
		quality = models.Completeness(data)
	}
	return &Response[T]{
		Success:         true,
		Data:            data,
		CreditsConsumed: nonNegative(credits),
		FieldsPopulated: models.PopulatedFields(data),
		QualityScore:    clamp01(quality),
	}
}

// Failure builds an unsuccessful envelope carrying whatever was spent.
func Failure[T any](errMsg string, credits float64) *Response[T] {
	return &Response[T]{
		Error:           errMsg,
		CreditsConsumed: nonNegative(credits),
	}
}

// PageSuccess builds a successful search envelope.
func PageSuccess[T any](data []T, credits, quality float64, total int, nextCursor string) *PaginatedResponse[T] {
	return &PaginatedResponse[T]{
		Success:         true,
		Data:            data,
		CreditsConsumed: nonNegative(credits),
		QualityScore:    clamp01(quality),
		TotalResults:    total,
		HasMore:         nextCursor != "",
		NextCursor:      nextCursor,
	}
}

// PageFailure builds an unsuccessful search envelope.
func PageFailure[T any](errMsg string, credits float64) *PaginatedResponse[T] {
	return &PaginatedResponse[T]{
		Error:           errMsg,
		CreditsConsumed: nonNegative(credits),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

package response

import (
	"net/http"
	"strconv"

	"storepulse/internal/dto"
	apperrors "storepulse/internal/errors"
)

// Page reads page and limit query parameters with the given default limit.
func Page(r *http.Request, defaultLimit int) (dto.PageQuery, error) {
	q := dto.PageQuery{Page: 1, Limit: defaultLimit}
	var details []apperrors.ValidationDetail

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details = append(details, apperrors.ValidationDetail{Field: "page", Message: "page must be a positive integer"})
		} else {
			q.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			details = append(details, apperrors.ValidationDetail{Field: "limit", Message: "limit must be between 1 and 100"})
		} else {
			q.Limit = n
		}
	}

	if len(details) > 0 {
		return q, apperrors.NewValidationError("invalid pagination", details...)
	}
	return q, nil
}

// IntParam parses an optional integer query parameter within [min, max].
func IntParam(r *http.Request, name string, def, min, max int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be an integer between " + strconv.Itoa(min) + " and " + strconv.Itoa(max),
		})
	}
	return n, nil
}

package dto

import (
	"time"

	apperrors "storepulse/internal/errors"
)

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type PageQuery struct {
	Page  int `validate:"min=1"`
	Limit int `validate:"min=1,max=100"`
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

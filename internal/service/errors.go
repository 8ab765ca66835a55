package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrQuoteNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "quote")
}

// ErrInvalidQuoteRequest is returned when the location or the job parameters
// cannot be priced.
type ErrInvalidQuoteRequest struct {
	error
}

func NewErrInvalidQuoteRequest(cause error) *ErrInvalidQuoteRequest {
	return &ErrInvalidQuoteRequest{fmt.Errorf("invalid quote request: %w", cause)}
}

type ErrUnsupportedExportFormat struct {
	error
}

func NewErrUnsupportedExportFormat(format string) *ErrUnsupportedExportFormat {
	return &ErrUnsupportedExportFormat{fmt.Errorf("unsupported export format %q", format)}
}

package httpadapter

import (
	"net/http"

	"github.com/kirillkom/document-converter/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrJobNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrEngineInit),
		domain.IsKind(err, domain.ErrConversion),
		domain.IsKind(err, domain.ErrStaging):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

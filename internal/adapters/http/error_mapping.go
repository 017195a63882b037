package httpadapter

import (
	"net/http"

	"github.com/docdigest/docdigest/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case domain.IsKind(err, domain.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrSummarizationUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

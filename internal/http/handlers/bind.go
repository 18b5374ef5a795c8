package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

// bindError maps a gin binding failure to a 400. Empty bodies and failed
// binding tags use missing as the message.
func bindError(err error, missing string) error {
	var (
		maxErr *http.MaxBytesError
		verrs  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &maxErr):
		return apierr.New(apierr.KindInvalidRequest, "Request body too large", err).WithDetails(err.Error())
	case errors.Is(err, io.EOF), errors.As(err, &verrs):
		return apierr.New(apierr.KindInvalidRequest, missing, err)
	default:
		return apierr.New(apierr.KindInvalidRequest, "Invalid request body", err).WithDetails(err.Error())
	}
}

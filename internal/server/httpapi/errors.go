package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taxvault/internal/common"
)

// statusFor maps a service error to a status code and a client-facing
// message. Details of internal failures never reach the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrFileTooLarge),
		errors.Is(err, common.ErrUnsupportedFileType),
		errors.Is(err, common.ErrInvalidName),
		errors.Is(err, common.ErrBadRequest):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, common.ErrFileNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Unauthorized"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrFileTooLarge):
		return "File too large"
	case errors.Is(err, common.ErrUnsupportedFileType):
		return "Invalid file type. Allowed types: PDF, JPEG, PNG, GIF, DOC, DOCX"
	default:
		return err.Error()
	}
}

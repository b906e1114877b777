package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taxvault/internal/common"
	"github.com/dmitrijs2005/taxvault/internal/netx"
)

var (
	ErrUnavailable = errors.New("server unavailable")
)

// mapError converts a netx.StatusError into the matching sentinel while
// keeping the server message.
func mapError(err error) error {
	var se *netx.StatusError
	if !errors.As(err, &se) {
		return err
	}

	var sentinel error
	switch se.Code {
	case http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case http.StatusForbidden:
		sentinel = common.ErrorForbidden
	case http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case http.StatusBadRequest:
		sentinel = common.ErrBadRequest
	default:
		return err
	}

	if se.Message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, se.Message)
}

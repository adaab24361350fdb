package cli

import (
	"errors"

	"github.com/dmitrijs2005/audiokeeper/internal/client/client"
	"github.com/dmitrijs2005/audiokeeper/internal/common"
)

// describe turns an error into a short message for the prompt.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return "please log in first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, common.ErrorNotFound):
		return "not found"
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorConflict):
		return common.Reason(err)
	default:
		return err.Error()
	}
}

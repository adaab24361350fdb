package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/audiokeeper/internal/client/client"
	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{client.ErrNotLoggedIn, "please log in first"},
		{fmt.Errorf("%w: dial tcp", client.ErrUnavailable), "server unavailable, try again later"},
		{fmt.Errorf("%w: gone", common.ErrorNotFound), "not found"},
		{fmt.Errorf("login error: %w", common.Unauthorized("incorrect username or password")), "incorrect username or password"},
		{common.Conflict("username already exists"), "username already exists"},
		{common.Invalid("email must be a valid email address"), "email must be a valid email address"},
		{errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, describe(tt.err))
	}
}

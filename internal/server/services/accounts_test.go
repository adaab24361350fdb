package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_StoresHashAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "alice", "a@x.com")
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Full alice", u.FullName)
	assert.False(t, u.Disabled)

	row, err := f.store.Users().Retrieve(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", row.PasswordHash)
	assert.True(t, strings.HasPrefix(row.PasswordHash, "$2"))
	assert.Equal(t, common.RoleUser, row.Role)

	require.Len(t, f.events.registered, 1)
	assert.Equal(t, u, f.events.registered[0])
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")

	_, err := f.accounts.Register(ctx, RegisterInput{Username: "other", Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "email already exists", common.Reason(err))

	_, err = f.accounts.Register(ctx, RegisterInput{Username: "alice", Email: "b@x.com", Password: "pw"})
	require.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "username already exists", common.Reason(err))

	assert.Len(t, f.events.registered, 1)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.Register(context.Background(), RegisterInput{Username: "bob", Email: "b@x.com", Password: strings.Repeat("p", 80)})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestRegister_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.events.err = errBoom

	_, err := f.accounts.Register(context.Background(), RegisterInput{Username: "bob", Email: "b@x.com", Password: "pw"})
	assert.NoError(t, err)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.accounts.Register(ctx, RegisterInput{
				Username: "racer",
				Email:    fmt.Sprintf("r%d@x.com", i),
				Password: "pw",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrorConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "a@x.com")

	tok, err := f.accounts.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	sub, err := f.tokens.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	for _, tc := range []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", "pw123"},
		{"ALICE", "pw123"},
	} {
		_, err := f.accounts.Login(ctx, tc.user, tc.pass)
		require.ErrorIs(t, err, common.ErrorUnauthorized, "%s/%s", tc.user, tc.pass)
		assert.Equal(t, "incorrect username or password", common.Reason(err))
	}
}

func TestLogin_DisabledUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "a@x.com")

	_, err := f.store.Users().Update(ctx, u.ID, map[string]any{"disabled": true}, nil)
	require.NoError(t, err)

	_, err = f.accounts.Login(ctx, "alice", "pw123")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, "incorrect username or password", common.Reason(err))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "a@x.com")

	tok, err := f.accounts.Login(ctx, "alice", "pw123")
	require.NoError(t, err)

	sub, err := f.accounts.Authenticate(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)

	_, err = f.accounts.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, "could not validate credentials", common.Reason(err))

	expired, err := f.tokens.IssueWithTTL(u.ID, 0)
	require.NoError(t, err)
	_, err = f.accounts.Authenticate(ctx, expired.AccessToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestMeUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice", "a@x.com")
	f.register(t, "bob", "b@x.com")

	me, err := f.accounts.Me(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, me)

	updated, err := f.accounts.UpdateMe(ctx, a.ID, UpdateInput{FullName: strPtr("Alice Liddell")})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	assert.Equal(t, "a@x.com", updated.Email)

	_, err = f.accounts.UpdateMe(ctx, a.ID, UpdateInput{Email: strPtr("a@x.com")})
	require.NoError(t, err, "own email is not a conflict")

	_, err = f.accounts.UpdateMe(ctx, a.ID, UpdateInput{Email: strPtr("b@x.com")})
	require.ErrorIs(t, err, common.ErrorConflict)

	require.NoError(t, f.accounts.DeleteMe(ctx, a.ID))
	assert.Equal(t, []string{a.ID}, f.events.deleted)

	_, err = f.accounts.Me(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, f.accounts.DeleteMe(ctx, a.ID), common.ErrorNotFound)
}

func TestDeletedUserTokenStillVerifiesButNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "a@x.com")

	tok, err := f.accounts.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	sub, err := f.accounts.Authenticate(ctx, tok.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.accounts.DeleteMe(ctx, sub))

	_, err = f.tokens.Verify(tok.AccessToken)
	require.NoError(t, err, "token itself is still valid")

	_, err = f.accounts.Authenticate(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDisabledUserIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice", "a@x.com")

	_, err := f.store.Users().Update(ctx, u.ID, map[string]any{"disabled": true}, nil)
	require.NoError(t, err)

	_, err = f.accounts.Me(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.accounts.UpdateMe(ctx, u.ID, UpdateInput{FullName: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	err = f.accounts.DeleteMe(ctx, u.ID)
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
}

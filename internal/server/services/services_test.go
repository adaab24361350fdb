package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/server/auth"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	"github.com/dmitrijs2005/audiokeeper/internal/server/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu         sync.Mutex
	registered []models.PublicUser
	deleted    []string
	err        error
}

func (p *recordingPublisher) AccountRegistered(_ context.Context, u models.PublicUser) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, u)
	return p.err
}

func (p *recordingPublisher) AccountDeleted(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fakePresigner struct {
	putKeys []string
	getKeys []string
	err     error
}

func (f *fakePresigner) PresignPut(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.putKeys = append(f.putKeys, key)
	return "https://s3.example/put/" + key, nil
}

func (f *fakePresigner) PresignGet(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.getKeys = append(f.getKeys, key)
	return "https://s3.example/get/" + key, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	store     *store.Store
	accounts  *AccountService
	files     *AudioFileService
	tokens    *auth.TokenIssuer
	events    *recordingPublisher
	presigner *fakePresigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, DSN: store.SQLiteDSN(filepath.Join(t.TempDir(), "svc.db"))})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.RunMigrations(ctx))

	tokens, err := auth.NewTokenIssuer("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	pre := &fakePresigner{}

	return &fixture{
		store:     st,
		accounts:  NewAccountService(st.Users(), auth.NewHasher(bcrypt.MinCost), tokens, pub, nil),
		files:     NewAudioFileService(st.AudioFiles(), pre, nil),
		tokens:    tokens,
		events:    pub,
		presigner: pre,
	}
}

func (f *fixture) register(t *testing.T, username, email string) models.PublicUser {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: "pw123",
		FullName: "Full " + username,
	})
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

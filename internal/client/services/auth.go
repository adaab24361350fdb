// Package services contains application services for the AudioKeeper client.
// This file defines the account service: register, login, profile
// management and the in-memory session.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/audiokeeper/internal/client/client"
	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
)

// AuthService defines account operations for the CLI.
//
// The access token lives only in memory; Logout and DeleteAccount drop it.
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, username, email, fullName string, password []byte) (models.User, error)
	Login(ctx context.Context, username string, password []byte) error
	Me(ctx context.Context) (models.User, error)
	Update(ctx context.Context, req models.UpdateRequest) (models.User, error)
	DeleteAccount(ctx context.Context) error
	Logout()
	Token() (string, error)
	LoggedIn() bool
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client

	mu    sync.RWMutex
	token string
}

// NewAuthService constructs an AuthService bound to the given API client.
func NewAuthService(c client.Client) AuthService {
	return &authService{client: c}
}

// Register creates a new account. The caller still has to log in.
func (a *authService) Register(ctx context.Context, username, email, fullName string, password []byte) (models.User, error) {
	return a.client.Register(ctx, models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: string(password),
		FullName: fullName,
	})
}

// Login obtains an access token and keeps it for later calls.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
	return nil
}

func (a *authService) Me(ctx context.Context) (models.User, error) {
	token, err := a.Token()
	if err != nil {
		return models.User{}, err
	}
	return a.client.Me(ctx, token)
}

func (a *authService) Update(ctx context.Context, req models.UpdateRequest) (models.User, error) {
	token, err := a.Token()
	if err != nil {
		return models.User{}, err
	}
	return a.client.UpdateMe(ctx, token, req)
}

// DeleteAccount removes the account on the server and ends the session.
func (a *authService) DeleteAccount(ctx context.Context) error {
	token, err := a.Token()
	if err != nil {
		return err
	}
	if err := a.client.DeleteMe(ctx, token); err != nil {
		return err
	}
	a.Logout()
	return nil
}

func (a *authService) Logout() {
	a.mu.Lock()
	a.token = ""
	a.mu.Unlock()
}

// Token returns the current access token or client.ErrNotLoggedIn.
func (a *authService) Token() (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.token == "" {
		return "", client.ErrNotLoggedIn
	}
	return a.token, nil
}

func (a *authService) LoggedIn() bool {
	_, err := a.Token()
	return err == nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

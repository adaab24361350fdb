package services

import (
	"context"
	"io"

	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
)

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	calls []string

	registerReq models.RegisterRequest
	registerErr error

	loginToken string
	loginErr   error

	me       models.User
	meErr    error
	meToken  string
	updReq   models.UpdateRequest
	deleteMe error

	files      []models.AudioFile
	createReq  models.FileRequest
	createErr  error
	ticket     models.UploadTicket
	uploadURL  error
	uploaded   []byte
	uploadSize int64
	uploadErr  error
	downloadTo string

	pingErr error
}

func (f *fakeClient) Close() error { f.calls = append(f.calls, "close"); return nil }

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) Register(_ context.Context, req models.RegisterRequest) (models.User, error) {
	f.calls = append(f.calls, "register")
	f.registerReq = req
	return models.User{ID: "u-1", Username: req.Username, Email: req.Email, FullName: req.FullName}, f.registerErr
}

func (f *fakeClient) Login(_ context.Context, username string, password []byte) (string, error) {
	f.calls = append(f.calls, "login")
	return f.loginToken, f.loginErr
}

func (f *fakeClient) Me(_ context.Context, token string) (models.User, error) {
	f.calls = append(f.calls, "me")
	f.meToken = token
	return f.me, f.meErr
}

func (f *fakeClient) UpdateMe(_ context.Context, token string, req models.UpdateRequest) (models.User, error) {
	f.calls = append(f.calls, "update")
	f.updReq = req
	return f.me, nil
}

func (f *fakeClient) DeleteMe(context.Context, string) error {
	f.calls = append(f.calls, "delete")
	return f.deleteMe
}

func (f *fakeClient) ListFiles(context.Context, string) ([]models.AudioFile, error) {
	f.calls = append(f.calls, "list")
	return f.files, nil
}

func (f *fakeClient) CreateFile(_ context.Context, _ string, req models.FileRequest) (models.AudioFile, error) {
	f.calls = append(f.calls, "create")
	f.createReq = req
	return models.AudioFile{ID: "f-1", Description: *req.Description, Category: *req.Category}, f.createErr
}

func (f *fakeClient) DeleteFile(_ context.Context, _ string, id string) error {
	f.calls = append(f.calls, "rm "+id)
	return nil
}

func (f *fakeClient) UploadURL(context.Context, string, string) (models.UploadTicket, error) {
	f.calls = append(f.calls, "upload-url")
	return f.ticket, f.uploadURL
}

func (f *fakeClient) DownloadURL(context.Context, string, string) (string, error) {
	return f.downloadTo, nil
}

func (f *fakeClient) Upload(_ context.Context, _ string, body io.Reader, size int64) error {
	f.calls = append(f.calls, "upload")
	f.uploaded, _ = io.ReadAll(body)
	f.uploadSize = size
	return f.uploadErr
}

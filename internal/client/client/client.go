package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Login(ctx context.Context, username string, password []byte) (string, error)
	Me(ctx context.Context, token string) (models.User, error)
	UpdateMe(ctx context.Context, token string, req models.UpdateRequest) (models.User, error)
	DeleteMe(ctx context.Context, token string) error
	ListFiles(ctx context.Context, token string) ([]models.AudioFile, error)
	CreateFile(ctx context.Context, token string, req models.FileRequest) (models.AudioFile, error)
	DeleteFile(ctx context.Context, token, id string) error
	UploadURL(ctx context.Context, token, id string) (models.UploadTicket, error)
	DownloadURL(ctx context.Context, token, id string) (string, error)
	Upload(ctx context.Context, url string, body io.Reader, size int64) error
}

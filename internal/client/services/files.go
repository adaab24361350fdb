package services

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/audiokeeper/internal/client/client"
	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
)

// FileService manages the user's audio files.
type FileService interface {
	List(ctx context.Context) ([]models.AudioFile, error)
	// Add creates a file record and, when path is not empty, uploads the
	// local file to object storage.
	Add(ctx context.Context, description, category, path string) (models.AudioFile, error)
	Remove(ctx context.Context, id string) error
	DownloadURL(ctx context.Context, id string) (string, error)
}

// TokenSource yields the current access token.
type TokenSource interface {
	Token() (string, error)
}

type fileService struct {
	client client.Client
	tokens TokenSource
}

func NewFileService(c client.Client, tokens TokenSource) FileService {
	return &fileService{client: c, tokens: tokens}
}

func (s *fileService) List(ctx context.Context) ([]models.AudioFile, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return nil, err
	}
	return s.client.ListFiles(ctx, token)
}

func (s *fileService) Add(ctx context.Context, description, category, path string) (models.AudioFile, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return models.AudioFile{}, err
	}

	var f *os.File
	var size int64
	if path != "" {
		f, err = os.Open(path)
		if err != nil {
			return models.AudioFile{}, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()

		st, err := f.Stat()
		if err != nil {
			return models.AudioFile{}, fmt.Errorf("stat file: %w", err)
		}
		size = st.Size()
	}

	created, err := s.client.CreateFile(ctx, token, models.FileRequest{
		Description: &description,
		Category:    &category,
	})
	if err != nil {
		return models.AudioFile{}, err
	}

	if f == nil {
		return created, nil
	}

	ticket, err := s.client.UploadURL(ctx, token, created.ID)
	if err != nil {
		return created, fmt.Errorf("get upload url: %w", err)
	}
	if err := s.client.Upload(ctx, ticket.UploadURL, f, size); err != nil {
		return created, fmt.Errorf("upload: %w", err)
	}

	created.AudioData = ticket.AudioData
	return created, nil
}

func (s *fileService) Remove(ctx context.Context, id string) error {
	token, err := s.tokens.Token()
	if err != nil {
		return err
	}
	return s.client.DeleteFile(ctx, token, id)
}

func (s *fileService) DownloadURL(ctx context.Context, id string) (string, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return "", err
	}
	return s.client.DownloadURL(ctx, token, id)
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/audiokeeper/internal/common"
	"github.com/dmitrijs2005/audiokeeper/internal/dbx"
	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/blob"
	"github.com/dmitrijs2005/audiokeeper/internal/server/models"
	"github.com/dmitrijs2005/audiokeeper/internal/server/store"
)

// AudioFileStore is the persistence the audio file service needs.
type AudioFileStore interface {
	Create(ctx context.Context, fields store.Fields, validate store.Validator[models.AudioFile]) (*models.AudioFile, error)
	Retrieve(ctx context.Context, id string) (*models.AudioFile, error)
	RetrieveBy(ctx context.Context, column string, value any) ([]*models.AudioFile, error)
	Update(ctx context.Context, id string, fields store.Fields, validate store.Validator[models.AudioFile]) (*models.AudioFile, error)
	Delete(ctx context.Context, id string) error
}

// Presigner hands out object storage URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// validateOwnerLive requires the owner to be a live user.
var validateOwnerLive = store.LiveReference[models.AudioFile]("user_id", store.UsersTable.Name, "owner does not exist")

// ownedBy hides other users' files behind NotFound.
func ownedBy(owner string) store.Validator[models.AudioFile] {
	return func(_ context.Context, _ dbx.DBTX, f *models.AudioFile) error {
		if f.UserID != owner {
			return common.ErrorNotFound
		}
		return nil
	}
}

// AudioFileInput carries the editable fields. Nil means unchanged. The
// object key is not among them: only UploadURL assigns it.
type AudioFileInput struct {
	Description *string
	Category    *string
}

func (in AudioFileInput) fields() store.Fields {
	f := store.Fields{}
	if in.Description != nil {
		f["description"] = *in.Description
	}
	if in.Category != nil {
		f["category"] = *in.Category
	}
	return f
}

// UploadTicket is where the client should PUT the audio bytes.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	AudioData string `json:"audio_data"`
}

// AudioFileService manages audio files on behalf of their owners.
type AudioFileService struct {
	files     AudioFileStore
	presigner Presigner
	newKey    func(owner string) string
	logger    logging.Logger
}

// NewAudioFileService builds the service. A nil logger discards output.
func NewAudioFileService(files AudioFileStore, presigner Presigner, logger logging.Logger) *AudioFileService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AudioFileService{
		files:     files,
		presigner: presigner,
		newKey:    blob.NewStorageKey,
		logger:    logger.With("module", "audio_files"),
	}
}

// Create stores a new audio file owned by owner.
func (s *AudioFileService) Create(ctx context.Context, owner string, in AudioFileInput) (models.PublicAudioFile, error) {
	fields := in.fields()
	fields["user_id"] = owner

	f, err := s.files.Create(ctx, fields, validateOwnerLive)
	if err != nil {
		return models.PublicAudioFile{}, err
	}
	return f.Public(), nil
}

// List returns the owner's files, oldest first.
func (s *AudioFileService) List(ctx context.Context, owner string) ([]models.PublicAudioFile, error) {
	files, err := s.files.RetrieveBy(ctx, "user_id", owner)
	if err != nil {
		return nil, err
	}

	out := make([]models.PublicAudioFile, 0, len(files))
	for _, f := range files {
		out = append(out, f.Public())
	}
	return out, nil
}

// Get returns one of the owner's files.
func (s *AudioFileService) Get(ctx context.Context, owner, id string) (models.PublicAudioFile, error) {
	f, err := s.owned(ctx, owner, id)
	if err != nil {
		return models.PublicAudioFile{}, err
	}
	return f.Public(), nil
}

// Update changes description or category of one of the owner's files.
func (s *AudioFileService) Update(ctx context.Context, owner, id string, in AudioFileInput) (models.PublicAudioFile, error) {
	f, err := s.files.Update(ctx, id, in.fields(), ownedBy(owner))
	if err != nil {
		return models.PublicAudioFile{}, err
	}
	return f.Public(), nil
}

// Delete removes one of the owner's files.
func (s *AudioFileService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	return s.files.Delete(ctx, id)
}

// UploadURL assigns a fresh storage key to the file and returns a presigned
// PUT URL for it. The URL is signed inside the update transaction, so a
// signing failure leaves the previous key in place.
func (s *AudioFileService) UploadURL(ctx context.Context, owner, id string) (UploadTicket, error) {
	key := s.newKey(owner)

	var url string
	var presign store.Validator[models.AudioFile] = func(ctx context.Context, _ dbx.DBTX, _ *models.AudioFile) error {
		u, err := s.presigner.PresignPut(ctx, key)
		if err != nil {
			s.logger.Error(ctx, "presign put failed", "file_id", id, "error", err)
			return fmt.Errorf("%w: %w", common.ErrorInternal, err)
		}
		url = u
		return nil
	}

	if _, err := s.files.Update(ctx, id, store.Fields{"audio_data": key}, store.Chain(ownedBy(owner), presign)); err != nil {
		return UploadTicket{}, err
	}

	return UploadTicket{UploadURL: url, AudioData: key}, nil
}

// DownloadURL returns a presigned GET URL for the file's stored object.
// A file without an object is NotFound.
func (s *AudioFileService) DownloadURL(ctx context.Context, owner, id string) (string, error) {
	f, err := s.owned(ctx, owner, id)
	if err != nil {
		return "", err
	}
	if f.AudioData == "" || !strings.HasPrefix(f.AudioData, blob.KeyPrefix(owner)) {
		return "", common.ErrorNotFound
	}

	url, err := s.presigner.PresignGet(ctx, f.AudioData)
	if err != nil {
		s.logger.Error(ctx, "presign get failed", "file_id", id, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return url, nil
}

func (s *AudioFileService) owned(ctx context.Context, owner, id string) (*models.AudioFile, error) {
	f, err := s.files.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UserID != owner {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

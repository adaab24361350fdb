package models

// AudioFile describes an audio recording owned by a user. The audio bytes
// live in object storage; AudioData holds the object key.
type AudioFile struct {
	Record
	UserID      string `db:"user_id"`
	Description string `db:"description"`
	Category    string `db:"category"`
	AudioData   string `db:"audio_data"`
}

// PublicAudioFile is the client-facing projection of AudioFile.
type PublicAudioFile struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AudioData   string `json:"audio_data"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   *int64 `json:"updated_at,omitempty"`
}

// Public projects f for clients.
func (f *AudioFile) Public() PublicAudioFile {
	return PublicAudioFile{
		ID:          f.ID,
		UserID:      f.UserID,
		Description: f.Description,
		Category:    f.Category,
		AudioData:   f.AudioData,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

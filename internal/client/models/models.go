// Package models holds the shapes exchanged with the AudioKeeper API.
package models

// User is the public projection of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Disabled bool   `json:"disabled"`
}

// AudioFile is a file record as returned by the server.
type AudioFile struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AudioData   string `json:"audio_data"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   *int64 `json:"updated_at,omitempty"`
}

// UploadTicket is a presigned PUT URL and the storage key it writes to.
type UploadTicket struct {
	UploadURL string `json:"upload_url"`
	AudioData string `json:"audio_data"`
}

// RegisterRequest is the body of POST /accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// UpdateRequest is the body of PATCH /accounts/me. Nil fields are omitted.
type UpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// FileRequest is the body of POST and PATCH /audio_files.
type FileRequest struct {
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

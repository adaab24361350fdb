package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/audiokeeper/internal/client/client"
	"github.com/dmitrijs2005/audiokeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, error) {
	if s == "" {
		return "", client.ErrNotLoggedIn
	}
	return string(s), nil
}

func TestFileService_AddWithoutUpload(t *testing.T) {
	fc := &fakeClient{}
	fs := NewFileService(fc, staticToken("tok"))

	f, err := fs.Add(context.Background(), "demo", "music", "")
	require.NoError(t, err)
	assert.Equal(t, "f-1", f.ID)
	assert.Equal(t, []string{"create"}, fc.calls)
}

func TestFileService_AddUploadsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3 audio"), 0o600))

	fc := &fakeClient{ticket: models.UploadTicket{UploadURL: "http://s3/put", AudioData: "audio/u-1/key"}}
	fs := NewFileService(fc, staticToken("tok"))

	f, err := fs.Add(context.Background(), "demo", "music", path)
	require.NoError(t, err)
	assert.Equal(t, "audio/u-1/key", f.AudioData)
	assert.Equal(t, []string{"create", "upload-url", "upload"}, fc.calls)
	assert.Equal(t, []byte("ID3 audio"), fc.uploaded)
	assert.Equal(t, int64(9), fc.uploadSize)
}

func TestFileService_AddMissingLocalFile(t *testing.T) {
	fc := &fakeClient{}
	fs := NewFileService(fc, staticToken("tok"))

	_, err := fs.Add(context.Background(), "demo", "music", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Empty(t, fc.calls, "nothing is created when the local file is missing")
}

func TestFileService_UploadFailureReturnsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	fc := &fakeClient{uploadErr: errors.New("denied")}
	fs := NewFileService(fc, staticToken("tok"))

	f, err := fs.Add(context.Background(), "demo", "music", path)
	require.Error(t, err)
	assert.Equal(t, "f-1", f.ID)
}

func TestFileService_RequiresLogin(t *testing.T) {
	fs := NewFileService(&fakeClient{}, staticToken(""))

	_, err := fs.List(context.Background())
	require.ErrorIs(t, err, client.ErrNotLoggedIn)
	require.ErrorIs(t, fs.Remove(context.Background(), "f-1"), client.ErrNotLoggedIn)
	_, err = fs.DownloadURL(context.Background(), "f-1")
	require.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestFileService_ListAndRemove(t *testing.T) {
	fc := &fakeClient{files: []models.AudioFile{{ID: "f-1"}, {ID: "f-2"}}, downloadTo: "http://s3/get"}
	fs := NewFileService(fc, staticToken("tok"))

	files, err := fs.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 2)

	require.NoError(t, fs.Remove(context.Background(), "f-2"))
	assert.Contains(t, fc.calls, "rm f-2")

	link, err := fs.DownloadURL(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/get", link)
}

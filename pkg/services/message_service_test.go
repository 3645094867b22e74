package services

import (
	"os"
	"path/filepath"
	"testing"

	"chatd/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessages struct {
	created []models.Message
}

func (f *fakeMessages) Create(chatID, senderID int64, content string, files []string) (models.Message, error) {
	m := models.Message{
		ID:       int64(len(f.created) + 1),
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		Files:    files,
	}
	f.created = append(f.created, m)
	return m, nil
}

func (f *fakeMessages) List(chatID, lastID int64, limit int) ([]models.Message, error) {
	return nil, nil
}

func uploadDummyFile(t *testing.T, baseDir string) string {
	t.Helper()
	file := models.NewChatFile(1, "dummy.txt", []byte("hello world"))
	path := file.Path(baseDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))
	return file.URL()
}

func TestCreateMessage(t *testing.T) {
	baseDir := t.TempDir()
	repo := &fakeMessages{}
	svc := NewMessageService(repo, baseDir)

	url := uploadDummyFile(t, baseDir)

	msg, err := svc.Create(models.CreateMessage{Content: "hello", Files: []string{url}}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, []string{url}, msg.Files)
	assert.Equal(t, int64(1), msg.ChatID)
	assert.Equal(t, int64(2), msg.SenderID)
}

func TestCreateMessageEmptyContent(t *testing.T) {
	svc := NewMessageService(&fakeMessages{}, t.TempDir())

	_, err := svc.Create(models.CreateMessage{Content: ""}, 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateMessageMissingFile(t *testing.T) {
	svc := NewMessageService(&fakeMessages{}, t.TempDir())

	_, err := svc.Create(models.CreateMessage{
		Content: "hello",
		Files:   []string{"/files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt"},
	}, 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateMessageBadFileURL(t *testing.T) {
	svc := NewMessageService(&fakeMessages{}, t.TempDir())

	_, err := svc.Create(models.CreateMessage{Content: "hello", Files: []string{"garbage"}}, 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListClampsLimit(t *testing.T) {
	repo := &recordingMessages{}
	svc := NewMessageService(repo, t.TempDir())

	for _, in := range []int{0, -5, 1000} {
		_, err := svc.List(models.ListMessages{Limit: in}, 1)
		require.NoError(t, err)
		assert.Equal(t, 30, repo.lastLimit, "limit %d should clamp to default", in)
	}

	_, err := svc.List(models.ListMessages{Limit: 10}, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)
}

type recordingMessages struct {
	fakeMessages
	lastLimit int
}

func (r *recordingMessages) List(chatID, lastID int64, limit int) ([]models.Message, error) {
	r.lastLimit = limit
	return nil, nil
}

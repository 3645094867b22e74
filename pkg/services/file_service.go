package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatd/pkg/models"
)

type FileService interface {
	Store(wsID int64, filename string, data []byte) (string, error)
	Resolve(wsID int64, relPath string) (string, error)
}

type fileService struct {
	baseDir string
}

func NewFileService(baseDir string) FileService {
	return &fileService{baseDir: baseDir}
}

// Store writes the file under its content address and returns the URL to
// reference it from messages. Re-uploading identical content is a no-op.
func (s *fileService) Store(wsID int64, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	file := models.NewChatFile(wsID, filename, data)
	path := file.Path(s.baseDir)

	if _, err := os.Stat(path); err == nil {
		return file.URL(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return file.URL(), nil
}

// Resolve maps a requested file path to disk, confined to the caller's
// workspace directory.
func (s *fileService) Resolve(wsID int64, relPath string) (string, error) {
	wsDir := filepath.Join(s.baseDir, fmt.Sprintf("%d", wsID))
	path := filepath.Join(wsDir, filepath.FromSlash(relPath))

	// Reject traversal out of the workspace directory.
	rel, err := filepath.Rel(wsDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPermissionDenied
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: file", ErrNotFound)
	}
	return path, nil
}

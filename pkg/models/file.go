package models

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// ChatFile is a content-addressed reference to an uploaded file. The sha1 of
// the content is the identity; the extension is kept for serving.
type ChatFile struct {
	WsID int64
	Ext  string
	Hash string
}

func NewChatFile(wsID int64, filename string, data []byte) ChatFile {
	sum := sha1.Sum(data)
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "txt"
	}
	return ChatFile{
		WsID: wsID,
		Ext:  ext,
		Hash: hex.EncodeToString(sum[:]),
	}
}

// ParseFileURL parses a URL produced by URL back into a ChatFile.
func ParseFileURL(url string) (ChatFile, error) {
	var f ChatFile
	var first, second, rest string
	_, err := fmt.Sscanf(url, "/files/%d/%3s/%3s/%s", &f.WsID, &first, &second, &rest)
	if err != nil {
		return f, fmt.Errorf("invalid file url %q: %w", url, err)
	}
	dot := strings.LastIndexByte(rest, '.')
	if dot < 0 {
		return f, fmt.Errorf("invalid file url %q: missing extension", url)
	}
	f.Hash = first + second + rest[:dot]
	f.Ext = rest[dot+1:]
	if len(f.Hash) != 40 {
		return f, fmt.Errorf("invalid file url %q: bad hash", url)
	}
	return f, nil
}

func (f ChatFile) URL() string {
	return fmt.Sprintf("/files/%d/%s", f.WsID, f.HashToPath())
}

// HashToPath fans the hash out over two directory levels so no single
// directory accumulates every upload.
func (f ChatFile) HashToPath() string {
	return fmt.Sprintf("%s/%s/%s.%s", f.Hash[:3], f.Hash[3:6], f.Hash[6:], f.Ext)
}

func (f ChatFile) Path(baseDir string) string {
	return filepath.Join(baseDir, fmt.Sprintf("%d", f.WsID), filepath.FromSlash(f.HashToPath()))
}

package handlers

import (
	"io"

	"chatd/pkg/services"

	"github.com/gofiber/fiber/v2"
)

const maxUploadBytes = 10 << 20

type FileHandler struct {
	files services.FileService
}

func NewFiles(files services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload accepts a multipart form and stores each part content-addressed,
// returning the URLs to attach to messages.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	wsID, _ := c.Locals("ws_id").(int64)

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "multipart form required"})
	}

	urls := []string{}
	for _, headers := range form.File {
		for _, fh := range headers {
			if fh.Size > maxUploadBytes {
				return c.Status(413).JSON(fiber.Map{"error": "file too large"})
			}
			f, err := fh.Open()
			if err != nil {
				return fail(c, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return fail(c, err)
			}
			url, err := h.files.Store(wsID, fh.Filename, data)
			if err != nil {
				return fail(c, err)
			}
			urls = append(urls, url)
		}
	}
	return c.JSON(urls)
}

// Download serves a stored file. The path is confined to the caller's
// workspace, so cross-workspace reads come back 403.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	wsID, err := c.ParamsInt("wsid")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid workspace id"})
	}
	callerWs, _ := c.Locals("ws_id").(int64)
	if int64(wsID) != callerWs {
		return c.Status(403).JSON(fiber.Map{"error": "permission denied"})
	}

	path, err := h.files.Resolve(int64(wsID), c.Params("*"))
	if err != nil {
		return fail(c, err)
	}
	return c.SendFile(path)
}

package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"jollybaba-backend/internal/config"
	"jollybaba-backend/internal/storage"
	"jollybaba-backend/pkg/utils"
)

// uploadFields are the multipart field names clients send files under.
var uploadFields = []string{"file", "device_photo", "photo", "images", "attachments"}

const maxFilesPerField = 8

type UploadHandler struct {
	Store  *storage.LocalStore
	Mirror *storage.S3Mirror
	Config *config.Config
}

func NewUploadHandler(store *storage.LocalStore, mirror *storage.S3Mirror, cfg *config.Config) *UploadHandler {
	return &UploadHandler{Store: store, Mirror: mirror, Config: cfg}
}

// Upload accepts one or more files across the known field names and
// returns their public URLs.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.Store.MaxFileSize); err != nil {
		utils.Error(w, http.StatusBadRequest, "UPLOAD_FAILED")
		return
	}
	if r.MultipartForm == nil {
		utils.Error(w, http.StatusBadRequest, "NO_FILES")
		return
	}

	var urls []string
	for _, field := range uploadFields {
		headers := r.MultipartForm.File[field]
		if len(headers) > maxFilesPerField {
			headers = headers[:maxFilesPerField]
		}
		for _, header := range headers {
			url, err := h.saveOne(r, header)
			if err != nil {
				status := http.StatusInternalServerError
				code := "UPLOAD_FAILED"
				if errors.Is(err, storage.ErrFileTooLarge) {
					status, code = http.StatusBadRequest, "FILE_TOO_LARGE"
				} else if errors.Is(err, storage.ErrTypeNotAllowed) {
					status, code = http.StatusBadRequest, "TYPE_NOT_ALLOWED"
				}
				details := ""
				if !h.Config.IsProduction() {
					details = err.Error()
				}
				utils.ErrorWithDetails(w, status, code, details)
				return
			}
			urls = append(urls, url)
		}
	}

	if len(urls) == 0 {
		utils.Error(w, http.StatusBadRequest, "NO_FILES")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"url": urls[0], "urls": urls})
}

func (h *UploadHandler) saveOne(r *http.Request, header *multipart.FileHeader) (string, error) {
	if err := h.Store.ValidateGeneric(header.Filename, header.Size); err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	name := h.Store.GenerateName(header.Filename)
	if err := h.Store.Save(name, data); err != nil {
		return "", err
	}
	if err := h.Mirror.Mirror(r.Context(), name, data, header.Header.Get("Content-Type")); err != nil {
		log.Printf("[Uploads] mirror of %s failed: %v", name, err)
	}
	return h.Store.URL(r, name), nil
}

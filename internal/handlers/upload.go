package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"sales-insight/internal/config"
	"sales-insight/internal/errors"
	"sales-insight/internal/ingest"
	"sales-insight/internal/models"
)

const (
	uploadField     = "file"
	multipartMemory = 32 << 20
)

type upload struct {
	filename string
	size     int64
	dataset  *models.Dataset
}

// readUpload enforces the size and format gate on the multipart "file" field
// and decodes it into a dataset.
func readUpload(r *http.Request, cfg config.UploadConfig) (*upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.PayloadTooLarge(fmt.Sprintf("File exceeds maximum allowed size (%d bytes)", cfg.MaxFileSize))
		}
		return nil, errors.BadRequestWrap(err, "Expected a multipart form upload")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.BadRequest("No file uploaded")
	}
	defer file.Close()

	if header.Size > cfg.MaxFileSize {
		return nil, errors.PayloadTooLarge(fmt.Sprintf("File size (%d bytes) exceeds maximum allowed size (%d bytes)", header.Size, cfg.MaxFileSize))
	}
	if !cfg.Allowed(header.Filename) {
		return nil, errors.UnsupportedMediaType(fmt.Sprintf("Only %s files are supported", strings.Join(cfg.AllowedExtensions, ", ")))
	}

	ds, err := ingest.Read(file, ingest.FormatOf(header.Filename))
	if stderrors.Is(err, ingest.ErrUnsupportedFormat) {
		return nil, errors.UnsupportedMediaType(fmt.Sprintf("Unsupported file type: %s", header.Filename))
	}
	if err != nil {
		return nil, errors.BadRequestWrap(err, "Error reading file")
	}

	return &upload{filename: header.Filename, size: header.Size, dataset: ds}, nil
}

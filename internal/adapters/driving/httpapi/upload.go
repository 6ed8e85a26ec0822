package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// readUpload loads an uploaded file into a RawDocument.
func readUpload(fh *multipart.FileHeader) (*domain.RawDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}

	return &domain.RawDocument{
		URI:      filepath.Base(fh.Filename),
		MIMEType: fh.Header.Get("Content-Type"),
		Content:  content,
	}, nil
}

// formFiles returns the uploaded files under the given fields, in order.
func formFiles(c *gin.Context, op string, limit int64, fields ...string) ([]*multipart.FileHeader, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, op, fmt.Sprintf("upload exceeds the %d MB limit", limit>>20))
			return nil, false
		}
		badRequest(c, op, "no file provided")
		return nil, false
	}

	var files []*multipart.FileHeader
	for _, field := range fields {
		for _, fh := range form.File[field] {
			if fh != nil && fh.Filename != "" {
				files = append(files, fh)
			}
		}
	}
	if len(files) == 0 {
		badRequest(c, op, "no file provided")
		return nil, false
	}
	return files, true
}

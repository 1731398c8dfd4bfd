package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/paydesk/paydesk_backend/internal/dto"
)

// bindPayload binds the request body into out. Plain requests carry a JSON
// body; multipart requests carry the same JSON in a "payload" form field so
// file parts can travel alongside it.
func bindPayload(c *gin.Context, out any) error {
	if c.ContentType() == "multipart/form-data" {
		payload := c.PostForm("payload")
		if payload == "" {
			return errors.New("multipart requests must carry the fields in a 'payload' form field")
		}
		if err := json.Unmarshal([]byte(payload), out); err != nil {
			return err
		}
		return binding.Validator.ValidateStruct(out)
	}
	return c.ShouldBindJSON(out)
}

// formFileUpload opens the named file part if present. The returned closer is
// nil when the part is absent.
func formFileUpload(c *gin.Context, field string) (*dto.FileUpload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &dto.FileUpload{Filename: fh.Filename, Content: f}, f, nil
}

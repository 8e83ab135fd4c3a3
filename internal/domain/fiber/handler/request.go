package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// parseBody fills out from a JSON, urlencoded or multipart body.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &util.AppError{Kind: util.KindValidation, Message: "invalid request body", Err: err}
	}
	return nil
}

// formFile reads an optional multipart upload. A missing field is not an error.
func formFile(c *fiber.Ctx, field string, maxBytes int64) (*dto.UploadedFile, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, &util.AppError{Kind: util.KindValidation, Message: "invalid multipart form", Err: err}
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, util.NewValidationError("invalid request", map[string]string{
			field: fmt.Sprintf("file is too large (max %dMB)", maxBytes/(1024*1024)),
		})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &dto.UploadedFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// jsonFormValue decodes a JSON-encoded multipart field such as weights.
func jsonFormValue(c *fiber.Ctx, field string, out any) error {
	raw := c.FormValue(field)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		var syntaxErr *json.SyntaxError
		msg := "must be a JSON object"
		if errors.As(err, &syntaxErr) {
			msg = "is not valid JSON"
		}
		return util.NewValidationError("invalid request", map[string]string{field: msg})
	}
	return nil
}

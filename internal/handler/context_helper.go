package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/middleware"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
	"github.com/noah-isme/roadsafety-api/pkg/response"
)

// principalFromContext returns the caller or writes a 401 and returns nil.
func principalFromContext(c *gin.Context) *models.Principal {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
		return nil
	}
	return principal
}

// uploadFromForm returns the optional multipart file under field. The returned
// closer is always safe to call.
func uploadFromForm(c *gin.Context, field string) (*dto.FileUpload, func(), error) {
	noop := func() {}
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid file upload")
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	return &dto.FileUpload{Filename: header.Filename, Size: header.Size, Body: file}, func() { _ = file.Close() }, nil
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

package api

import (
	"errors"
	"net/http"

	"foodhub-be/internal/apperr"
	"foodhub-be/internal/storage"
	"foodhub-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	errUnauthenticated = apperr.New(apperr.KindUnauthenticated, "User not authenticated")
	errInvalidID       = apperr.New(apperr.KindValidation, "Invalid id")
)

func currentUser(c *gin.Context) (uuid.UUID, error) {
	id, ok := utils.GetUserIDFromContext(c.Request.Context())
	if !ok {
		return uuid.Nil, errUnauthenticated
	}
	return id, nil
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// formImage opens an optional multipart image. The returned close func is
// never nil.
func formImage(c *gin.Context, field string) (*storage.File, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, apperr.Wrap(apperr.KindValidation, "Invalid file upload", err)
	}
	if fh.Size > storage.MaxImageSize {
		return nil, noop, storage.ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}

	return &storage.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

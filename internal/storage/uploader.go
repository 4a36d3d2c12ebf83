package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"foodhub-be/internal/apperr"
	"foodhub-be/internal/logger"
	"foodhub-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedType = apperr.New(apperr.KindValidation, "Only image uploads are allowed")
	ErrTooLarge        = apperr.New(apperr.KindValidation, "Image exceeds the 5MB limit")
)

// File is an upload received from a client.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Uploader stores an image and returns the public URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, folder string, f File) (string, error)
}

// LocalUploader writes images below a directory that the HTTP server exposes
// at /uploads.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) *LocalUploader {
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (u *LocalUploader) Dir() string { return u.dir }

func (u *LocalUploader) Upload(ctx context.Context, folder string, f File) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("method", "Upload"),
	)

	if !strings.HasPrefix(f.ContentType, "image/") {
		return "", ErrUnsupportedType
	}

	folder = utils.Slugify(folder)
	target := filepath.Join(u.dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + "-" + utils.SafeFileName(f.Name)
	path := filepath.Join(target, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(f.Body, MaxImageSize+1))
	closeErr := out.Close()
	if err == nil && n > MaxImageSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		log.Error("failed to write upload", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("write upload: %w", err)
	}

	log.Info("image stored", zap.String("path", path), zap.Int64("bytes", n))
	return fmt.Sprintf("%s/uploads/%s/%s", u.baseURL, folder, name), nil
}

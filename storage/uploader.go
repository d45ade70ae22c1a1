package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// AvatarKey строит ключ объекта: avatars/<user>/<unix>-<rand><ext>.
// Новый ключ на каждую загрузку, чтобы CDN не отдавал старую картинку.
func AvatarKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("avatars/%s/%d-%s%s", userID, time.Now().Unix(), uuid.NewString()[:8], ext)
}

// KeyFromPublicURL - обратная операция к GetPublicURL для объектов этого загрузчика.
// Для чужих URL (например, аватаров OAuth-провайдера) возвращает false.
func KeyFromPublicURL(u FileUploader, publicURL string) (string, bool) {
	if publicURL == "" {
		return "", false
	}
	base := u.GetPublicURL("/")
	if base == "" || !strings.HasPrefix(publicURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, base)
	if key == "" {
		return "", false
	}
	return key, true
}

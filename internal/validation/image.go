package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	"instaapp/pkg/instaapi"
)

const (
	MaxImageSize = 1 << 20

	imageMessage = "Image must be JPG/PNG/WebP and less than 1MB."
)

var AcceptedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// ValidateImage sniffs the upload content, ignoring the declared type, and
// rewrites ContentType with the detected one on success.
func ValidateImage(upload *instaapi.Upload) error {
	if len(upload.Data) == 0 || len(upload.Data) > MaxImageSize {
		return Errors{"image": imageMessage}
	}

	mtype := mimetype.Detect(upload.Data)
	accepted := lo.ContainsBy(AcceptedImageTypes, func(t string) bool {
		return mtype.Is(t)
	})
	if !accepted {
		return Errors{"image": imageMessage}
	}

	upload.ContentType = mtype.String()
	return nil
}

// LoadImage reads an image from disk into an upload and validates it.
func LoadImage(path string) (*instaapi.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if info.Size() > MaxImageSize {
		return nil, Errors{"image": imageMessage}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	upload := &instaapi.Upload{
		Name: filepath.Base(path),
		Data: data,
	}
	if err := ValidateImage(upload); err != nil {
		return nil, err
	}

	return upload, nil
}

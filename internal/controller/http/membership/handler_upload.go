package membership

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/utdi/ukmik/be/pkg/common/logger"
)

// maxImageSize caps the applicant photo at 5 MB.
const maxImageSize = 5 << 20

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// saveUserImage stores an uploaded applicant photo under
// {uploadDir}/users_image with a unique filename and returns its public URL.
func (h *Handler) saveUserImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxImageSize {
		return "", fmt.Errorf("image exceeds the 5 MB limit")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("only jpg, jpeg and png images are allowed")
	}

	dir := filepath.Join(h.uploadDir, "users_image")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}

	name := fmt.Sprintf("users_image-%s%s", uuid.NewString(), ext)
	dstPath := filepath.Join(dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(src, maxImageSize)); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("store upload: %w", err)
	}

	logger.Debug("saved upload %s (%d bytes)", name, fh.Size)
	return h.baseURL + "uploads/users_image/" + name, nil
}

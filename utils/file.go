package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// SaveUploadFile spools an uploaded file into the upload directory
// under the document id, so concurrent uploads of the same filename
// never collide. Returns the stored path.
func SaveUploadFile(header *multipart.FileHeader, uploadDir, docID string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer src.Close()

	ext := filepath.Ext(header.Filename)
	destPath := filepath.Join(uploadDir, docID+ext)

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %v", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to save uploaded file: %v", err)
	}

	return destPath, nil
}

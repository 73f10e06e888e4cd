package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// allowedCoverTypes are the MIME types accepted for cover images
var allowedCoverTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectFileType sniffs the MIME type of an uploaded file from its content,
// ignoring the client-supplied Content-Type and extension
func DetectFileType(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	return mime.String(), nil
}

// IsPDF reports whether the uploaded file is a PDF document
func IsPDF(file *multipart.FileHeader) bool {
	mime, err := DetectFileType(file)
	return err == nil && mime == "application/pdf"
}

// IsAllowedCoverImage reports whether the uploaded file is a JPEG, PNG or WEBP image
func IsAllowedCoverImage(file *multipart.FileHeader) bool {
	mime, err := DetectFileType(file)
	return err == nil && allowedCoverTypes[mime]
}

// SaveUploadedFile stores an uploaded file under destDir with a unique name
// and returns the stored path
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	// Create a unique filename
	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
	filePath := filepath.Join(destDir, newFilename)

	// Create destination file
	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy the file content
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return filePath, nil
}

func GetFileURL(filePath string) string {
	if filePath == "" {
		return ""
	}
	return "/" + filepath.ToSlash(filePath)
}

package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a *multipart.FileHeader the way a real request would
// deliver it, so DetectFileType exercises the same Open path
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest("POST", "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())

	require.NoError(t, req.ParseMultipartForm(int64(buf.Len())+1024))
	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

func TestIsPDFSniffsContentNotExtension(t *testing.T) {
	assert.True(t, IsPDF(fileHeader(t, "book.pdf", pdfContent)))

	// A PNG renamed to .pdf is still not a PDF
	assert.False(t, IsPDF(fileHeader(t, "sneaky.pdf", pngContent)))
	assert.False(t, IsPDF(fileHeader(t, "plain.pdf", []byte("hello world"))))
}

func TestIsAllowedCoverImage(t *testing.T) {
	assert.True(t, IsAllowedCoverImage(fileHeader(t, "cover.png", pngContent)))
	assert.False(t, IsAllowedCoverImage(fileHeader(t, "cover.png", pdfContent)))
}

func TestSaveUploadedFileKeepsExtensionAndContent(t *testing.T) {
	dir := t.TempDir()
	header := fileHeader(t, "dune.pdf", pdfContent)

	path, err := SaveUploadedFile(header, filepath.Join(dir, "books"))
	require.NoError(t, err)

	assert.Equal(t, ".pdf", filepath.Ext(path))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdfContent, stored)

	// Saving the same upload twice never collides
	path2, err := SaveUploadedFile(header, filepath.Join(dir, "books"))
	require.NoError(t, err)
	assert.NotEqual(t, path, path2)
}

func TestGetFileURL(t *testing.T) {
	assert.Equal(t, "", GetFileURL(""))
	assert.Equal(t, "/uploads/books/a.pdf", GetFileURL(filepath.Join("uploads", "books", "a.pdf")))
}

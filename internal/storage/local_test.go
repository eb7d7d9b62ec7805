package storage

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePhoto(t *testing.T) {
	s := &LocalStore{MaxFileSize: 1024}

	require.NoError(t, s.ValidatePhoto("IMG_0042.JPG", 500, 1024))
	require.NoError(t, s.ValidatePhoto("shot.heic", 500, 1024))
	require.ErrorIs(t, s.ValidatePhoto("report.pdf", 500, 1024), ErrTypeNotAllowed)
	require.ErrorIs(t, s.ValidatePhoto("big.jpg", 2048, 1024), ErrFileTooLarge)
	// zero limit disables the size check
	require.NoError(t, s.ValidatePhoto("big.jpg", 1<<30, 0))
}

func TestValidateGeneric(t *testing.T) {
	s := &LocalStore{MaxFileSize: 1024}

	require.NoError(t, s.ValidateGeneric("invoice.pdf", 100))
	require.NoError(t, s.ValidateGeneric("sticker.gif", 100))
	require.ErrorIs(t, s.ValidateGeneric("malware.exe", 100), ErrTypeNotAllowed)
	require.ErrorIs(t, s.ValidateGeneric("invoice.pdf", 4096), ErrFileTooLarge)
}

func TestGenerateName(t *testing.T) {
	s := &LocalStore{}

	name := s.GenerateName("My Phone Pic (1).jpeg")
	require.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{8}-My_Phone_Pic__1_\.jpeg$`), name)

	// no base survives sanitization
	name = s.GenerateName(".jpg")
	require.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{8}\.jpg$`), name)

	// long base names are truncated
	long := ""
	for i := 0; i < 60; i++ {
		long += "a"
	}
	name = s.GenerateName(long + ".png")
	require.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f]{8}-a{40}\.png$`), name)
}

func TestURL(t *testing.T) {
	s := &LocalStore{}

	r := httptest.NewRequest("GET", "http://shop.local/api/upload", nil)
	require.Equal(t, "http://shop.local/uploads/a.jpg", s.URL(r, "a.jpg"))

	r.Header.Set("X-Forwarded-Proto", "https")
	require.Equal(t, "https://shop.local/uploads/a.jpg", s.URL(r, "a.jpg"))

	s.exposedHost = "files.jollybaba.shop"
	require.Equal(t, "https://files.jollybaba.shop/uploads/a.jpg", s.URL(r, "a.jpg"))
}

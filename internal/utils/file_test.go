package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "jd.txt")
	require.NoError(t, os.WriteFile(small, []byte("React"), 0o600))
	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, make([]byte, 2048), 0o600))

	tests := []struct {
		name    string
		path    string
		maxSize int64
		wantErr string
	}{
		{name: "ok", path: small, maxSize: 1024},
		{name: "no limit", path: big, maxSize: 0},
		{name: "empty name", path: "", wantErr: "filename cannot be empty"},
		{name: "missing", path: filepath.Join(dir, "nope.txt"), wantErr: "file does not exist"},
		{name: "directory", path: dir, wantErr: "is a directory"},
		{name: "too large", path: big, maxSize: 1024, wantErr: "2.0 KB, larger than the 1.0 KB limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.path, tt.maxSize)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "nested", "plan.txt")
	require.NoError(t, ValidateOutputFile(target))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, ValidateOutputFile(""))
	assert.Error(t, ValidateOutputFile(t.TempDir()))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "10.0 MB", FormatFileSize(10*1024*1024))
}

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, ".pdf", GetFileExtension("Posting.PDF"))
	assert.Equal(t, "", GetFileExtension("README"))
}

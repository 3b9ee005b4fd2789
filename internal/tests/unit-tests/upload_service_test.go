package unit_tests

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"webforge/internal/services"
	"webforge/internal/tests/mocks"
)

func TestUploadAttachment_Durable(t *testing.T) {
	var gotName string
	client := &mocks.GenerationClientMock{
		UploadAssetFunc: func(ctx context.Context, projectID uint, name string, data []byte) (string, error) {
			gotName = name
			return "https://assets.webforge.app/" + name, nil
		},
	}
	svc := services.NewUploadService(client)
	svc.Startup(context.Background())

	att, err := svc.UploadAttachment(context.Background(), 1, "logo.png", "image/png", []byte{1, 2, 3})
	assert.NoError(t, err)
	assert.True(t, att.Durable)
	assert.Equal(t, "logo.png", att.Name)
	assert.True(t, strings.HasPrefix(att.URL, "https://"))

	// Object names are unique per upload but keep the sanitized original.
	assert.True(t, strings.HasSuffix(gotName, "-logo.png"), "object name %q", gotName)
}

func TestUploadAttachment_FallbackOnFailure(t *testing.T) {
	client := &mocks.GenerationClientMock{
		UploadAssetFunc: func(ctx context.Context, projectID uint, name string, data []byte) (string, error) {
			return "", errors.New("bucket unavailable")
		},
	}
	svc := services.NewUploadService(client)
	svc.Startup(context.Background())

	data := []byte("image bytes")
	att, err := svc.UploadAttachment(context.Background(), 1, "photo.jpg", "image/jpeg", data)
	assert.NoError(t, err, "fallback never blocks the conversation")
	assert.False(t, att.Durable)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(data), att.URL)
}

func TestUploadAttachment_RejectsEmptyData(t *testing.T) {
	svc := services.NewUploadService(&mocks.GenerationClientMock{})
	svc.Startup(context.Background())

	_, err := svc.UploadAttachment(context.Background(), 1, "empty.bin", "", nil)
	assert.Error(t, err)
}

func TestCollectAssets_GlobsAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel, content string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	mustWrite("images/logo.png", "png")
	mustWrite("images/nested/icon.png", "png")
	mustWrite("notes.txt", "text")

	svc := services.NewUploadService(&mocks.GenerationClientMock{})
	svc.Startup(context.Background())

	// Overlapping patterns match the same files once; directories are skipped.
	assets, err := svc.CollectAssets(root, []string{"**/*.png", "images/**/*.png"})
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "images", "logo.png"),
		filepath.Join(root, "images", "nested", "icon.png"),
	}, assets)

	_, err = svc.CollectAssets("", []string{"*.png"})
	assert.Error(t, err)
}

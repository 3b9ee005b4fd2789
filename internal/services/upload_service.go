package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/yargevad/filepathx"

	"webforge/internal/events"
)

// Attachment is one uploaded conversation asset. Durable is false when the
// upload failed and the data-URL fallback was embedded instead; the
// conversation proceeds either way.
type Attachment struct {
	Name    string
	URL     string
	Durable bool
}

type UploadService interface {
	Startup(ctx context.Context)
	// CollectAssets expands glob patterns (including **) under root into
	// local file paths, sorted for stable upload order.
	CollectAssets(root string, patterns []string) ([]string, error)
	// UploadAttachment stores data durably BEFORE the owning turn persists,
	// so turns reference durable URLs. On failure it falls back to the raw
	// local encoding rather than blocking the conversation.
	UploadAttachment(ctx context.Context, projectID uint, name, mimeType string, data []byte) (*Attachment, error)
}

type uploadService struct {
	client GenerationClient
	ctx    context.Context
}

func NewUploadService(client GenerationClient) UploadService {
	return &uploadService{client: client}
}

func (s *uploadService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *uploadService) CollectAssets(root string, patterns []string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := filepathx.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *uploadService) UploadAttachment(ctx context.Context, projectID uint, name, mimeType string, data []byte) (*Attachment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("attachment data is empty")
	}
	if name == "" {
		name = "attachment"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	// A unique object name avoids collisions between same-named uploads.
	objectName := uuid.NewString() + "-" + sanitizeAssetName(name)

	url, err := s.client.UploadAsset(ctx, projectID, objectName, data)
	if err == nil {
		return &Attachment{Name: name, URL: url, Durable: true}, nil
	}

	log.Printf("upload: %q failed (%v), embedding local encoding instead", name, err)
	events.Emit(ctx, events.Event{
		Type:      events.EventUploadFallback,
		ProjectID: projectID,
		Message:   fmt.Sprintf("upload of %q failed; attachment embedded with reduced durability", name),
	})
	return &Attachment{
		Name:    name,
		URL:     "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Durable: false,
	}, nil
}

func sanitizeAssetName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}

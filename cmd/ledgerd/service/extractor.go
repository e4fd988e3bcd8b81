package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/remixlabs/ledger/common/models"
)

// MetadataExtractor derives the media kind and tags of an upload.
// External collaborator: the production implementation inspects the media
// pipeline's extracted metadata.
type MetadataExtractor interface {
	Extract(ctx context.Context, fileRef, name string) (models.MediaKind, []string, error)
}

// FormatNormalizer derives the normalized storage format of an upload.
// External collaborator, same as MetadataExtractor.
type FormatNormalizer interface {
	Normalize(ctx context.Context, fileRef, name string) (string, error)
}

// ExtensionExtractor classifies uploads by file extension. Default
// implementation of both collaborator interfaces until the media pipeline
// is wired in.
type ExtensionExtractor struct{}

var kindByExtension = map[string]models.MediaKind{
	".mp3":  models.KindAudio,
	".wav":  models.KindAudio,
	".flac": models.KindAudio,
	".ogg":  models.KindAudio,
	".mp4":  models.KindVideo,
	".mov":  models.KindVideo,
	".webm": models.KindVideo,
	".mkv":  models.KindVideo,
	".png":  models.KindImage,
	".jpg":  models.KindImage,
	".jpeg": models.KindImage,
	".gif":  models.KindImage,
	".webp": models.KindImage,
	".txt":  models.KindText,
	".md":   models.KindText,
	".pdf":  models.KindText,
}

// Extract classifies by extension; unknown extensions map to KindOther
// with no tags
func (ExtensionExtractor) Extract(_ context.Context, _, name string) (models.MediaKind, []string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	kind, ok := kindByExtension[ext]
	if !ok {
		return models.KindOther, []string{}, nil
	}

	tags := []string{string(kind)}
	if ext != "" {
		tags = append(tags, strings.TrimPrefix(ext, "."))
	}

	return kind, tags, nil
}

// Normalize returns the lowercased extension without the leading dot,
// or "bin" when there is none
func (ExtensionExtractor) Normalize(_ context.Context, _, name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "bin", nil
	}
	return ext, nil
}

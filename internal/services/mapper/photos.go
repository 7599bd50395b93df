package mapper

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"vehicle_finance/internal/ports"
	"vehicle_finance/internal/utils"
)

const defaultMaxPhotoBytes = 5 << 20

// PhotoLoader turns a photo reference (local path, http(s) URL or
// s3://bucket/key) into a data URI.
type PhotoLoader struct {
	Opener   ports.FileOpener
	MaxBytes int64
}

func NewPhotoLoader(op ports.FileOpener) *PhotoLoader {
	return &PhotoLoader{Opener: op, MaxBytes: defaultMaxPhotoBytes}
}

// Load returns the placeholder for an empty ref and passes data URIs through.
func (p *PhotoLoader) Load(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return utils.NoPhoto(), nil
	}
	if strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	if p == nil || p.Opener == nil {
		return "", fmt.Errorf("photo %q: no opener configured", ref)
	}

	rc, meta, err := p.Opener.Open(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("photo %q: %w", ref, err)
	}
	defer rc.Close()

	limit := p.MaxBytes
	if limit <= 0 {
		limit = defaultMaxPhotoBytes
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", fmt.Errorf("photo %q: %w", ref, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("photo %q: larger than %d bytes", ref, limit)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("photo %q: empty", ref)
	}
	return utils.DataURI(meta.ContentType, path.Base(ref), data), nil
}

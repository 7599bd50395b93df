package opener

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/ports"
)

// FileOpener opens local paths. Relative paths resolve against Root.
type FileOpener struct {
	Root string
	log  *zap.Logger
}

func NewFileOpener(root string, log *zap.Logger) *FileOpener {
	return &FileOpener{Root: root, log: logger.OrNop(log)}
}

func (f *FileOpener) Open(_ context.Context, p string) (io.ReadCloser, ports.Meta, error) {
	if p == "" {
		return nil, ports.Meta{}, fmt.Errorf("empty path")
	}
	full := p
	if !filepath.IsAbs(p) && f.Root != "" {
		full = filepath.Join(f.Root, p)
	}

	fh, err := os.Open(full)
	if err != nil {
		f.log.Debug("[OPENER][FILE][ERR] open", zap.String("path", full), zap.Error(err))
		return nil, ports.Meta{}, err
	}
	st, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, ports.Meta{}, err
	}
	if st.IsDir() {
		_ = fh.Close()
		return nil, ports.Meta{}, fmt.Errorf("%s is a directory", full)
	}

	return fh, ports.Meta{
		Source:      "file",
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(full))),
		Size:        st.Size(),
		Key:         full,
	}, nil
}

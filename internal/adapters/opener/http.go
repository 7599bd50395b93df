package opener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"vehicle_finance/internal/logger"
	"vehicle_finance/internal/ports"
)

type HTTPOpener struct {
	Client *http.Client
	log    *zap.Logger
}

func NewHTTPOpener(cli *http.Client, log *zap.Logger) *HTTPOpener {
	if cli == nil {
		cli = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPOpener{Client: cli, log: logger.OrNop(log)}
}

func (h *HTTPOpener) Open(ctx context.Context, url string) (io.ReadCloser, ports.Meta, error) {
	h.log.Debug("[OPENER][HTTP][START]", zap.String("url", url))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ports.Meta{}, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		h.log.Warn("[OPENER][HTTP][ERR] do request", zap.String("url", url), zap.Error(err))
		return nil, ports.Meta{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		h.log.Warn("[OPENER][HTTP][ERR] bad status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("content_type", resp.Header.Get("Content-Type")))
		return nil, ports.Meta{}, fmt.Errorf("http status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	size := resp.ContentLength
	if size < 0 {
		size = -1
	}
	h.log.Debug("[OPENER][HTTP][OK]", zap.String("content_type", ct), zap.Int64("size", size))
	return resp.Body, ports.Meta{
		Source:      "https",
		ContentType: ct,
		Size:        size,
	}, nil
}

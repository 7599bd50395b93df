package mapper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"vehicle_finance/internal/models"
	"vehicle_finance/internal/ports"
)

func encode(contracts []models.MobileContract) ([]byte, error) {
	if contracts == nil {
		contracts = []models.MobileContract{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contracts); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes contracts as an indented JSON array.
func WriteJSON(w io.Writer, contracts []models.MobileContract) error {
	data, err := encode(contracts)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteTS writes a TypeScript module the mobile client can bundle directly.
func WriteTS(w io.Writer, res *Result, generated time.Time) error {
	data, err := encode(res.Contracts)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "// Auto-generated by vehicle_finance mapper\n")
	fmt.Fprintf(bw, "// Generated on: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "// Total contracts: %d\n", len(res.Contracts))
	fmt.Fprintf(bw, "// Profile: %s\n\n", res.Profile)
	fmt.Fprintf(bw, "export const MOCK_CONTRACTS = %s;\n\n", data)
	fmt.Fprintf(bw, "export const MOCK_CREDENTIALS = {\n  username: 'admin',\n  password: 'admin123'\n};\n")
	return bw.Flush()
}

// WriteFile creates path (and its directory) and fills it with write.
func WriteFile(p string, write func(io.Writer) error) error {
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// TSPath derives the TypeScript artifact path from the JSON one.
func TSPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".ts"
}

type Uploader interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publish uploads each file under prefix and returns the object keys.
func Publish(ctx context.Context, up Uploader, bucket, prefix string, files ...string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := path.Join(prefix, filepath.Base(f))
		ct := "application/json"
		if strings.HasSuffix(f, ".ts") {
			ct = "application/typescript"
		}
		if _, err := up.FPutObject(ctx, bucket, key, f, minio.PutObjectOptions{ContentType: ct}); err != nil {
			return keys, fmt.Errorf("upload %s: %w", f, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Load inserts the mapped contracts into store unless it already holds
// contracts. It returns the number inserted.
func Load(ctx context.Context, store ports.ContractWriter, contracts []models.MobileContract) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(contracts) == 0 {
		return 0, nil
	}
	items := make([]models.Contract, len(contracts))
	for i, mc := range contracts {
		items[i] = mc.Contract
	}
	if err := store.InsertMany(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

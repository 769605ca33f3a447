package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type ctxKey string

const ctxKeyContentHash ctxKey = "ocr.content_hash_hex"

// WithContentHash stores the hex-encoded SHA256 of the image for downstream reuse.
func WithContentHash(ctx context.Context, hex string) context.Context {
	return context.WithValue(ctx, ctxKeyContentHash, hex)
}

func contentHashFromCtx(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyContentHash).(string)
	return v, ok && v != ""
}

// HashFile returns the hex SHA256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// convertHEIC converts a HEIC/HEIF screenshot to PNG so tesseract can read it.
// The PNG is kept at {cacheDir}/{hashHex}.png and reused on later calls.
// Without a cache dir the PNG goes to a temp dir removed by cleanup.
func convertHEIC(
	ctx context.Context,
	r Runner,
	logger *slog.Logger,
	converter string,
	in string,
	cacheDir string,
	hashHex string,
) (out string, cleanup func(), err error) {
	cleanup = func() {}
	if cacheDir != "" && hashHex != "" {
		out = filepath.Join(cacheDir, hashHex+".png")
		if st, statErr := os.Stat(out); statErr == nil && !st.IsDir() {
			logger.Debug("using cached heic->png", "cache", out)
			return out, cleanup, nil
		}
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return "", cleanup, err
		}
	} else {
		tmpDir, err := os.MkdirTemp("", "perks-heic-*")
		if err != nil {
			return "", cleanup, err
		}
		cleanup = func() { _ = os.RemoveAll(tmpDir) }
		out = filepath.Join(tmpDir, "screen.png")
	}

	var errb []byte
	switch converter {
	case "heif-convert":
		_, errb, err = r.Run(ctx, "heif-convert", in, out)
	case "magick":
		_, errb, err = r.Run(ctx, "magick", in, out)
	case "sips":
		_, errb, err = r.Run(ctx, "sips", "-s", "format", "png", in, "--out", out)
	default:
		return "", cleanup, fmt.Errorf("HEIC not supported: set ocr.heicConverter to one of: heif-convert | magick | sips")
	}
	if err != nil {
		return "", cleanup, fmt.Errorf("%s failed: %w: %s", converter, err, truncate(string(errb), 512))
	}
	if _, statErr := os.Stat(out); statErr != nil {
		return "", cleanup, fmt.Errorf("HEIC conversion produced no output: %w", statErr)
	}
	logger.Debug("converted heic->png", "out", out)
	return out, cleanup, nil
}

package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/perks-tracker/internal/common"
)

type call struct {
	name string
	args []string
}

type stubRunner struct {
	mu    sync.Mutex
	calls []call
	text  string
	tsv   string
	err   error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{name: name, args: args})
	s.mu.Unlock()

	switch name {
	case "magick", "heif-convert":
		out := args[len(args)-1]
		return nil, nil, os.WriteFile(out, []byte("png"), 0o600)
	}
	if s.err != nil {
		return nil, []byte("tesseract: cannot open"), s.err
	}
	if args[len(args)-1] == "tsv" {
		return []byte(s.tsv), nil, nil
	}
	return []byte(s.text), nil, nil
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("image bytes"), 0o600))
	return path
}

const screenText = "Amex Offers\r\nNordstrom\r\nSpend $80 or more, earn $15 back   \r\n\r\n\r\n\r\nExpires 12/31/25\n"

func TestRecognize(t *testing.T) {
	runner := &stubRunner{text: screenText}
	e := NewExtractor(Config{}, nil, WithRunner(runner))

	rec, err := e.Recognize(context.Background(), writeImage(t, "offer.png"))
	require.NoError(t, err)
	assert.Equal(t, "Amex Offers\nNordstrom\nSpend $80 or more, earn $15 back\n\nExpires 12/31/25", rec.Text)
	assert.Equal(t, "eng", rec.Language)
	// base + date + currency + vocabulary
	assert.InDelta(t, 0.7, rec.Confidence, 1e-6)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "tesseract", runner.calls[0].name)
	assert.Equal(t, []string{"stdout", "-l", "eng"}, runner.calls[0].args[1:])
}

func TestRecognizeBlendsTSVConfidence(t *testing.T) {
	runner := &stubRunner{
		text: "Dyson   Arlo",
		tsv: "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
			"1\t1\t0\t0\t0\t0\t0\t0\t100\t100\t-1\t\n" +
			"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tDyson\n" +
			"5\t1\t1\t1\t1\t2\t20\t0\t10\t10\t70\tArlo\n",
	}
	e := NewExtractor(Config{EnableTSVConfidence: true, PSM: 6}, nil, WithRunner(runner))

	rec, err := e.Recognize(context.Background(), writeImage(t, "chase.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "Dyson   Arlo", rec.Text)
	assert.InDelta(t, 0.7*0.8+0.3*0.2, rec.Confidence, 1e-6)
	require.Len(t, runner.calls, 2)
	assert.Contains(t, strings.Join(runner.calls[1].args, " "), "--psm 6")
}

func TestRecognizeHEICUsesArtifactCache(t *testing.T) {
	runner := &stubRunner{text: "Hertz\nGet $20 back"}
	cacheDir := t.TempDir()
	e := NewExtractor(Config{HeicConverter: "magick", ArtifactCacheDir: cacheDir}, nil, WithRunner(runner))
	path := writeImage(t, "screen.HEIC")

	ctx := WithContentHash(context.Background(), "abc123")
	_, err := e.Recognize(ctx, path)
	require.NoError(t, err)
	_, err = e.Recognize(ctx, path)
	require.NoError(t, err)

	var converts int
	for _, c := range runner.calls {
		if c.name == "magick" {
			converts++
		}
	}
	assert.Equal(t, 1, converts)
	assert.FileExists(t, filepath.Join(cacheDir, "abc123.png"))
}

func TestRecognizeErrors(t *testing.T) {
	testCases := []struct {
		name   string
		file   string
		cfg    Config
		runErr error
		target error
	}{
		{name: "unsupported extension", file: "offers.pdf", target: common.ErrInvalidInput},
		{name: "tesseract failure", file: "offers.png", runErr: errors.New("exit status 1"), target: common.ErrRecognition},
		{name: "no heic converter", file: "offers.heic", cfg: Config{HeicConverter: "gimp"}, target: common.ErrRecognition},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewExtractor(tc.cfg, nil, WithRunner(&stubRunner{err: tc.runErr}))
			_, err := e.Recognize(context.Background(), writeImage(t, tc.file))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestNormalizeKeepsColumnGaps(t *testing.T) {
	in := "Dyson   Arlo   Sephora  \r\n-----\n5% back    10% back\n\n\n\n"
	assert.Equal(t, "Dyson   Arlo   Sephora\n\n5% back    10% back", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestHeuristicConfidence(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected float32
	}{
		{name: "empty", text: "", expected: 0.2},
		{name: "status bar only", text: "9:41 LTE", expected: 0.2},
		{name: "offer with date", text: "Earn 5% back. Expires 12/31", expected: 0.7},
		{name: "long offer screen", text: strings.Repeat("Spend $50, get $10 back. ", 6) + "Exp Jan 5", expected: 0.8},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, heuristicConfidence(tc.text), 1e-6)
		})
	}
}

func TestHashFile(t *testing.T) {
	path := writeImage(t, "a.png")
	h1, err := HashFile(path)
	require.NoError(t, err)
	assert.Len(t, h1, 64)
	h2, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

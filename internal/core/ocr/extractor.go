package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/common"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	HeicConverter string

	// EnableTSVConfidence runs a second tesseract pass for per-word confidence.
	EnableTSVConfidence bool
	PSM                 int // page segmentation mode; 0 leaves tesseract's default
	OEM                 int

	ArtifactCacheDir string
}

// Recognition is the text recovered from one screenshot.
type Recognition struct {
	Text       string        `json:"text"`
	Confidence float32       `json:"confidence"`
	Language   string        `json:"language"`
	Duration   time.Duration `json:"duration"`
	Warnings   []string      `json:"warnings,omitempty"`
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	e := &Extractor{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewExtractorFromConfig maps application OCR settings onto an Extractor.
func NewExtractorFromConfig(cfg common.OCRConfig, logger *slog.Logger, opts ...Option) *Extractor {
	return NewExtractor(Config{
		Tesseract:           cfg.Tesseract,
		TesseractLang:       cfg.Language,
		TessdataDir:         cfg.TessdataDir,
		HeicConverter:       cfg.HeicConverter,
		EnableTSVConfidence: cfg.TSVConfidence,
		ArtifactCacheDir:    cfg.ArtifactCacheDir,
	}, logger, opts...)
}

// Recognize runs tesseract over the screenshot at path.
func (e *Extractor) Recognize(ctx context.Context, path string) (Recognition, error) {
	start := time.Now()
	ext := filepath.Ext(path)
	if !constants.IsImageExt(ext) {
		return Recognition{}, common.NewAppError("UNSUPPORTED_IMAGE", fmt.Sprintf("unsupported extension %q", ext), common.ErrInvalidInput)
	}
	logger := e.logger.With("path", path)
	logger.Debug("starting recognition")

	if constants.IsHEICExt(ext) {
		hashHex, ok := contentHashFromCtx(ctx)
		if !ok && e.cfg.ArtifactCacheDir != "" {
			var err error
			if hashHex, err = HashFile(path); err != nil {
				return Recognition{}, common.WrapError(err, "hash heic")
			}
		}
		png, cleanup, err := convertHEIC(ctx, e.runner, logger, e.cfg.HeicConverter, path, e.cfg.ArtifactCacheDir, hashHex)
		defer cleanup()
		if err != nil {
			logger.Error("heic conversion failed", "error", err)
			return Recognition{}, common.NewAppError("HEIC_CONVERSION", "convert heic", fmt.Errorf("%w: %v", common.ErrRecognition, err))
		}
		path = png
	}

	txt, err := e.tesseractText(ctx, path)
	if err != nil {
		return Recognition{}, common.NewAppError("OCR_FAILED", "tesseract", fmt.Errorf("%w: %v", common.ErrRecognition, err))
	}

	rec := Recognition{Text: Normalize(txt), Language: e.cfg.TesseractLang}
	var tsv float32
	if e.cfg.EnableTSVConfidence {
		if tsv, err = e.tesseractTSVConfidence(ctx, path); err != nil {
			rec.Warnings = append(rec.Warnings, err.Error())
		}
	}
	rec.Confidence = blendConfidence(tsv, heuristicConfidence(rec.Text))
	rec.Duration = time.Since(start)

	logger.Debug("recognition done",
		"chars", len(rec.Text),
		"confidence", rec.Confidence,
		"duration_ms", rec.Duration.Milliseconds(),
	)
	return rec, nil
}

func (e *Extractor) baseArgs(path string) []string {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *Extractor) tesseractText(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.baseArgs(path)...)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseractTSVConfidence returns the mean word confidence in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float32, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, append(e.baseArgs(path), "tsv")...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	return meanTSVConfidence(string(out)), nil
}

func meanTSVConfidence(tsv string) float32 {
	lines := strings.Split(tsv, "\n")
	if len(lines) == 0 {
		return 0
	}
	confCol, textCol := -1, -1
	for i, h := range strings.Split(strings.TrimSpace(lines[0]), "\t") {
		switch h {
		case "conf":
			confCol = i
		case "text":
			textCol = i
		}
	}
	if confCol < 0 {
		return 0
	}

	var sum, n float64
	for _, ln := range lines[1:] {
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) <= confCol {
			continue
		}
		if textCol >= 0 && (len(cols) <= textCol || strings.TrimSpace(cols[textCol]) == "") {
			continue
		}
		v, err := strconv.ParseFloat(cols[confCol], 64)
		if err != nil || v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}

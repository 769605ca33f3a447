package batch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/cache"
	"github.com/joseph-ayodele/perks-tracker/internal/common"
	"github.com/joseph-ayodele/perks-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
	"github.com/joseph-ayodele/perks-tracker/internal/repository"
)

// Recognizer turns a screenshot into text.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (ocr.Recognition, error)
}

// Extractor finds perk candidates in recognized text.
type Extractor interface {
	Extract(text string, hint constants.IssuerKey) []perks.PerkCandidate
	Classify(text string) constants.IssuerKey
}

// Request is one batch of screenshots.
type Request struct {
	Paths      []string
	IssuerHint constants.IssuerKey
}

// ImageResult is the outcome for one screenshot.
type ImageResult struct {
	Path        string
	Status      constants.ImageStatus
	Issuer      constants.IssuerKey
	Candidates  []perks.PerkCandidate
	Confidence  float32 // recognition confidence
	NeedsReview bool
	Cached      bool
	Err         error
}

// Result summarizes a batch. Images keep request order.
type Result struct {
	BatchID    uuid.UUID
	Images     []ImageResult
	Candidates int
	Failed     int
	Duration   time.Duration
}

type Processor struct {
	recognizer  Recognizer
	extractor   Extractor
	cache       cache.RecognitionCache
	drafts      repository.DraftRepository
	logger      *slog.Logger
	concurrency int
	timeout     time.Duration
}

type Option func(*Processor)

// WithConcurrency bounds how many screenshots are processed at once.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithImageTimeout bounds recognition and storage of a single screenshot.
func WithImageTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithCache sets the recognition cache.
func WithCache(c cache.RecognitionCache) Option {
	return func(p *Processor) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithDrafts persists candidates as drafts.
func WithDrafts(r repository.DraftRepository) Option {
	return func(p *Processor) { p.drafts = r }
}

func NewProcessor(recognizer Recognizer, extractor Extractor, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		recognizer:  recognizer,
		extractor:   extractor,
		cache:       cache.NopCache{},
		logger:      logger,
		concurrency: 3,
		timeout:     time.Minute,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes every path. A failing image is recorded in its ImageResult
// and does not stop the others; only cancellation of ctx ends the batch early.
func (p *Processor) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res := Result{BatchID: uuid.New(), Images: make([]ImageResult, len(req.Paths))}
	ctx = common.WithBatchID(ctx, res.BatchID.String())
	logger := common.LoggerFrom(ctx, p.logger)
	logger.Info("batch started", "images", len(req.Paths), "issuer_hint", req.IssuerHint, "concurrency", p.concurrency)

	var candidates, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, path := range req.Paths {
		res.Images[i] = ImageResult{Path: path, Status: constants.ImageStatusQueued}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ir := p.processImage(gctx, res.BatchID, path, req.IssuerHint)
			res.Images[i] = ir
			if ir.Err != nil {
				failed.Add(1)
				logger.Error("image failed", "path", path, "status", ir.Status, "error", ir.Err)
				if errors.Is(ir.Err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			candidates.Add(int64(len(ir.Candidates)))
			return nil
		})
	}
	err := g.Wait()

	res.Candidates = int(candidates.Load())
	res.Failed = int(failed.Load())
	res.Duration = time.Since(start)
	logger.Info("batch finished",
		"images", len(req.Paths),
		"candidates", res.Candidates,
		"failed", res.Failed,
		"duration_ms", res.Duration.Milliseconds(),
	)
	if err == nil {
		err = ctx.Err()
	}
	return res, err
}

func (p *Processor) processImage(ctx context.Context, batchID uuid.UUID, path string, hint constants.IssuerKey) ImageResult {
	out := ImageResult{Path: path, Status: constants.ImageStatusQueued}
	ctx, cancel := common.WithTimeout(ctx, p.timeout)
	defer cancel()

	if !constants.IsImageExt(filepath.Ext(path)) {
		out.Status = constants.ImageStatusFailed
		out.Err = common.NewAppError("UNSUPPORTED_IMAGE", "unsupported extension "+filepath.Ext(path), common.ErrInvalidInput)
		return out
	}

	hashHex, err := ocr.HashFile(path)
	if err != nil {
		out.Status = constants.ImageStatusFailed
		out.Err = common.WrapError(err, "read image")
		return out
	}
	ctx = ocr.WithContentHash(ctx, hashHex)
	logger := common.LoggerFrom(ctx, p.logger)

	rec, hit, err := p.cache.Get(ctx, hashHex)
	if err != nil {
		logger.Warn("recognition cache unavailable", "path", path, "error", err)
	}
	if !hit {
		rec, err = p.recognizer.Recognize(ctx, path)
		if err != nil {
			out.Status = constants.ImageStatusFailed
			out.Err = err
			return out
		}
		if err := p.cache.Put(ctx, hashHex, rec); err != nil {
			logger.Warn("recognition cache write failed", "path", path, "error", err)
		}
	}
	out.Cached = hit
	out.Status = constants.ImageStatusRecognized
	out.Confidence = rec.Confidence
	out.NeedsReview = rec.Confidence < constants.ImageConfidenceThreshold

	issuer, known := constants.CanonicalIssuer(string(hint))
	if !known {
		issuer = p.extractor.Classify(rec.Text)
	}
	out.Candidates = p.extractor.Extract(rec.Text, issuer)
	out.Issuer = issuer

	if p.drafts != nil {
		if _, err := p.drafts.SaveDrafts(ctx, batchID, path, out.Issuer, out.Candidates); err != nil {
			out.Status = constants.ImageStatusFailed
			out.Err = err
			return out
		}
	}
	out.Status = constants.ImageStatusExtracted
	return out
}

package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/common"
	"github.com/joseph-ayodele/perks-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
	"github.com/joseph-ayodele/perks-tracker/internal/repository"
)

type stubRecognizer struct {
	texts    map[string]string // by base name
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (s *stubRecognizer) Recognize(ctx context.Context, path string) (ocr.Recognition, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ocr.Recognition{}, ctx.Err()
		}
	}
	text, ok := s.texts[filepath.Base(path)]
	if !ok {
		return ocr.Recognition{}, common.WrapError(common.ErrRecognition, "tesseract")
	}
	return ocr.Recognition{Text: text, Confidence: 0.9}, nil
}

type mapCache struct {
	mu   sync.Mutex
	recs map[string]ocr.Recognition
}

func (m *mapCache) Get(_ context.Context, h string) (ocr.Recognition, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[h]
	return r, ok, nil
}

func (m *mapCache) Put(_ context.Context, h string, r ocr.Recognition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[h] = r
	return nil
}

func newEngine(t *testing.T) *perks.Engine {
	t.Helper()
	reg, err := perks.DefaultRegistry(nil)
	require.NoError(t, err)
	return perks.NewEngine(reg, nil)
}

func writeScreens(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(paths[i], []byte("pixels of "+n), 0o600))
	}
	return paths
}

func TestProcessorRun(t *testing.T) {
	rec := &stubRecognizer{texts: map[string]string{
		"amex.png":  "Amex Offers\nNordstrom\nSpend $80 or more, earn $15 back\nExpires 12/31/25",
		"chase.jpg": "Chase Offers\nDyson   Arlo\n5% cash back  10% cash back",
		"blank.png": "9:41\nHome",
	}}
	db, err := repository.OpenSQLite("file:"+filepath.Join(t.TempDir(), "batch.db"), nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	drafts := repository.NewDraftRepository(db, nil)
	require.NoError(t, drafts.Migrate(context.Background()))

	paths := writeScreens(t, "amex.png", "chase.jpg", "blank.png", "broken.png", "notes.txt")
	p := NewProcessor(rec, newEngine(t), nil, WithDrafts(drafts), WithConcurrency(2))

	res, err := p.Run(context.Background(), Request{Paths: paths})
	require.NoError(t, err)
	require.Len(t, res.Images, 5)
	assert.Equal(t, 3, res.Candidates)
	assert.Equal(t, 2, res.Failed)

	amex := res.Images[0]
	assert.Equal(t, constants.ImageStatusExtracted, amex.Status)
	assert.Equal(t, constants.IssuerAmex, amex.Issuer)
	require.Len(t, amex.Candidates, 1)
	assert.Equal(t, "Nordstrom", amex.Candidates[0].Merchant)
	assert.False(t, amex.NeedsReview)

	assert.Equal(t, constants.IssuerChase, res.Images[1].Issuer)
	assert.Len(t, res.Images[1].Candidates, 2)

	assert.Equal(t, constants.ImageStatusExtracted, res.Images[2].Status)
	assert.Empty(t, res.Images[2].Candidates)

	assert.Equal(t, constants.ImageStatusFailed, res.Images[3].Status)
	assert.ErrorIs(t, res.Images[3].Err, common.ErrRecognition)
	assert.Equal(t, constants.ImageStatusFailed, res.Images[4].Status)
	assert.ErrorIs(t, res.Images[4].Err, common.ErrInvalidInput)

	stored, err := drafts.ListByBatch(context.Background(), res.BatchID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestProcessorUsesCache(t *testing.T) {
	rec := &stubRecognizer{texts: map[string]string{"a.png": "Hertz\nGet $20 back"}}
	c := &mapCache{recs: map[string]ocr.Recognition{}}
	p := NewProcessor(rec, newEngine(t), nil, WithCache(c))
	paths := writeScreens(t, "a.png")

	first, err := p.Run(context.Background(), Request{Paths: paths})
	require.NoError(t, err)
	assert.False(t, first.Images[0].Cached)

	second, err := p.Run(context.Background(), Request{Paths: paths})
	require.NoError(t, err)
	assert.True(t, second.Images[0].Cached)
	assert.Equal(t, int32(1), rec.calls.Load())
	assert.Equal(t, first.Images[0].Candidates, second.Images[0].Candidates)
	assert.NotEqual(t, first.BatchID, second.BatchID)
}

func TestProcessorHonorsIssuerHint(t *testing.T) {
	rec := &stubRecognizer{texts: map[string]string{"s.png": "Nordstr0m\nEarn $15 back"}}
	p := NewProcessor(rec, newEngine(t), nil)

	res, err := p.Run(context.Background(), Request{Paths: writeScreens(t, "s.png"), IssuerHint: "American Express"})
	require.NoError(t, err)
	assert.Equal(t, constants.IssuerAmex, res.Images[0].Issuer)
	require.Len(t, res.Images[0].Candidates, 1)
	assert.Equal(t, "Nordstrom", res.Images[0].Candidates[0].Merchant)
}

func TestProcessorBoundsConcurrency(t *testing.T) {
	texts := map[string]string{}
	names := []string{"1.png", "2.png", "3.png", "4.png", "5.png", "6.png"}
	for _, n := range names {
		texts[n] = "Target\nEarn 5% back"
	}
	rec := &stubRecognizer{texts: texts, delay: 20 * time.Millisecond}
	p := NewProcessor(rec, newEngine(t), nil, WithConcurrency(2))

	res, err := p.Run(context.Background(), Request{Paths: writeScreens(t, names...)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Failed)
	assert.LessOrEqual(t, rec.peak.Load(), int32(2))
}

func TestProcessorImageTimeout(t *testing.T) {
	rec := &stubRecognizer{texts: map[string]string{"slow.png": "Target\nEarn 5% back"}, delay: time.Second}
	p := NewProcessor(rec, newEngine(t), nil, WithImageTimeout(10*time.Millisecond))

	res, err := p.Run(context.Background(), Request{Paths: writeScreens(t, "slow.png")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, errors.Is(res.Images[0].Err, context.DeadlineExceeded))
}

func TestProcessorCanceled(t *testing.T) {
	rec := &stubRecognizer{texts: map[string]string{"a.png": "Target\nEarn 5% back"}}
	p := NewProcessor(rec, newEngine(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, Request{Paths: writeScreens(t, "a.png")})
	assert.ErrorIs(t, err, context.Canceled)
}

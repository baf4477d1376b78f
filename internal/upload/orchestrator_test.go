package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossydrift/estate-listing-backend/internal/compression"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/storage"
)

// memorySink keeps stored objects in a map and records every call.
type memorySink struct {
	mu       sync.Mutex
	objects  map[string][]byte
	deleted  []string
	storeErr error
	onStore  func()
}

func newMemorySink() *memorySink {
	return &memorySink{objects: map[string][]byte{}}
}

func (s *memorySink) Store(_ context.Context, suggestedName string, content io.Reader) (*storage.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("obj-%d-%s", len(s.objects), suggestedName)
	s.objects[id] = data
	if s.onStore != nil {
		s.onStore()
	}
	return &storage.StoredObject{URL: "/files/" + id, PublicID: id}, nil
}

func (s *memorySink) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	delete(s.objects, publicID)
	return nil
}

func (s *memorySink) Open(_ context.Context, publicID string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[publicID]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// fixedEncoder makes compression output independent of real codec behavior.
type fixedEncoder struct{ data []byte }

func (f fixedEncoder) Encode(_ image.Image, _ int) ([]byte, error) {
	return f.data, nil
}

func newTestOrchestrator(sink storage.Sink) *Orchestrator {
	c := compression.NewCompressor(compression.DefaultTarget(), fixedEncoder{data: make([]byte, 4096)}, nil)
	return NewOrchestrator(c, sink, compression.DefaultLimits())
}

func pngFile(t *testing.T, name string) FileInput {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 2), G: uint8(y * 2), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return FileInput{Name: name, MimeType: "image/png", Data: buf.Bytes()}
}

func TestProcessBatchHappyPath(t *testing.T) {
	sink := newMemorySink()
	orch := newTestOrchestrator(sink)

	files := []FileInput{pngFile(t, "a.jpg"), pngFile(t, "b.png"), pngFile(t, "c.png")}
	meta := []MetadataEntry{
		{AltText: "front view"},
		{AltText: "kitchen", IsMain: true},
	}

	images, err := orch.ProcessBatch(context.Background(), files, meta)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, 3, sink.count())

	for i, img := range images {
		assert.Equal(t, i, img.Order)
		assert.Equal(t, "webp", img.Format)
		assert.Equal(t, 120, img.Width)
		assert.Equal(t, 120, img.Height)
		assert.NotEmpty(t, img.URL)
		assert.NotEmpty(t, img.PublicID)
	}
	assert.Equal(t, "front view", images[0].AltText)
	assert.Equal(t, "kitchen", images[1].AltText)
	assert.Equal(t, []bool{false, true, false},
		[]bool{images[0].IsMain, images[1].IsMain, images[2].IsMain})
	assert.Contains(t, images[0].PublicID, "a.webp", "stored name must be normalized to .webp")
}

func TestProcessBatchAbortsOnBadFileKeepingEarlierOnes(t *testing.T) {
	sink := newMemorySink()
	orch := newTestOrchestrator(sink)

	files := []FileInput{pngFile(t, "a.png"), pngFile(t, "b.png"),
		{Name: "broken.png", MimeType: "image/png", Data: []byte("garbage")}}

	_, err := orch.ProcessBatch(context.Background(), files, nil)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Index)
	assert.Equal(t, "broken.png", batchErr.Filename)
	assert.ErrorIs(t, err, compression.ErrInvalidImage)
	assert.Contains(t, err.Error(), "position 3")

	// Earlier files stay persisted; rollback is the caller's call.
	assert.Equal(t, 2, sink.count())
	assert.Empty(t, sink.deleted)
}

func TestProcessBatchDefaultsFirstImageAsMain(t *testing.T) {
	orch := newTestOrchestrator(newMemorySink())

	images, err := orch.ProcessBatch(context.Background(),
		[]FileInput{pngFile(t, "a.png"), pngFile(t, "b.png")}, nil)
	require.NoError(t, err)

	assert.True(t, images[0].IsMain)
	assert.False(t, images[1].IsMain)
}

func TestProcessBatchFirstFlaggedMainWins(t *testing.T) {
	orch := newTestOrchestrator(newMemorySink())

	meta := []MetadataEntry{{}, {IsMain: true}, {IsMain: true}}
	images, err := orch.ProcessBatch(context.Background(),
		[]FileInput{pngFile(t, "a.png"), pngFile(t, "b.png"), pngFile(t, "c.png")}, meta)
	require.NoError(t, err)

	assert.False(t, images[0].IsMain)
	assert.True(t, images[1].IsMain)
	assert.False(t, images[2].IsMain)
}

func TestProcessBatchHonorsExplicitOrder(t *testing.T) {
	orch := newTestOrchestrator(newMemorySink())

	five := 5
	meta := []MetadataEntry{{Order: &five}}
	images, err := orch.ProcessBatch(context.Background(),
		[]FileInput{pngFile(t, "a.png"), pngFile(t, "b.png")}, meta)
	require.NoError(t, err)

	assert.Equal(t, 5, images[0].Order)
	assert.Equal(t, 1, images[1].Order)
}

func TestProcessBatchRejectsNonImageMimetype(t *testing.T) {
	sink := newMemorySink()
	orch := newTestOrchestrator(sink)

	f := pngFile(t, "a.png")
	f.MimeType = "text/plain"

	_, err := orch.ProcessBatch(context.Background(), []FileInput{f}, nil)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	var vErr *compression.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, sink.count())
}

func TestProcessBatchRejectsOversizedBatch(t *testing.T) {
	sink := newMemorySink()
	orch := newTestOrchestrator(sink)

	files := make([]FileInput, 11)
	for i := range files {
		files[i] = pngFile(t, fmt.Sprintf("f%d.png", i))
	}

	_, err := orch.ProcessBatch(context.Background(), files, nil)
	var vErr *compression.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, sink.count())
}

func TestProcessBatchRejectsEmptyBatch(t *testing.T) {
	orch := newTestOrchestrator(newMemorySink())

	_, err := orch.ProcessBatch(context.Background(), nil, nil)
	var vErr *compression.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestProcessBatchCleansUpOnCancellation(t *testing.T) {
	sink := newMemorySink()
	ctx, cancel := context.WithCancel(context.Background())
	// Cancel right after the first file is persisted.
	sink.onStore = cancel

	orch := newTestOrchestrator(sink)
	_, err := orch.ProcessBatch(ctx,
		[]FileInput{pngFile(t, "a.png"), pngFile(t, "b.png")}, nil)
	require.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, sink.count())
	assert.Len(t, sink.deleted, 1)
}

func TestProcessBatchWrapsSinkFailure(t *testing.T) {
	sink := newMemorySink()
	sink.storeErr = errors.New("bucket unavailable")
	orch := newTestOrchestrator(sink)

	_, err := orch.ProcessBatch(context.Background(), []FileInput{pngFile(t, "a.png")}, nil)
	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Contains(t, err.Error(), "bucket unavailable")
}

func TestCleanupDeletesAllLocators(t *testing.T) {
	sink := newMemorySink()
	orch := newTestOrchestrator(sink)

	images, err := orch.ProcessBatch(context.Background(),
		[]FileInput{pngFile(t, "a.png"), pngFile(t, "b.png")}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, sink.count())

	orch.Cleanup(context.Background(), images)
	assert.Zero(t, sink.count())
	assert.Len(t, sink.deleted, 2)
}

func TestWebpName(t *testing.T) {
	assert.Equal(t, "photo.webp", webpName("photo.jpg"))
	assert.Equal(t, "photo.webp", webpName("dir/photo.png"))
	assert.Equal(t, "noext.webp", webpName("noext"))
	assert.Equal(t, "image.webp", webpName(".png"))
}

func TestCompressionRatio(t *testing.T) {
	assert.Equal(t, 80, compressionRatio(20, 100))
	assert.Equal(t, 0, compressionRatio(120, 100)) // grew; clamp at zero
	assert.Equal(t, 0, compressionRatio(10, 0))
	assert.Equal(t, 100, compressionRatio(0, 100))
}

package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossydrift/estate-listing-backend/internal/compression"
	"github.com/mossydrift/estate-listing-backend/internal/pkg/storage"
	"github.com/mossydrift/estate-listing-backend/internal/upload"
)

// fakeRepo stores records in memory and can fail on the Nth create.
type fakeRepo struct {
	images      map[string]*Image
	createCalls int
	failOnCall  int // 0 means never fail
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{images: map[string]*Image{}}
}

func (r *fakeRepo) Create(_ context.Context, img *Image) error {
	r.createCalls++
	if r.failOnCall != 0 && r.createCalls == r.failOnCall {
		return errors.New("unique constraint violation")
	}
	r.images[img.ID] = img
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Image, error) {
	img, ok := r.images[id]
	if !ok {
		return nil, errors.New("image not found")
	}
	return img, nil
}

func (r *fakeRepo) List(_ context.Context) ([]*Image, error) {
	out := make([]*Image, 0, len(r.images))
	for _, img := range r.images {
		out = append(out, img)
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	delete(r.images, id)
	return nil
}

type fakeSink struct {
	objects map[string][]byte
	deleted []string
}

func newFakeSink() *fakeSink {
	return &fakeSink{objects: map[string][]byte{}}
}

func (s *fakeSink) Store(_ context.Context, suggestedName string, content io.Reader) (*storage.StoredObject, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("obj-%d-%s", len(s.objects), suggestedName)
	s.objects[id] = data
	return &storage.StoredObject{URL: "/files/" + id, PublicID: id}, nil
}

func (s *fakeSink) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	delete(s.objects, publicID)
	return nil
}

func (s *fakeSink) Open(_ context.Context, publicID string) (io.ReadCloser, error) {
	data, ok := s.objects[publicID]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type stubEncoder struct{}

func (stubEncoder) Encode(_ image.Image, _ int) ([]byte, error) {
	return []byte("encoded-webp-bytes"), nil
}

func newTestService(repo Repository, sink storage.Sink) Service {
	c := compression.NewCompressor(compression.DefaultTarget(), stubEncoder{}, nil)
	orch := upload.NewOrchestrator(c, sink, compression.DefaultLimits())
	return NewService(repo, sink, orch)
}

func pngInput(t *testing.T, name string) upload.FileInput {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return upload.FileInput{Name: name, MimeType: "image/png", Data: buf.Bytes()}
}

func TestUploadBatchCreatesRecords(t *testing.T) {
	repo := newFakeRepo()
	sink := newFakeSink()
	svc := newTestService(repo, sink)

	files := []upload.FileInput{pngInput(t, "a.jpg"), pngInput(t, "b.png")}
	meta := []upload.MetadataEntry{{AltText: "living room", IsMain: true}}

	images, err := svc.UploadBatch(context.Background(), files, meta)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Len(t, repo.images, 2)
	assert.Len(t, sink.objects, 2)

	assert.NotEmpty(t, images[0].ID)
	assert.Equal(t, "a.jpg", images[0].Filename)
	assert.Equal(t, "living room", images[0].AltText)
	assert.True(t, images[0].IsMain)
	assert.False(t, images[1].IsMain)
	assert.Equal(t, 0, images[0].DisplayOrder)
	assert.Equal(t, 1, images[1].DisplayOrder)
	assert.False(t, images[0].CreatedAt.IsZero())
}

func TestUploadBatchRollsBackOnRecordFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failOnCall = 2
	sink := newFakeSink()
	svc := newTestService(repo, sink)

	files := []upload.FileInput{pngInput(t, "a.png"), pngInput(t, "b.png")}
	_, err := svc.UploadBatch(context.Background(), files, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.png")

	// Both sink objects and the already-created record must be gone.
	assert.Empty(t, sink.objects)
	assert.Len(t, sink.deleted, 2)
	assert.Empty(t, repo.images)
}

func TestUploadBatchPropagatesPipelineError(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, newFakeSink())

	files := []upload.FileInput{{Name: "x.png", MimeType: "image/png", Data: []byte("junk")}}
	_, err := svc.UploadBatch(context.Background(), files, nil)
	var batchErr *upload.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Zero(t, repo.createCalls)
}

func TestContentStreamsStoredBytes(t *testing.T) {
	repo := newFakeRepo()
	sink := newFakeSink()
	svc := newTestService(repo, sink)

	images, err := svc.UploadBatch(context.Background(),
		[]upload.FileInput{pngInput(t, "a.png")}, nil)
	require.NoError(t, err)

	stream, img, err := svc.Content(context.Background(), images[0].ID)
	require.NoError(t, err)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "encoded-webp-bytes", string(data))
	assert.Equal(t, images[0].ID, img.ID)
}

func TestContentFailsWhenObjectMissing(t *testing.T) {
	repo := newFakeRepo()
	sink := newFakeSink()
	svc := newTestService(repo, sink)

	images, err := svc.UploadBatch(context.Background(),
		[]upload.FileInput{pngInput(t, "a.png")}, nil)
	require.NoError(t, err)

	// Simulate an object lost behind the record's back.
	require.NoError(t, sink.Delete(context.Background(), images[0].PublicID))

	_, _, err = svc.Content(context.Background(), images[0].ID)
	require.Error(t, err)
}

func TestDeleteRemovesRecordAndObject(t *testing.T) {
	repo := newFakeRepo()
	sink := newFakeSink()
	svc := newTestService(repo, sink)

	images, err := svc.UploadBatch(context.Background(),
		[]upload.FileInput{pngInput(t, "a.png")}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), images[0].ID))
	assert.Empty(t, repo.images)
	assert.Empty(t, sink.objects)

	_, err = svc.Get(context.Background(), images[0].ID)
	require.Error(t, err)
}

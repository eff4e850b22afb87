package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"docuchat/internal/extract"
	"docuchat/internal/model"
	"docuchat/internal/pkg/textproc"
	"docuchat/internal/repository"
)

func newIngestService(t *testing.T, db *gorm.DB, blobs *fakeBlobStore, embedder *fakeEmbedder, queue CleanupQueue) *IngestService {
	t.Helper()
	return NewIngestService(
		db,
		repository.NewUserRepository(db),
		repository.NewDocumentRepository(db),
		repository.NewFragmentRepository(db),
		extract.NewExtractor(),
		blobs,
		embedder,
		queue,
		textproc.Splitter{ChunkSize: 500, Overlap: 0, MinChunkSize: 1, MaxChunkSize: 10000, KeepSeparators: true},
		3,
		nil,
	)
}

func TestIngestCreatesDocumentWithFragments(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), nil)

	data := []byte(strings.Repeat("a", 2000))
	doc, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       data,
	})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, user.ID, doc.UserID)
	assert.Equal(t, "notes.txt", doc.OriginalFileName)
	assert.NotEmpty(t, doc.BlobKey)
	assert.Contains(t, doc.BlobKey, "notes.txt")

	fragments, err := repository.NewFragmentRepository(db).ListByDocumentIDs([]uint{doc.ID})
	require.NoError(t, err)
	require.Len(t, fragments, 4)
	for i, f := range fragments {
		assert.Equal(t, i, f.SequenceIndex)
		assert.Len(t, []rune(f.Text), 500)
		assert.Len(t, f.Vector(), 3)
	}

	stored, err := blobs.Get(context.Background(), doc.BlobKey)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestIngestUnknownOwner(t *testing.T) {
	db := newTestDB(t)
	blobs := newFakeBlobStore()
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), nil)

	_, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "nobody@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("hello"),
	})
	assert.ErrorIs(t, err, ErrOwnerNotFound)
	assert.Empty(t, blobs.objects)
}

func TestIngestUnsupportedFormatWritesNothing(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), nil)

	_, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "photo.png",
		MediaType:  "image/png",
		Data:       []byte{0x89, 0x50, 0x4e, 0x47},
	})
	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)

	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, blobs.objects)
}

func TestIngestEmbeddingFailureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	embedder := newFakeEmbedder(3)
	embedder.err = errors.New("model unavailable")
	svc := newIngestService(t, db, blobs, embedder, nil)

	_, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("some text to embed"),
	})
	require.Error(t, err)

	var docs, frags int64
	require.NoError(t, db.Model(&model.Document{}).Count(&docs).Error)
	require.NoError(t, db.Model(&model.Fragment{}).Count(&frags).Error)
	assert.Zero(t, docs)
	assert.Zero(t, frags)
	assert.Empty(t, blobs.objects)
}

func TestIngestPersistFailureCompensatesBlob(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), nil)

	// Dropping the fragments table makes the transaction fail after the
	// blob is already stored.
	require.NoError(t, db.Migrator().DropTable(&model.Fragment{}))

	_, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("some text to embed"),
	})
	require.Error(t, err)

	var docs int64
	require.NoError(t, db.Model(&model.Document{}).Count(&docs).Error)
	assert.Zero(t, docs)
	assert.Empty(t, blobs.objects)
	assert.Len(t, blobs.deleted, 1)
}

func TestIngestInvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc := newIngestService(t, db, newFakeBlobStore(), newFakeEmbedder(3), nil)

	_, err := svc.Ingest(context.Background(), IngestInput{OwnerEmail: "a@b.c"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Ingest(context.Background(), IngestInput{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListDocuments(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	createUser(t, db, "bob", "bob@example.com")
	svc := newIngestService(t, db, newFakeBlobStore(), newFakeEmbedder(3), nil)

	for _, name := range []string{"one.txt", "two.txt"} {
		_, err := svc.Ingest(context.Background(), IngestInput{
			OwnerEmail: "alice@example.com",
			FileName:   name,
			MediaType:  "text/plain",
			Data:       []byte("content of " + name),
		})
		require.NoError(t, err)
	}

	docs, err := svc.ListDocuments(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = svc.ListDocuments(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = svc.ListDocuments(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestDeleteDocument(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	queue := &fakeCleanupQueue{}
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), queue)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("text to delete later"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(context.Background(), "alice@example.com", doc.ID))

	var docs, frags int64
	require.NoError(t, db.Model(&model.Document{}).Count(&docs).Error)
	require.NoError(t, db.Model(&model.Fragment{}).Count(&frags).Error)
	assert.Zero(t, docs)
	assert.Zero(t, frags)
	assert.Equal(t, []string{doc.BlobKey}, queue.keys)
}

func TestDeleteDocumentNotOwned(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	createUser(t, db, "bob", "bob@example.com")
	svc := newIngestService(t, db, newFakeBlobStore(), newFakeEmbedder(3), nil)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("private text"),
	})
	require.NoError(t, err)

	err = svc.DeleteDocument(context.Background(), "bob@example.com", doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteDocumentMissing(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	svc := newIngestService(t, db, newFakeBlobStore(), newFakeEmbedder(3), nil)

	err := svc.DeleteDocument(context.Background(), "alice@example.com", 42)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDeleteDocumentQueueFailureFallsBackInline(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	queue := &fakeCleanupQueue{err: errors.New("broker down")}
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), queue)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("text to delete"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(context.Background(), "alice@example.com", doc.ID))
	assert.Equal(t, []string{doc.BlobKey}, blobs.deleted)
}

func TestDeleteDocumentBlobFailureDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "alice", "alice@example.com")
	blobs := newFakeBlobStore()
	svc := newIngestService(t, db, blobs, newFakeEmbedder(3), nil)

	doc, err := svc.Ingest(context.Background(), IngestInput{
		OwnerEmail: "alice@example.com",
		FileName:   "notes.txt",
		MediaType:  "text/plain",
		Data:       []byte("text to delete"),
	})
	require.NoError(t, err)

	blobs.delErr = errors.New("backend unreachable")
	require.NoError(t, svc.DeleteDocument(context.Background(), "alice@example.com", doc.ID))

	var count int64
	require.NoError(t, db.Model(&model.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

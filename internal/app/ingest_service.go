package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuchat/internal/blob"
	"docuchat/internal/extract"
	"docuchat/internal/model"
	"docuchat/internal/pkg/textproc"
	"docuchat/internal/repository"
)

// embeddingBatchSize caps the array size per embeddings call; providers
// commonly limit batches.
const embeddingBatchSize = 10

// IngestService turns an uploaded file into a Document plus its embedded
// Fragments. Embeddings are computed before any row is written, and the
// Document commits together with all its Fragments: a failed ingestion
// leaves no visible document.
type IngestService struct {
	db        *gorm.DB
	users     *repository.UserRepository
	docs      *repository.DocumentRepository
	frags     *repository.FragmentRepository
	extractor *extract.Extractor
	blobs     blob.Store
	embedder  Embedder
	cleanup   CleanupQueue
	splitter  textproc.Splitter
	dimension int
	logger    *zap.Logger
}

func NewIngestService(
	db *gorm.DB,
	users *repository.UserRepository,
	docs *repository.DocumentRepository,
	frags *repository.FragmentRepository,
	extractor *extract.Extractor,
	blobs blob.Store,
	embedder Embedder,
	cleanup CleanupQueue,
	splitter textproc.Splitter,
	dimension int,
	logger *zap.Logger,
) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		db:        db,
		users:     users,
		docs:      docs,
		frags:     frags,
		extractor: extractor,
		blobs:     blobs,
		embedder:  embedder,
		cleanup:   cleanup,
		splitter:  splitter,
		dimension: dimension,
		logger:    logger,
	}
}

type IngestInput struct {
	OwnerEmail string
	FileName   string
	MediaType  string
	Data       []byte
}

func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*model.Document, error) {
	if strings.TrimSpace(input.OwnerEmail) == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		fileName = "untitled"
	}

	user, err := s.users.GetByEmail(input.OwnerEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrOwnerNotFound
	}

	// Unsupported formats are rejected here, before anything is written.
	text, err := s.extractor.Extract(input.Data, input.MediaType, fileName)
	if err != nil {
		return nil, err
	}
	text = textproc.Sanitize(text)

	chunks := s.splitter.Split(text)
	for i := range chunks {
		chunks[i] = textproc.Sanitize(chunks[i])
	}

	// All embeddings are collected before the transaction opens, so a model
	// failure aborts ingestion without touching the database.
	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	key := blob.NewKey(fileName)
	locator, err := s.blobs.Put(ctx, key, input.Data, input.MediaType)
	if err != nil {
		return nil, fmt.Errorf("store blob failed: %w", err)
	}

	doc := &model.Document{
		UserID:           user.ID,
		OriginalFileName: fileName,
		BlobKey:          key,
		BlobLocator:      locator,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.docs.WithTx(tx).Create(doc); err != nil {
			return err
		}
		fragments := make([]model.Fragment, len(chunks))
		for i := range chunks {
			fragments[i] = model.Fragment{
				DocumentID:    doc.ID,
				SequenceIndex: i,
				Text:          chunks[i],
			}
			fragments[i].SetVector(vectors[i])
		}
		return s.frags.WithTx(tx).CreateBatch(fragments)
	})
	if err != nil {
		// The blob was written before the transaction; compensate so the
		// store holds no orphan. Its own failure is only logged.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("orphan blob cleanup failed",
				zap.String("blob_key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("persist document failed: %w", err)
	}

	s.logger.Info("document ingested",
		zap.Uint("document_id", doc.ID),
		zap.Uint("owner_id", user.ID),
		zap.Int("fragment_count", len(chunks)),
		zap.Int("text_chars", len(text)))
	return doc, nil
}

func (s *IngestService) embedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	want := s.dimension
	if want <= 0 {
		want = len(vectors[0])
	}
	for i, vec := range vectors {
		if len(vec) != want {
			return nil, fmt.Errorf("fragment %d has dimension %d, want %d", i, len(vec), want)
		}
	}
	return vectors, nil
}

func (s *IngestService) ListDocuments(ctx context.Context, ownerEmail string) ([]model.Document, error) {
	user, err := s.users.GetByEmail(ownerEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrOwnerNotFound
	}
	return s.docs.ListByUserID(user.ID)
}

// DeleteDocument removes the document and all of its fragments. Blob
// removal is best-effort: it is handed to the cleanup queue (or deleted
// inline when no queue is wired) and a failure there never blocks the
// metadata deletion.
func (s *IngestService) DeleteDocument(ctx context.Context, ownerEmail string, documentID uint) error {
	if documentID == 0 {
		return ErrInvalidInput
	}
	user, err := s.users.GetByEmail(ownerEmail)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrOwnerNotFound
	}

	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if doc.UserID != user.ID {
		return ErrForbidden
	}

	s.deleteBlob(ctx, doc.BlobKey)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.frags.WithTx(tx).DeleteByDocumentID(doc.ID); err != nil {
			return err
		}
		return s.docs.WithTx(tx).DeleteByID(doc.ID)
	})
	if err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}

	s.logger.Info("document deleted",
		zap.Uint("document_id", doc.ID), zap.Uint("owner_id", user.ID))
	return nil
}

func (s *IngestService) deleteBlob(ctx context.Context, key string) {
	if s.cleanup != nil {
		err := s.cleanup.EnqueueDelete(ctx, key)
		if err == nil {
			return
		}
		s.logger.Warn("enqueue blob cleanup failed, deleting inline",
			zap.String("blob_key", key), zap.Error(err))
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("blob delete failed",
			zap.String("blob_key", key), zap.Error(err))
	}
}

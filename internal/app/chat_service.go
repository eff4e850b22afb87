package app

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuchat/internal/model"
	"docuchat/internal/repository"
	"docuchat/internal/vector"
)

const (
	defaultTopK          = 5
	defaultHistoryWindow = 10

	// maxHistoryLimit bounds how many turns a single history request may
	// read; the turn log itself is unbounded.
	maxHistoryLimit = 100
)

// ChatService answers questions grounded in the owner's indexed documents
// and recent conversation history. The question/answer turn pair commits
// in one transaction after generation succeeds, so a model failure leaves
// the conversation log untouched.
type ChatService struct {
	db            *gorm.DB
	users         *repository.UserRepository
	docs          *repository.DocumentRepository
	turns         *repository.ConversationTurnRepository
	vectors       *vector.Store
	cache         HistoryCache
	embedder      Embedder
	generator     Generator
	topK          int
	historyWindow int
	logger        *zap.Logger
}

func NewChatService(
	db *gorm.DB,
	users *repository.UserRepository,
	docs *repository.DocumentRepository,
	turns *repository.ConversationTurnRepository,
	vectors *vector.Store,
	cache HistoryCache,
	embedder Embedder,
	generator Generator,
	topK int,
	historyWindow int,
	logger *zap.Logger,
) *ChatService {
	if topK <= 0 {
		topK = defaultTopK
	}
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		db:            db,
		users:         users,
		docs:          docs,
		turns:         turns,
		vectors:       vectors,
		cache:         cache,
		embedder:      embedder,
		generator:     generator,
		topK:          topK,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

// Ask runs the full query path: embed the question, retrieve the nearest
// fragments, compose the prompt with the recent history window, generate
// the answer and append the (user, assistant) turn pair.
func (s *ChatService) Ask(ctx context.Context, ownerEmail, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ownerEmail)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrOwnerNotFound
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", err
	}

	fragments, err := s.retrieve(queryVec, user.ID)
	if err != nil {
		return "", err
	}

	history, err := s.recentTurns(ctx, user.ID)
	if err != nil {
		return "", err
	}

	prompt := renderPrompt(history, fragments, question)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		turnRepo := s.turns.WithTx(tx)
		if err := turnRepo.Create(&model.ConversationTurn{
			UserID: user.ID,
			Role:   model.RoleUser,
			Text:   question,
		}); err != nil {
			return err
		}
		return turnRepo.Create(&model.ConversationTurn{
			UserID: user.ID,
			Role:   model.RoleAssistant,
			Text:   answer,
		})
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.MarkDirty(ctx, user.ID)
		_ = s.cache.Invalidate(ctx, user.ID)
	}

	s.logger.Info("question answered",
		zap.Uint("owner_id", user.ID),
		zap.Int("retrieved_fragments", len(fragments)),
		zap.Int("history_turns", len(history)),
		zap.Int("answer_chars", len(answer)))
	return answer, nil
}

// retrieve returns the nearest fragments across the owner's documents,
// tagged with their document's display name. An owner with no documents
// gets an empty result, not an error.
func (s *ChatService) retrieve(queryVec []float32, userID uint) ([]retrievedFragment, error) {
	docs, err := s.docs.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	docIDs := make([]uint, len(docs))
	names := make(map[uint]string, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
		names[d.ID] = d.OriginalFileName
	}

	matches, err := s.vectors.Nearest(queryVec, docIDs, s.topK)
	if err != nil {
		return nil, err
	}

	fragments := make([]retrievedFragment, len(matches))
	for i, m := range matches {
		fragments[i] = retrievedFragment{
			Text:     m.Fragment.Text,
			FileName: names[m.Fragment.DocumentID],
		}
	}
	return fragments, nil
}

// recentTurns returns the owner's recent window in chronological order,
// via the cache when it is present and clean.
func (s *ChatService) recentTurns(ctx context.Context, userID uint) ([]model.ConversationTurn, error) {
	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetRecent(ctx, userID); cacheErr == nil && hit {
				return chronological(cached), nil
			}
		}
	}

	turns, err := s.turns.ListRecentByUserID(userID, s.historyWindow)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.cache.SetRecent(ctx, userID, turns)
		}
	}
	return chronological(turns), nil
}

// GetHistory returns the owner's recent turns in chronological order for
// display.
func (s *ChatService) GetHistory(ctx context.Context, ownerEmail string, limit int) ([]model.ConversationTurn, error) {
	user, err := s.users.GetByEmail(ownerEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrOwnerNotFound
	}
	if limit <= 0 {
		limit = s.historyWindow
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	turns, err := s.turns.ListRecentByUserID(user.ID, limit)
	if err != nil {
		return nil, err
	}
	return chronological(turns), nil
}

// chronological reverses a newest-first window into reading order.
func chronological(turns []model.ConversationTurn) []model.ConversationTurn {
	out := make([]model.ConversationTurn, len(turns))
	for i, t := range turns {
		out[len(turns)-1-i] = t
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
)

const noMatchReply = "I couldn't find anything about that in your course materials yet."

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "why": {}, "how": {}, "does": {}, "did": {}, "can": {}, "this": {}, "that": {},
	"with": {}, "from": {}, "about": {}, "which": {}, "is": {}, "of": {}, "to": {}, "in": {},
}

type chatContentReader interface {
	ListProcessedForStudent(ctx context.Context, studentID int64) ([]models.CourseContent, error)
}

type chatHistoryStore interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	ListRecent(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error)
}

// ChatbotConfig tunes retrieval and history.
type ChatbotConfig struct {
	HistoryLimit int
	SnippetChars int
}

// ChatbotService answers student questions from text extracted out of their courses'
// uploaded materials.
type ChatbotService struct {
	contents  chatContentReader
	history   chatHistoryStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       ChatbotConfig
}

// NewChatbotService constructs a ChatbotService.
func NewChatbotService(contents chatContentReader, history chatHistoryStore, validate *validator.Validate, metrics *MetricsService, cfg ChatbotConfig, logger *zap.Logger) *ChatbotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = 400
	}
	return &ChatbotService{contents: contents, history: history, validator: validate, metrics: metrics, logger: logger, cfg: cfg}
}

// Ask answers a query and stores the exchange.
func (s *ChatbotService) Ask(ctx context.Context, caller *models.JWTClaims, req dto.ChatbotQueryRequest) (*dto.ChatbotReply, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid chatbot query")
	}

	contents, err := s.contents.ListProcessedForStudent(ctx, caller.UserID)
	if err != nil {
		return nil, internal(err, "failed to load course materials")
	}

	answer, matched := s.answer(req.Query, contents)
	s.metrics.RecordChatbotQuery(matched)

	if err := s.history.Create(ctx, &models.ChatMessage{UserID: caller.UserID, Query: req.Query, Response: answer}); err != nil {
		s.logger.Warn("failed to store chat message", zap.Int64("user_id", caller.UserID), zap.Error(err))
	}
	return &dto.ChatbotReply{Response: answer}, nil
}

// History returns the caller's most recent exchanges, newest first.
func (s *ChatbotService) History(ctx context.Context, caller *models.JWTClaims) ([]dto.ChatHistoryItem, error) {
	items, err := s.history.ListRecent(ctx, caller.UserID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, internal(err, "failed to load chat history")
	}
	return dto.ChatHistoryFromModels(items), nil
}

type passage struct {
	source string
	text   string
	score  int
}

func (s *ChatbotService) answer(query string, contents []models.CourseContent) (string, bool) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return noMatchReply, false
	}

	var candidates []passage
	for _, c := range contents {
		if c.ExtractedText == nil {
			continue
		}
		for _, para := range paragraphs(*c.ExtractedText) {
			if score := overlap(terms, para); score > 0 {
				candidates = append(candidates, passage{source: c.OriginalName, text: para, score: score})
			}
		}
	}
	if len(candidates) == 0 {
		return noMatchReply, false
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	best := candidates[0]
	return fmt.Sprintf("From %s: %s", best.source, truncate(best.text, s.cfg.SnippetChars)), true
}

func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, word := range words(query) {
		if len(word) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		terms[word] = struct{}{}
	}
	return terms
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// overlap counts distinct query terms present in text.
func overlap(terms map[string]struct{}, text string) int {
	seen := make(map[string]struct{})
	for _, word := range words(text) {
		if _, ok := terms[word]; ok {
			seen[word] = struct{}{}
		}
	}
	return len(seen)
}

func paragraphs(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.Join(strings.Fields(block), " ")
		if block != "" {
			out = append(out, block)
		}
	}
	return out
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

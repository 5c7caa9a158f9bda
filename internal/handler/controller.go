package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bastiangx/wordtrail/internal/profiles"
	"github.com/bastiangx/wordtrail/pkg/eval"
	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// Controller serves recommendation and evaluation endpoints.
type Controller struct {
	recommender suggest.IRecommender
	users       *profiles.Registry
	defaultLang string
	maxLimit    int
}

// NewController creates a controller. maxLimit caps top_n.
func NewController(rec suggest.IRecommender, users *profiles.Registry, defaultLang string, maxLimit int) *Controller {
	return &Controller{
		recommender: rec,
		users:       users,
		defaultLang: defaultLang,
		maxLimit:    maxLimit,
	}
}

// RecommendRequest is the body of POST /api/recommend.
type RecommendRequest struct {
	Prefix   string `json:"prefix"`
	Lang     string `json:"lang"`
	TopN     int    `json:"top_n"`
	UserID   string `json:"user_id"`
}

// SelectRequest is the body of POST /api/select.
type SelectRequest struct {
	Prefix string `json:"prefix"`
	Word   string `json:"word" binding:"required"`
	Lang   string `json:"lang"`
	UserID string `json:"user_id" binding:"required"`
}

// SentenceRequest is the body of POST /api/test-sentence.
type SentenceRequest struct {
	Sentence string `json:"sentence"`
	Lang     string `json:"lang"`
	TopN     int    `json:"top_n"`
	UserID   string `json:"user_id"`
}

// BatchRequest is the body of POST /api/test-batch.
type BatchRequest struct {
	Sentences []string `json:"sentences"`
	Lang      string   `json:"lang"`
	TopN      int      `json:"top_n"`
	UserID    string   `json:"user_id"`
}

// Recommendation is one suggested word.
type Recommendation struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

func (h *Controller) lang(lang string) string {
	if lang = strings.TrimSpace(lang); lang != "" {
		return lang
	}
	return h.defaultLang
}

func (h *Controller) topN(n int, fallback int) int {
	if n <= 0 {
		n = fallback
	}
	if h.maxLimit > 0 {
		n = min(n, h.maxLimit)
	}
	return n
}

// withProfile runs fn with the profile userID has built in lang.
// Profiles never cross languages.
func (h *Controller) withProfile(lang, userID string, fn func(*personalize.Profile) error) error {
	return h.users.View(lang, userID, fn)
}

// statusFor maps library errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, suggest.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, suggest.ErrUnsupportedLanguage),
		errors.Is(err, eval.ErrNoWords),
		errors.Is(err, eval.ErrNoResults):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Recommend handles POST /api/recommend
func (h *Controller) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Prefix == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prefix is required"})
		return
	}
	lang := h.lang(req.Lang)

	var suggestions []suggest.Suggestion
	err := h.withProfile(lang, req.UserID, func(p *personalize.Profile) error {
		var err error
		suggestions, err = h.recommender.Recommend(req.Prefix, lang, h.topN(req.TopN, eval.DefaultTopN), p)
		return err
	})
	if err != nil {
		abortWith(c, err)
		return
	}

	recs := make([]Recommendation, len(suggestions))
	for i, s := range suggestions {
		recs[i] = Recommendation{Word: s.Word, Score: s.Score}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"recommendations": recs,
	})
}

// Select handles POST /api/select
func (h *Controller) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.users.Enabled() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "personalization is disabled"})
		return
	}

	total, err := h.users.Record(h.lang(req.Lang), req.UserID, req.Word, req.Prefix)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"selections": total,
	})
}

// TestSentence handles POST /api/test-sentence
func (h *Controller) TestSentence(c *gin.Context) {
	var req SentenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Sentence) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentence is required"})
		return
	}
	lang := h.lang(req.Lang)

	var result *eval.SentenceResult
	err := h.withProfile(lang, req.UserID, func(p *personalize.Profile) error {
		var err error
		result, err = eval.TestSentenceTop(h.recommender, req.Sentence, lang, h.topN(req.TopN, eval.DefaultTopN), p)
		return err
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

// TestBatch handles POST /api/test-batch
func (h *Controller) TestBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Sentences) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentences are required"})
		return
	}
	lang := h.lang(req.Lang)

	var batch *eval.Batch
	err := h.withProfile(lang, req.UserID, func(p *personalize.Profile) error {
		var err error
		batch, err = eval.TestBatch(h.recommender, req.Sentences, lang, h.topN(req.TopN, eval.DefaultTopN), p)
		return err
	})
	if err != nil {
		abortWith(c, err)
		return
	}

	skipped := 0
	for _, o := range batch.Outcomes {
		if o.Skipped() {
			skipped++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": batch.Results,
		"statistics": gin.H{
			"sentence_count":      batch.SentenceCount,
			"skipped_count":       skipped,
			"total_chars_without": batch.TotalCharsWithout,
			"total_chars_with":    batch.TotalCharsWith,
			"total_chars_saved":   batch.TotalCharsSaved,
			"avg_savings_rate":    batch.AvgSavingsRate,
		},
	})
}

// Users handles GET /api/users
func (h *Controller) Users(c *gin.Context) {
	users := make(map[string][]string)
	for _, lang := range h.recommender.Languages() {
		ids, err := h.users.Users(lang)
		if err != nil {
			abortWith(c, err)
			return
		}
		users[lang] = ids
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}

// Health handles GET /api/health. It answers 503 until the indexes are built.
func (h *Controller) Health(c *gin.Context) {
	state := h.recommender.State()
	status := http.StatusOK
	if state != suggest.StateReady {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":    state.String(),
		"languages": h.recommender.Languages(),
		"stats":     h.recommender.Stats(),
	})
}

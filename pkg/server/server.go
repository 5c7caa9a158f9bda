package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordtrail/internal/profiles"
	"github.com/bastiangx/wordtrail/internal/utils"
	"github.com/bastiangx/wordtrail/pkg/config"
	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/romaji"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects the wire format of the IPC stream.
type Encoding int

const (
	EncodingMsgpack Encoding = iota
	EncodingJSON
)

const (
	defaultLimit = 10
	// reloadEvery is how many requests pass between config reloads.
	reloadEvery = 200
)

// codec reads requests and writes responses in one wire format.
type codec interface {
	decode(req *Request) error
	encode(v any) error
}

type msgpackCodec struct {
	dec *msgpack.Decoder
	enc *msgpack.Encoder
	buf *bufio.Writer
}

func (c *msgpackCodec) decode(req *Request) error {
	return c.dec.Decode(req)
}

func (c *msgpackCodec) encode(v any) error {
	if err := c.enc.Encode(v); err != nil {
		return err
	}
	return c.buf.Flush()
}

type jsonCodec struct {
	scanner *bufio.Scanner
	w       io.Writer
}

// errSkip marks a blank line in the JSON stream.
var errSkip = errors.New("blank line")

func (c *jsonCodec) decode(req *Request) error {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	line := strings.TrimSpace(c.scanner.Text())
	if line == "" {
		return errSkip
	}
	return json.Unmarshal([]byte(line), req)
}

func (c *jsonCodec) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.w, string(data))
	return err
}

// Server handles the IPC for word suggestions
type Server struct {
	recommender  suggest.IRecommender
	users        *profiles.Registry
	config       *config.Config
	configPath   string
	encoding     Encoding
	codec        codec
	requestCount int
}

// NewServer creates a server using stdin/stdout for IPC.
// configPath may be empty, which disables periodic config reloads.
func NewServer(rec suggest.IRecommender, users *profiles.Registry, cfg *config.Config, configPath string, enc Encoding) *Server {
	return NewServerIO(rec, users, cfg, configPath, enc, os.Stdin, os.Stdout)
}

// NewServerIO creates a server over arbitrary streams.
func NewServerIO(rec suggest.IRecommender, users *profiles.Registry, cfg *config.Config, configPath string, enc Encoding, in io.Reader, out io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		recommender: rec,
		users:       users,
		config:      cfg,
		configPath:  configPath,
		encoding:    enc,
	}
	switch enc {
	case EncodingJSON:
		s.codec = &jsonCodec{scanner: bufio.NewScanner(in), w: out}
	default:
		buf := bufio.NewWriter(out)
		s.codec = &msgpackCodec{
			dec: msgpack.NewDecoder(bufio.NewReader(in)),
			enc: msgpack.NewEncoder(buf),
			buf: buf,
		}
	}
	return s
}

// Start processes requests until the input stream ends.
// A malformed msgpack message ends the stream since the decoder can no longer
// find message boundaries; a malformed JSON line is answered and skipped.
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	if s.encoding == EncodingJSON {
		s.sendResponse(map[string]string{"status": "ready"})
	}

	for {
		var req Request
		err := s.codec.decode(&req)
		switch {
		case err == nil:
			s.handleRequest(req)
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errSkip):
			continue
		case s.encoding == EncodingJSON:
			log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid JSON request", 400)
		default:
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			return fmt.Errorf("decode request: %w", err)
		}
	}
}

// handleRequest routes one request by action.
func (s *Server) handleRequest(req Request) {
	s.requestCount++
	if s.configPath != "" && s.requestCount%reloadEvery == 0 {
		s.reloadConfig()
	}
	if req.Lang == "" {
		req.Lang = s.config.CLI.DefaultLanguage
	}

	switch req.Action {
	case "", "complete":
		s.handleComplete(req)
	case "select":
		s.handleSelect(req)
	case "freq":
		s.handleFrequency(req)
	case "stats":
		s.sendResponse(StatsResponse{
			ID:        req.ID,
			Status:    s.recommender.State().String(),
			Languages: s.recommender.Languages(),
			Stats:     s.recommender.Stats(),
		})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

func (s *Server) reloadConfig() {
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		log.Warnf("Keeping current config, reload failed: %v", err)
		return
	}
	s.config = cfg
	log.Debugf("Reloaded config from %s", s.configPath)
}

// handleComplete validates the prefix against the server limits, asks the
// recommender for suggestions and sends them with their ranks.
func (s *Server) handleComplete(req Request) {
	cfg := s.config.Server
	prefix := req.Prefix

	if prefix == "" {
		s.sendError(req.ID, "Missing 'p' (prefix) parameter", 400)
		log.Debug("Prefix is empty in request")
		return
	}

	length := utf8.RuneCountInString(prefix)
	if length < cfg.MinPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix must be at least %d characters", cfg.MinPrefix), 400)
		return
	}
	if length > cfg.MaxPrefix {
		s.sendError(req.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", cfg.MaxPrefix), 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, cfg.MaxLimit)

	start := time.Now()

	if cfg.EnableFilter && !utils.IsValidInput(prefix) {
		s.sendResponse(CompletionResponse{ID: req.ID, Suggestions: []CompletionSuggestion{}, TimeTaken: time.Since(start).Microseconds()})
		return
	}

	// the filter drops the typed word itself, so ask for one extra
	want := limit
	if cfg.EnableFilter {
		want++
	}

	var suggestions []suggest.Suggestion
	err := s.users.View(req.Lang, req.User, func(p *personalize.Profile) error {
		var err error
		suggestions, err = s.recommender.Recommend(prefix, req.Lang, want, p)
		return err
	})
	if err != nil {
		s.sendRecommendError(req.ID, err)
		return
	}

	suggestions = suggest.MatchCase(prefix, suggestions)
	if cfg.EnableFilter {
		suggestions = filterSuggestions(prefix, req.Lang, suggestions)
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	ranks := utils.CreateRankList(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{Word: sg.Word, Score: sg.Score, Rank: ranks[i]}
	}

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s' (%s)", elapsed, prefix, req.Lang)

	s.sendResponse(CompletionResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// filterSuggestions drops the typed prefix and repeats. A Japanese prefix
// typed in romaji is dropped in its kana form as well.
func filterSuggestions(prefix, lang string, suggestions []suggest.Suggestion) []suggest.Suggestion {
	typed := []string{prefix}
	if strings.EqualFold(strings.TrimSpace(lang), suggest.Japanese) {
		typed = append(typed, romaji.Normalize(prefix))
	}
	return utils.FilterWords(utils.NewSuggestionFilter(typed...), suggestions, func(sg suggest.Suggestion) string {
		return sg.Word
	})
}

func (s *Server) handleSelect(req Request) {
	if req.Word == "" || req.User == "" {
		s.sendError(req.ID, "Selection needs 'w' (word) and 'u' (user)", 400)
		return
	}
	if !s.users.Enabled() {
		s.sendError(req.ID, "Personalization is disabled", 400)
		return
	}

	total, err := s.users.Record(req.Lang, req.User, req.Word, req.Prefix)
	if err != nil {
		s.sendRecommendError(req.ID, err)
		return
	}
	s.sendResponse(SelectResponse{ID: req.ID, Status: "ok", Count: total})
}

func (s *Server) handleFrequency(req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'w' (word) parameter", 400)
		return
	}
	freq, err := s.recommender.WordFrequency(req.Word, req.Lang)
	if err != nil {
		s.sendRecommendError(req.ID, err)
		return
	}
	s.sendResponse(FrequencyResponse{ID: req.ID, Word: req.Word, Frequency: freq})
}

// sendRecommendError maps recommender errors to response codes.
func (s *Server) sendRecommendError(id string, err error) {
	s.sendError(id, err.Error(), StatusCode(err))
}

// StatusCode maps an error to its HTTP-like response code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, suggest.ErrNotReady):
		return 503
	case errors.Is(err, suggest.ErrUnsupportedLanguage):
		return 400
	default:
		return 500
	}
}

// sendResponse encodes the response and writes it to the client.
func (s *Server) sendResponse(response any) {
	if err := s.codec.encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(CompletionError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}

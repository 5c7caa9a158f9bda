// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordtrail/internal/logger"
	"github.com/bastiangx/wordtrail/internal/profiles"
	"github.com/bastiangx/wordtrail/internal/utils"
	"github.com/bastiangx/wordtrail/pkg/config"
	"github.com/bastiangx/wordtrail/pkg/personalize"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Recommender is what the CLI needs from suggest.Recommender.
type Recommender interface {
	suggest.IRecommender
	MinPrefixDetail(word, lang string, topN int, profile *personalize.Profile) (suggest.PrefixDetail, error)
}

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// Options mirror the [cli] config section.
type Options struct {
	MinPrefix int
	MaxPrefix int
	Limit     int
	NoFilter  bool
	Language  string

	// Config and ConfigPath let :set save changes; either may be empty.
	Config     *config.Config
	ConfigPath string
}

// InputHandler processes user input line by line, providing suggestions.
//
// A line is either "<prefix>", "<lang> <prefix>" or a command:
//
//	:user <id>    use id's history for ranking (":user" alone clears it)
//	:pick <word>  record that word was chosen for the last prefix
//	:min <word>   show the shortest prefix that surfaces word
//	:set <key> <value>
//	              change min_prefix, max_prefix, max_limit or filter for this
//	              session and save it to the [server] config section
type InputHandler struct {
	recommender Recommender
	users       *profiles.Registry
	opts        Options
	out         *log.Logger

	user       string
	lastLang   string
	lastPrefix string
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(rec Recommender, users *profiles.Registry, opts Options, out io.Writer) *InputHandler {
	return &InputHandler{
		recommender: rec,
		users:       users,
		opts:        opts,
		out:         logger.NewTo(out, ""),
	}
}

// Start begins the interface loop. It returns nil when in is exhausted.
func (h *InputHandler) Start(in io.Reader) error {
	h.out.Print("WordTrail CLI [BETA]")
	h.out.Print("type [lang] prefix and press Enter to see the suggestions (Ctrl+C to exit):")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.handleLine(line)
	}
	return scanner.Err()
}

func (h *InputHandler) handleLine(line string) {
	if strings.HasPrefix(line, ":") {
		h.handleCommand(line[1:])
		return
	}

	lang, prefix := h.opts.Language, line
	if fields := strings.Fields(line); len(fields) == 2 && h.supports(fields[0]) {
		lang, prefix = fields[0], fields[1]
	}
	h.handleInput(lang, prefix)
}

func (h *InputHandler) supports(lang string) bool {
	for _, l := range h.recommender.Languages() {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

func (h *InputHandler) handleCommand(cmd string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "user":
		h.user = arg
		if arg == "" {
			h.out.Print("Personalization off")
			return
		}
		h.out.Printf("Ranking for user %q", arg)
	case "pick":
		if h.user == "" || h.lastPrefix == "" || arg == "" {
			h.out.Error("pick needs :user, a previous prefix and a word")
			return
		}
		total, err := h.users.Record(h.lastLang, h.user, arg, h.lastPrefix)
		if err != nil {
			h.out.Errorf("Failed to record selection: %v", err)
			return
		}
		h.out.Printf("Recorded %q for %q (%d selections)", arg, h.lastPrefix, total)
	case "min":
		h.showMinPrefix(arg)
	case "set":
		h.setOption(arg)
	default:
		h.out.Errorf("Unknown command: %s", name)
	}
}

// handleInput validates the prefix's length and content, then prints the
// ranked suggestions with their scores.
func (h *InputHandler) handleInput(lang, prefix string) {
	length := utf8.RuneCountInString(prefix)
	if length < h.opts.MinPrefix {
		h.out.Errorf("Prefix too short: %s", prefix)
		return
	}
	if length > h.opts.MaxPrefix {
		h.out.Errorf("Prefix too long: %s", prefix)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.opts.NoFilter && !utils.IsValidInput(prefix) {
		h.out.Printf("No results found for prefix: '%s'", prefix)
		return
	}

	h.lastLang, h.lastPrefix = lang, prefix
	start := time.Now()

	var suggestions []suggest.Suggestion
	err := h.users.View(lang, h.user, func(p *personalize.Profile) error {
		var err error
		suggestions, err = h.recommender.Recommend(prefix, lang, h.opts.Limit, p)
		return err
	})
	if err != nil {
		h.out.Errorf("Failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		h.out.Printf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	h.out.Printf("Found %d suggestions for prefix '%s' (%s):", len(suggestions), prefix, lang)
	for i, s := range suggest.MatchCase(prefix, suggestions) {
		h.out.Printf("%2d. %-30s (score: %.6g, freq: %.6g)", i+1, wordStyle.Render(s.Word), s.Score, s.Frequency)
	}
}

func (h *InputHandler) showMinPrefix(word string) {
	if word == "" {
		h.out.Error("min needs a word")
		return
	}
	lang := h.opts.Language
	if h.lastLang != "" {
		lang = h.lastLang
	}

	var detail suggest.PrefixDetail
	err := h.users.View(lang, h.user, func(p *personalize.Profile) error {
		var err error
		detail, err = h.recommender.MinPrefixDetail(word, lang, h.opts.Limit, p)
		return err
	})
	if err != nil {
		h.out.Errorf("Failed: %v", err)
		return
	}
	if !detail.Found {
		h.out.Printf("'%s' never reaches the top %d, type all %d characters", word, h.opts.Limit, detail.Length)
		return
	}
	h.out.Printf("'%s' appears after typing '%s' (%d of %d characters)", word, detail.Prefix, detail.Length, utf8.RuneCountInString(word))
}

// setOption applies one ":set key value" to the session, then saves it.
func (h *InputHandler) setOption(arg string) {
	key, value, _ := strings.Cut(arg, " ")
	value = strings.TrimSpace(value)

	var maxLimit, minPrefix, maxPrefix *int
	var filter *bool
	switch key {
	case "filter":
		v, err := strconv.ParseBool(value)
		if err != nil {
			h.out.Errorf("filter needs true or false, got %q", value)
			return
		}
		filter = &v
	case "min_prefix", "max_prefix", "max_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			h.out.Errorf("%s needs a positive number, got %q", key, value)
			return
		}
		switch key {
		case "min_prefix":
			minPrefix = &n
		case "max_prefix":
			maxPrefix = &n
		default:
			maxLimit = &n
		}
	default:
		h.out.Errorf("Unknown setting: %q (min_prefix, max_prefix, max_limit, filter)", key)
		return
	}

	opts := h.opts
	if minPrefix != nil {
		opts.MinPrefix = *minPrefix
	}
	if maxPrefix != nil {
		opts.MaxPrefix = *maxPrefix
	}
	if maxLimit != nil {
		opts.Limit = min(opts.Limit, *maxLimit)
	}
	if filter != nil {
		opts.NoFilter = !*filter
	}
	if opts.MinPrefix > opts.MaxPrefix {
		h.out.Errorf("min_prefix %d is above max_prefix %d", opts.MinPrefix, opts.MaxPrefix)
		return
	}
	h.opts = opts

	if h.opts.Config == nil || h.opts.ConfigPath == "" {
		h.out.Printf("Set %s = %s for this session", key, value)
		return
	}
	if err := h.opts.Config.Update(h.opts.ConfigPath, maxLimit, minPrefix, maxPrefix, filter); err != nil {
		h.out.Errorf("Set %s for this session, but saving failed: %v", key, err)
		return
	}
	h.out.Printf("Set %s = %s, saved to %s", key, value, h.opts.ConfigPath)
}

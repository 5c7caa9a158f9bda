/*
Package server implements msgpack IPC for multi-language word suggestions.

The server reads requests from stdin and writes one response per request to stdout.
The default encoding is binary msgpack; a newline-delimited JSON variant with the same
field names exists for manual testing from a terminal.

# IPC

Every message carries an ID that is echoed back. The action field selects the operation;
an empty action is a completion request:

	{"id": "req_001", "p": "wo", "l": 3, "lang": "en", "u": "alice"}

The server responds with suggestions ranked by personalized score:

	{"id": "req_001", "s": [{"w": "word", "s": 0.0111, "r": 1}, {"w": "work", "s": 0.002, "r": 2}], "c": 2, "t": 145}

The lang field falls back to the configured default language. The user field is optional. Without it, or when personalization is off, the score equals the corpus frequency.
Japanese prefixes may be sent in romaji ("sa" finds "さくら").

A selection updates the user's history so later completions rank the word higher:

	{"id": "sel_001", "action": "select", "lang": "en", "u": "alice", "p": "wo", "w": "word"}
	{"id": "sel_001", "status": "ok", "c": 6}

Corpus lookups and health checks:

	{"id": "f_001", "action": "freq", "lang": "it", "w": "casa"}
	{"id": "st_001", "action": "stats"}

Failures produce a CompletionError with an HTTP-like code: 400 for invalid requests and
unsupported languages, 503 while the indexes are still building.
*/
package server

// Request is the union of all request fields; Action picks which ones are read.
type Request struct {
	ID     string `msgpack:"id" json:"id"`
	Action string `msgpack:"action,omitempty" json:"action,omitempty"` // "", "complete", "select", "freq", "stats"
	Prefix string `msgpack:"p,omitempty" json:"p,omitempty"`
	Limit  int    `msgpack:"l,omitempty" json:"l,omitempty"`
	Lang   string `msgpack:"lang,omitempty" json:"lang,omitempty"`
	User   string `msgpack:"u,omitempty" json:"u,omitempty"`
	Word   string `msgpack:"w,omitempty" json:"w,omitempty"`
}

// CompletionSuggestion - one ranked word
type CompletionSuggestion struct {
	Word  string  `msgpack:"w" json:"w"`
	Score float64 `msgpack:"s" json:"s"`
	Rank  uint16  `msgpack:"r" json:"r"`
}

// CompletionResponse - completion response, TimeTaken in microseconds
type CompletionResponse struct {
	ID          string                 `msgpack:"id" json:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s" json:"s"`
	Count       int                    `msgpack:"c" json:"c"`
	TimeTaken   int64                  `msgpack:"t" json:"t"`
}

// SelectResponse acknowledges a recorded selection. Count is the user's selection total.
type SelectResponse struct {
	ID     string `msgpack:"id" json:"id"`
	Status string `msgpack:"status" json:"status"`
	Count  int    `msgpack:"c" json:"c"`
}

// FrequencyResponse - corpus frequency of a word, 0 when absent
type FrequencyResponse struct {
	ID        string  `msgpack:"id" json:"id"`
	Word      string  `msgpack:"w" json:"w"`
	Frequency float64 `msgpack:"f" json:"f"`
}

// StatsResponse reports build state and index statistics.
type StatsResponse struct {
	ID        string         `msgpack:"id" json:"id"`
	Status    string         `msgpack:"status" json:"status"`
	Languages []string       `msgpack:"languages" json:"languages"`
	Stats     map[string]int `msgpack:"stats" json:"stats"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id" json:"id"`
	Error string `msgpack:"e" json:"e"`
	Code  int    `msgpack:"c" json:"c"`
}

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWithConfig(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		fmt   log.Formatter
		want  string
		quiet bool
	}{
		{"text", log.InfoLevel, log.TextFormatter, "hello", false},
		{"json", log.InfoLevel, log.JSONFormatter, `"msg":"hello"`, false},
		{"below level", log.ErrorLevel, log.TextFormatter, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithConfig(&buf, "wt", tt.level, false, false, tt.fmt)
			l.Info("hello")
			out := buf.String()
			if tt.quiet {
				if out != "" {
					t.Errorf("output = %q, want nothing", out)
				}
				return
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestNewToFollowsGlobalLevel(t *testing.T) {
	prev := log.GetLevel()
	defer log.SetLevel(prev)

	log.SetLevel(log.WarnLevel)
	var buf bytes.Buffer
	l := NewTo(&buf, "")
	l.Info("hidden")
	l.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

package formatting_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/grader/pkg/formatting"
)

type scores struct {
	Shininess  int `json:"shininess"`
	Smoothness int `json:"smoothness"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    scores
		wantErr bool
	}{
		{"direct JSON", `{"shininess":4,"smoothness":3}`, scores{4, 3}, false},
		{"padded JSON", "  {\"shininess\":2,\"smoothness\":5}\n", scores{2, 5}, false},
		{"fenced JSON", "```json\n{\"shininess\":1,\"smoothness\":1}\n```", scores{1, 1}, false},
		{"fence without language", "```\n{\"shininess\":5,\"smoothness\":0}\n```", scores{5, 0}, false},
		{"fence inside prose", "Grades below:\n```json\n{\"shininess\":3,\"smoothness\":3}\n```\nThanks.", scores{3, 3}, false},
		{"plain prose", "Shininess: 4/5", scores{}, true},
		{"empty", "", scores{}, true},
		{"broken fence", "```json\n{broken\n```", scores{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.Parse[scores](tt.input)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("error = %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseErrorTruncatesContent(t *testing.T) {
	_, err := formatting.Parse[scores](strings.Repeat("x", 1000))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 300 {
		t.Errorf("error message length = %d, want truncated", len(err.Error()))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"smoothness", 6, "smooth…"},
		{"ñandú", 2, "ña…"},
	}

	for _, tt := range tests {
		if got := formatting.Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

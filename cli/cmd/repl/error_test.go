package repl

import (
	"context"
	"testing"

	"github.com/ardnew/cnd/cnd"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   bool
	}{
		// A declaration cut off at end of input should keep buffering.
		{"open_bracket", "[nt:file", true},
		{"dangling_super", "[nt:file] >", true},
		{"dangling_dash", "[nt:file]\n-", true},
		{"open_paren", "[nt:file]\n- title (", true},
		// Malformed input inside the source is a real error.
		{"bad_token", "[nt:file] @", false},
		{"unknown_option", "[nt:file] bogus extra", false},
		{"bad_namespace", "<ex 'http://example.com'>", false},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cnd.ParseString(ctx, tt.source)
			if err == nil {
				t.Fatalf("ParseString(%q) succeeded, want error", tt.source)
			}

			if got := incomplete(tt.source, err); got != tt.want {
				t.Errorf("incomplete(%q, %v) = %v, want %v",
					tt.source, err, got, tt.want)
			}
		})
	}
}

func TestIncompleteIgnoresSuccess(t *testing.T) {
	if incomplete("[nt:file]", nil) {
		t.Error("incomplete(nil error) should be false")
	}
}

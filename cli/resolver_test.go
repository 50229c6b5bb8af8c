package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func flagNamed(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func TestResolveReadsSection(t *testing.T) {
	doc := `
config:
  log-level: debug
  log_format: json
  log-time-layout: "15:04:05"
other:
  log-level: ignored
`

	resolver, err := resolve("config")(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		// Exact key match.
		{"log-level", "debug"},
		// Underscore spelling in the file matches the hyphenated flag.
		{"log-format", "json"},
		{"log-time-layout", "15:04:05"},
		// Keys outside the named section are invisible.
		{"not-present", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := resolver.Resolve(nil, nil, flagNamed(tt.flag))
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.flag, err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolveNormalizesNumbers(t *testing.T) {
	doc := `
config:
  indent: 4
  ratio: 1.5
`

	resolver, err := resolve("config")(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, err := resolver.Resolve(nil, nil, flagNamed("indent"))
	if err != nil {
		t.Fatal(err)
	}

	// Kong applies config values through the flag's string parser, so
	// numbers must come back as strings.
	if got != "4" {
		t.Errorf("indent = %v (%T), want \"4\"", got, got)
	}

	got, err = resolver.Resolve(nil, nil, flagNamed("ratio"))
	if err != nil {
		t.Fatal(err)
	}

	if got != "1.5" {
		t.Errorf("ratio = %v (%T), want \"1.5\"", got, got)
	}
}

func TestResolveToleratesBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not_yaml", "{{{{"},
		{"missing_section", "other:\n  key: value"},
		{"section_not_mapping", "config: just a string"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, err := resolve("config")(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("resolve should not fail on bad input: %v", err)
			}

			got, err := resolver.Resolve(nil, nil, flagNamed("log-level"))
			if err != nil {
				t.Fatal(err)
			}

			if got != nil {
				t.Errorf("Resolve = %v, want nil", got)
			}
		})
	}
}

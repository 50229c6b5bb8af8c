package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/cnd/cnd"
	"github.com/ardnew/cnd/log"
	"github.com/ardnew/cnd/pkg"
)

// Compile parses node type definitions and emits them in the chosen format.
type Compile struct {
	JSON    JSON    `cmd:"" default:"withargs" help:"Compile to JSON (default)."`
	YAML    YAML    `cmd:""                    help:"Compile to YAML."`
	Summary Summary `cmd:""                    help:"Summarize compiled definitions."`
}

// compileSource parses the named source and returns the result.
// Read and parse failures are wrapped with the corresponding pkg sentinel
// so that callers can classify them with errors.Is.
func compileSource(ctx context.Context, name string) (*cnd.Result, error) {
	reader, label, err := openSource(ctx, name)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}
	defer reader.Close()

	result, err := cnd.ParseReader(ctx, reader, cnd.WithSystemID(label))
	if err != nil {
		return nil, pkg.ErrParse.Wrap(err)
	}

	return result, nil
}

// JSON compiles node type definitions and outputs them as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	result, err := compileSource(ctx, j.Source)
	if err != nil {
		return err
	}

	err = result.FormatJSON(ctx, stdoutFrom(ctx), j.Indent)
	if err != nil {
		return pkg.ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML compiles node type definitions and outputs them as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	result, err := compileSource(ctx, y.Source)
	if err != nil {
		return err
	}

	err = result.FormatYAML(ctx, stdoutFrom(ctx), y.Indent)
	if err != nil {
		return pkg.ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// Summary compiles node type definitions and prints a one-line summary of
// each definition instead of the full record.
type Summary struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the summary command.
func (s *Summary) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	result, err := compileSource(ctx, s.Source)
	if err != nil {
		return err
	}

	out := stdoutFrom(ctx)

	for i := range result.NodeTypes {
		def := &result.NodeTypes[i]

		var flags string

		if def.Orderable {
			flags += " orderable"
		}

		if def.Mixin {
			flags += " mixin"
		}

		_, err = fmt.Fprintf(out, "%s: %d supertypes, %d properties, %d child nodes%s\n",
			def.Name, len(def.Supertypes), len(def.Properties), len(def.ChildNodes), flags)
		if err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "compiled summary",
		slog.Int("nodeTypes", len(result.NodeTypes)))

	return nil
}

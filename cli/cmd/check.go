package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/cnd/cnd"
	"github.com/ardnew/cnd/log"
	"github.com/ardnew/cnd/pkg"
)

// Check parses node type definitions and reports diagnostics without
// producing any compiled output.
//
// Every source is checked even when an earlier one fails, so a single run
// reports all broken files. The exit status is nonzero if any source fails.
type Check struct {
	Quiet bool `help:"Suppress per-source status lines; only report errors" short:"q"`

	Source []string `arg:"" help:"Source input file(s) or '-' for default stdin." name:"source" optional:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	sources := c.Source
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	out := stdoutFrom(ctx)

	var failed pkg.Error

	for _, source := range sources {
		result, checkErr := checkSource(ctx, source)
		if checkErr != nil {
			failed = failed.Wrap(checkErr)

			fmt.Fprintf(out, "%s: %v\n", source, checkErr)

			continue
		}

		if !c.Quiet {
			fmt.Fprintf(out, "%s: ok (%d node types)\n",
				source, len(result.NodeTypes))
		}
	}

	if len(failed) > 0 {
		return failed
	}

	return nil
}

// checkSource parses a single source for validity.
func checkSource(ctx context.Context, name string) (*cnd.Result, error) {
	reader, label, err := openSource(ctx, name)
	if err != nil {
		return nil, pkg.ErrReadInput.Wrap(err)
	}
	defer reader.Close()

	result, err := cnd.ParseReader(ctx, reader, cnd.WithSystemID(label))
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "checked source",
		slog.String("source", label),
		slog.Int("nodeTypes", len(result.NodeTypes)))

	return result, nil
}

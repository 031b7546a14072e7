// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package swix

import (
	"context"
	"io"

	"github.com/vk/swix/internal/ahl"
	"github.com/vk/swix/internal/ctxlog"
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/model"
)

// Options configures one compilation.
type Options struct {
	// SourcePath is recorded on the document and on diagnostics.
	SourcePath string
	// Variables answer $(swix.var.NAME) references.
	Variables map[string]string
	// LookupEnv answers $(swix.env.NAME) references. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// OnUnused receives attributes that no handler read. May be nil.
	OnUnused ahl.UnusedFunc
}

// Compile reads SWIX source from r and builds the document it describes.
func Compile(ctx context.Context, r io.Reader, opts Options) (*model.Document, error) {
	ctx = ctxlog.With(ctx, "source", opts.SourcePath)
	logger := ctxlog.FromContext(ctx)

	records, err := ahl.Lex(r)
	if err != nil {
		return nil, diag.WithFile(err, opts.SourcePath)
	}
	logger.Debug("Source tokenized.", "lines", len(records))

	doc := model.NewDocument(opts.SourcePath)
	scope := ahl.NewRootScope(ahl.Root{Variables: opts.Variables, LookupEnv: opts.LookupEnv})
	d := ahl.NewDispatcher(ctx, opts.OnUnused)
	if err := d.Run(records, newRootContext(doc), scope); err != nil {
		return nil, diag.WithFile(err, opts.SourcePath)
	}

	logger.Debug("Document built.",
		"directories", countDirectories(doc),
		"cabs", len(doc.Cabs),
		"components", len(doc.Components))
	return doc, nil
}

func countDirectories(doc *model.Document) int {
	n := 0
	_ = doc.WalkDirectories(func(*model.Directory) error {
		n++
		return nil
	})
	return n
}

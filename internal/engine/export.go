package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
)

// ExportInput contains parameters for ExportDigest.
type ExportInput struct {
	Prefix string // date prefix selecting the rows to export
	Dir    string // destination directory, e.g. <base>/exports
	Path   string // optional explicit file path; overrides Dir
}

// ExportOutput contains the result of ExportDigest.
type ExportOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ExportDigest writes a markdown digest of the stored rows matching the
// date prefix. Reads go straight to the durable store; the in-memory list
// is not consulted.
func (e *Engine) ExportDigest(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	if input.Prefix == "" {
		return nil, errors.NewInvalidRequest("prefix is required")
	}

	rows, err := e.store.QueryRecordsByPrefix(ctx, input.Prefix)
	if err != nil {
		return nil, err
	}

	path := input.Path
	if path == "" {
		if input.Dir == "" {
			return nil, errors.NewInvalidRequest("either path or dir is required")
		}
		name := strings.ReplaceAll(input.Prefix, " ", "_") + ".md"
		path = filepath.Join(input.Dir, name)
	}
	if filepath.Ext(path) != ".md" {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("export path must end in .md: %s", path))
	}

	md := card.Digest(input.Prefix, rows)
	if err := os.WriteFile(path, []byte(md), 0600); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ExportOutput{Path: path, Count: len(rows)}, nil
}

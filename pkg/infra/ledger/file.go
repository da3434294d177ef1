package ledger

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/domain/model"
)

// File keeps processed labels in a text file, one label per line
type File struct {
	fs   afero.Fs
	path string
}

var _ interfaces.LedgerStore = (*File)(nil)

// NewFile creates a ledger stored at path on fs
func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

// Load reads the ledger. A missing file is an empty ledger.
func (f *File) Load(ctx context.Context) (model.LabelSet, error) {
	labels, err := f.readLines(ctx)
	if err != nil {
		return model.LabelSet{}, err
	}
	return model.NewLabelSet(labels...), nil
}

// Append adds labels not yet present and rewrites the file through a temporary file
func (f *File) Append(ctx context.Context, labels []string) error {
	current, err := f.readLines(ctx)
	if err != nil {
		return err
	}

	known := model.NewLabelSet(current...)
	lines := current
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" || known.Has(label) {
			continue
		}
		known = known.Union(model.NewLabelSet(label))
		lines = append(lines, label)
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return goerr.Wrap(err, "failed to create ledger directory", goerr.V("path", f.path))
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return goerr.Wrap(err, "failed to write ledger", goerr.V("path", tmp))
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		return goerr.Wrap(err, "failed to replace ledger", goerr.V("path", f.path))
	}

	ctxlog.From(ctx).Debug("Ledger file updated", "path", f.path, "labels", len(lines))
	return nil
}

func (f *File) readLines(ctx context.Context) ([]string, error) {
	exists, err := afero.Exists(f.fs, f.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check ledger file", goerr.V("path", f.path))
	}
	if !exists {
		ctxlog.From(ctx).Info("No ledger file has been found", "path", f.path)
		return nil, nil
	}

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read ledger file", goerr.V("path", f.path))
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to parse ledger file", goerr.V("path", f.path))
	}

	return lines, nil
}

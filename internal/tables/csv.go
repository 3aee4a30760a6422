// Package tables reads and writes the dataset tables as UTF-8 CSV files with
// a byte order mark, the layout spreadsheet tools expect.
package tables

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-synth/internal/gcsuploader"
	"github.com/dvloznov/finance-synth/internal/logger"
)

// Default file names of the three tables.
const (
	CustomersFile    = "d_customer.csv"
	TransactionsFile = "f_transactions.csv"
	MacroFile        = "d_macro_economic.csv"
)

// ErrMissingInput is returned when an input table does not exist.
var ErrMissingInput = errors.New("input table not found")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Create creates (or truncates) a table file, creating parent directories.
func Create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Create: making directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return f, nil
}

// Open opens a table from a local path or a gs://bucket/object URI. A table
// that does not exist yields an error wrapping ErrMissingInput.
func Open(ctx context.Context, store gcsuploader.StorageService, path string) (io.ReadCloser, error) {
	if gcsuploader.IsGCSURI(path) {
		if store == nil {
			return nil, fmt.Errorf("Open: %s: no storage service configured", path)
		}
		data, err := store.FetchFromGCS(ctx, path)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
			}
			return nil, fmt.Errorf("Open: %w", err)
		}

		log := logger.FromContext(ctx)
		log.Debug().
			Str("uri", path).
			Str("file", gcsuploader.ExtractFilenameFromGCSURI(path)).
			Int("bytes", len(data)).
			Msg("Fetched table from GCS")
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("Open: %w", err)
	}
	return f, nil
}

// newWriter writes the byte order mark and header and returns the CSV writer.
func newWriter(w io.Writer, header []string) (*csv.Writer, error) {
	if _, err := w.Write(bom); err != nil {
		return nil, fmt.Errorf("writing BOM: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return cw, nil
}

// newReader skips an optional byte order mark and checks the header.
// Extra trailing columns are tolerated for the fixed-layout tables when
// exact is false.
func newReader(r io.Reader, header []string, exact bool) (*csv.Reader, []string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	got, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	if len(got) < len(header) || (exact && len(got) != len(header)) {
		return nil, nil, fmt.Errorf("unexpected header %v, want %v", got, header)
	}
	for i, name := range header {
		if got[i] != name {
			return nil, nil, fmt.Errorf("unexpected column %d %q, want %q", i, got[i], name)
		}
	}
	return cr, got, nil
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	return cw.Error()
}

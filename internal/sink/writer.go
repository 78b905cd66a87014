package sink

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"csvsink/internal/config"
	"csvsink/internal/constants"
	"csvsink/internal/logger"
	"csvsink/internal/message"
	"csvsink/pkg/errors"
)

// Writer appends validated records to per-stream destination files.
// Filenames carry a run-scoped timestamp token fixed at construction,
// and each stream's header list is resolved at most once per run and
// then reused for every subsequent record of that stream. File handles
// are opened and closed per record, so a crash mid-stream leaves at
// most one partial row and never a corrupted header.
type Writer struct {
	log             logger.Logger
	codec           codec
	destinationPath string
	fixedHeaders    map[string][]string
	flatten         bool
	timestamp       string

	headers   map[string][]string
	filenames map[string]string
	written   map[string]int
}

// ManifestEntry names one file produced during the run, for the
// transfer dispatcher.
type ManifestEntry struct {
	Stream   string
	Filename string
	Path     string
}

func NewWriter(cfg *config.Config, log logger.Logger, start time.Time) (*Writer, error) {
	dest, err := expandUser(cfg.DestinationPath)
	if err != nil {
		return nil, errors.ErrFileIO.
			WithMessage("unable to expand destination path %s", cfg.DestinationPath).
			WithCause(err)
	}

	return &Writer{
		log:             log,
		codec:           newCodec(cfg.Delimiter, cfg.QuoteChar),
		destinationPath: dest,
		fixedHeaders:    cfg.FixedHeaders,
		flatten:         cfg.FlattenRecords,
		timestamp:       start.Format(constants.FileTimestampLayout),
		headers:         make(map[string][]string),
		filenames:       make(map[string]string),
		written:         make(map[string]int),
	}, nil
}

// Append writes one record as a row of the stream's destination file.
// The header row is written first iff the file is empty or nonexistent
// at the moment of the write. Record fields absent from the resolved
// header list are dropped; header columns absent from the record render
// as empty cells.
func (w *Writer) Append(stream string, fields *message.Fields) error {
	if w.flatten {
		fields = flattenFields(fields)
	}

	filename := stream + "-" + w.timestamp + ".csv"
	w.filenames[stream] = filename
	path := filepath.Join(w.destinationPath, filename)

	empty, err := fileEmpty(path)
	if err != nil {
		return errors.ErrFileIO.
			WithMessage("unable to stat destination file %s", path).
			WithCause(err)
	}

	headers, err := w.resolveHeaders(stream, path, empty, fields)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.ErrFileIO.
			WithMessage("unable to open destination file %s", path).
			WithCause(err)
	}
	defer f.Close()

	var row strings.Builder
	if empty {
		row.WriteString(w.codec.encodeRow(headers))
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		if v, ok := fields.Get(h); ok {
			cells[i] = renderValue(v)
		}
	}
	row.WriteString(w.codec.encodeRow(cells))

	if _, err := f.WriteString(row.String()); err != nil {
		return errors.ErrFileIO.
			WithMessage("unable to append to destination file %s", path).
			WithCause(err)
	}
	if err := f.Close(); err != nil {
		return errors.ErrFileIO.
			WithMessage("unable to close destination file %s", path).
			WithCause(err)
	}

	w.written[stream]++
	return nil
}

// resolveHeaders picks the column list for stream: a configured fixed
// header list wins, then the first line of a pre-existing non-empty
// file, then the record's own field order. Whatever is picked is cached
// for the rest of the run.
func (w *Writer) resolveHeaders(stream, path string, empty bool, fields *message.Fields) ([]string, error) {
	if h, ok := w.headers[stream]; ok {
		return h, nil
	}

	h, err := w.inferHeaders(stream, path, empty, fields)
	if err != nil {
		return nil, err
	}

	w.headers[stream] = h
	w.log.Debugw("Headers resolved", "stream", stream, "headers", h)
	return h, nil
}

func (w *Writer) inferHeaders(stream, path string, empty bool, fields *message.Fields) ([]string, error) {
	if fixed, ok := w.fixedHeaders[stream]; ok {
		return fixed, nil
	}

	if !empty {
		h, err := w.readHeaderRow(path)
		if err != nil {
			return nil, err
		}
		if len(h) > 0 {
			return h, nil
		}
	}

	return fieldNames(fields), nil
}

// readHeaderRow adopts the first line of an existing destination file
// as the header list. An empty first line yields nil, which falls back
// to the record's field names.
func (w *Writer) readHeaderRow(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrFileIO.
			WithMessage("unable to read headers from %s", path).
			WithCause(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.MaxLineBytes)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.ErrFileIO.
				WithMessage("unable to read headers from %s", path).
				WithCause(err)
		}
		return nil, nil
	}

	line := strings.TrimSuffix(scanner.Text(), "\r")
	if line == "" {
		return nil, nil
	}

	cells, err := w.codec.decodeRow(line)
	if err != nil {
		return nil, errors.ErrFileIO.
			WithMessage("malformed header row in %s", path).
			WithCause(err)
	}
	return cells, nil
}

// Manifest lists the files produced this run, ordered by stream name.
func (w *Writer) Manifest() []ManifestEntry {
	streams := make([]string, 0, len(w.filenames))
	for s := range w.filenames {
		streams = append(streams, s)
	}
	sort.Strings(streams)

	entries := make([]ManifestEntry, 0, len(streams))
	for _, s := range streams {
		entries = append(entries, ManifestEntry{
			Stream:   s,
			Filename: w.filenames[s],
			Path:     filepath.Join(w.destinationPath, w.filenames[s]),
		})
	}
	return entries
}

// Written reports per-stream row counts for the end-of-run summary.
func (w *Writer) Written() map[string]int {
	counts := make(map[string]int, len(w.written))
	for s, n := range w.written {
		counts[s] = n
	}
	return counts
}

func fieldNames(fields *message.Fields) []string {
	names := make([]string, 0, fields.Len())
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func fileEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

func expandUser(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

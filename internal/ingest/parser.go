// Package ingest turns raw sheet rows into typed records, collecting
// non-fatal problems as warnings instead of failing the import.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vinodismyname/buzzlens/config"
	"github.com/vinodismyname/buzzlens/internal/chunk"
	"github.com/vinodismyname/buzzlens/internal/model"
	"github.com/vinodismyname/buzzlens/internal/months"
	"github.com/vinodismyname/buzzlens/internal/schema"
)

var (
	// ErrMissingHeader means there is no usable header row.
	ErrMissingHeader = errors.New("ingest: missing header row")
	// ErrUnreadable means the workbook or sheet could not be opened.
	ErrUnreadable = errors.New("ingest: unreadable workbook")
)

// Result is the outcome of a parse. Warnings keeps header warnings first,
// then row warnings in row order.
type Result struct {
	Records  []model.Record `json:"records"`
	Warnings []string       `json:"warnings"`
	// Skipped counts blank rows.
	Skipped int `json:"skipped"`
}

// Parser is safe for concurrent use; per-call state lives on the stack.
type Parser struct {
	resolver    *schema.Resolver
	months      *months.Normalizer
	chunkSize   int
	maxWarnings int
	firstRow    int
	progress    chunk.ProgressFunc
}

// Option customizes a Parser.
type Option func(*Parser)

// WithChunkSize sets the number of rows handled per batch.
func WithChunkSize(n int) Option { return func(p *Parser) { p.chunkSize = n } }

// WithMaxWarnings caps the number of row warnings kept verbatim.
func WithMaxWarnings(n int) Option { return func(p *Parser) { p.maxWarnings = n } }

// WithFirstRow sets the sheet row number of rows[0], used in warning text.
func WithFirstRow(n int) Option { return func(p *Parser) { p.firstRow = n } }

// WithProgress registers a callback fired after every batch.
func WithProgress(fn chunk.ProgressFunc) Option { return func(p *Parser) { p.progress = fn } }

// NewParser builds a Parser. Nil collaborators fall back to the built-in tables.
func NewParser(r *schema.Resolver, m *months.Normalizer, opts ...Option) *Parser {
	if r == nil {
		r = schema.NewResolver(schema.DefaultAliases())
	}
	if m == nil {
		m = months.New(nil)
	}
	p := &Parser{
		resolver:    r,
		months:      m,
		chunkSize:   config.DefaultChunkSize,
		maxWarnings: config.DefaultMaxWarnings,
		firstRow:    1,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// warnings keeps the first max messages and counts the rest.
type warnings struct {
	max      int
	kept     []string
	overflow int
}

func (w *warnings) add(format string, args ...any) {
	if len(w.kept) < w.max {
		w.kept = append(w.kept, fmt.Sprintf(format, args...))
		return
	}
	w.overflow++
}

func (w *warnings) list() []string {
	if w.overflow == 0 {
		return w.kept
	}
	return append(w.kept, fmt.Sprintf("... %d more warnings", w.overflow))
}

// ParseSheet converts a header row plus data rows into records. Only a
// missing header is fatal; everything else becomes a warning and the row is
// still emitted with defaults. Context cancellation is checked between batches.
func (p *Parser) ParseSheet(ctx context.Context, header []string, rows [][]string) (Result, error) {
	if blank(header) {
		return Result{}, ErrMissingHeader
	}
	mapping := p.resolver.ResolveHeaders(header)

	var res Result
	for _, f := range mapping.Missing() {
		res.Warnings = append(res.Warnings, fmt.Sprintf("missing required column %q", f))
	}
	for _, h := range mapping.Unresolved {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unrecognized column %q ignored", h))
	}
	for _, h := range mapping.Duplicates {
		res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate column %q ignored", h))
	}

	rowWarn := &warnings{max: p.maxWarnings}
	res.Records = make([]model.Record, 0, len(rows))
	err := chunk.Process(ctx, len(rows), p.chunkSize, func(start, end int) error {
		for i := start; i < end; i++ {
			if blank(rows[i]) {
				res.Skipped++
				continue
			}
			res.Records = append(res.Records, p.parseRow(rows[i], p.firstRow+i, mapping, rowWarn))
		}
		return nil
	}, p.progress)
	if err != nil {
		return Result{}, err
	}
	res.Warnings = append(res.Warnings, rowWarn.list()...)
	return res, nil
}

func (p *Parser) parseRow(row []string, rowNum int, mapping schema.Mapping, w *warnings) model.Record {
	var rec model.Record
	for col, cell := range row {
		field, ok := mapping.Columns[col]
		if !ok {
			continue
		}
		switch {
		case field == model.FieldYear:
			y, isBlank, ok := parseYear(cell)
			if !ok && !isBlank {
				w.add("row %d: year %q is not a whole number", rowNum, strings.TrimSpace(cell))
			}
			rec.Year = y
		case field == model.FieldMonth:
			if strings.TrimSpace(cell) == "" {
				continue
			}
			m := p.months.Normalize(cell)
			if !p.months.Known(m) {
				w.add("row %d: unknown month %q kept as-is", rowNum, string(m))
			}
			rec.Month = m
		case field == model.FieldCategory:
			rec.Category = strings.TrimSpace(cell)
		case field == model.FieldKeyword:
			rec.Keyword = strings.TrimSpace(cell)
		case field == model.FieldQuadrant:
			rec.Quadrant = strings.TrimSpace(cell)
		case field.Numeric():
			v, isBlank, ok := parseNumber(cell)
			if !ok && !isBlank {
				w.add("row %d: %s %q is not a number", rowNum, field, strings.TrimSpace(cell))
			}
			rec.SetNumber(field, v)
		}
	}
	return rec
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

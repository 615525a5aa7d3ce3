// Package export writes record sets out as tables. Ratio columns are
// rendered as percentages in the output only; records are never modified.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/vinodismyname/buzzlens/config"
	"github.com/vinodismyname/buzzlens/internal/chunk"
	"github.com/vinodismyname/buzzlens/internal/model"
	"github.com/xuri/excelize/v2"
)

// Format selects the output encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned by Write for formats other than xlsx and csv.
var ErrUnknownFormat = errors.New("export: unknown format")

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Records"

// Header returns the column titles in canonical field order.
func Header() []string {
	out := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		out[i] = string(f)
	}
	return out
}

// Row projects one record to cell values in canonical field order.
func Row(r model.Record) []any {
	out := make([]any, 0, len(model.Fields))
	for _, f := range model.Fields {
		switch {
		case f == model.FieldYear:
			out = append(out, r.Year)
		case f == model.FieldMonth:
			out = append(out, string(r.Month))
		case f == model.FieldCategory:
			out = append(out, r.Category)
		case f == model.FieldKeyword:
			out = append(out, r.Keyword)
		case f == model.FieldQuadrant:
			out = append(out, r.Quadrant)
		case f.Ratio():
			out = append(out, model.ToPercent(r.Number(f)))
		default:
			out = append(out, r.Number(f))
		}
	}
	return out
}

// Table builds header plus rows for the whole set.
func Table(records []model.Record) [][]any {
	h := Header()
	header := make([]any, len(h))
	for i, s := range h {
		header[i] = s
	}
	out := make([][]any, 0, len(records)+1)
	out = append(out, header)
	for _, r := range records {
		out = append(out, Row(r))
	}
	return out
}

type options struct {
	chunkSize int
}

// Option configures Write, WriteXLSX and WriteCSV.
type Option func(*options)

// WithChunkSize sets how many rows are written between progress events.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{chunkSize: config.DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write encodes records in the given format.
func Write(ctx context.Context, w io.Writer, format Format, records []model.Record, progress chunk.ProgressFunc, opts ...Option) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(ctx, w, records, progress, opts...)
	case FormatCSV:
		return WriteCSV(ctx, w, records, progress, opts...)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteXLSX streams records into a single-sheet workbook.
func WriteXLSX(ctx context.Context, w io.Writer, records []model.Record, progress chunk.ProgressFunc, opts ...Option) error {
	o := buildOptions(opts)
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	h := Header()
	header := make([]any, len(h))
	for i, s := range h {
		header[i] = s
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	err = chunk.Process(ctx, len(records), o.chunkSize, func(start, end int) error {
		for i := start; i < end; i++ {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := sw.SetRow(cell, Row(records[i])); err != nil {
				return err
			}
		}
		return nil
	}, logged(ctx, progress))
	if err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// WriteCSV writes records as comma-separated text with a header line.
func WriteCSV(ctx context.Context, w io.Writer, records []model.Record, progress chunk.ProgressFunc, opts ...Option) error {
	o := buildOptions(opts)
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	err := chunk.Process(ctx, len(records), o.chunkSize, func(start, end int) error {
		for i := start; i < end; i++ {
			row := Row(records[i])
			line := make([]string, len(row))
			for j, v := range row {
				line[j] = cellText(v)
			}
			if err := cw.Write(line); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}, logged(ctx, progress))
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// logged wraps a progress callback with a debug line per batch.
func logged(ctx context.Context, fn chunk.ProgressFunc) chunk.ProgressFunc {
	log := zerolog.Ctx(ctx)
	return func(p chunk.Progress) {
		log.Debug().Int("done", p.Done).Int("total", p.Total).Msg("export progress")
		if fn != nil {
			fn(p)
		}
	}
}

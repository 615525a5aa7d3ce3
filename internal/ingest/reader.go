package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Sheet layout: row 1 is a free-text annotation, row 2 the header, data from row 3.
const (
	HeaderRow    = 2
	FirstDataRow = 3
)

// Sheet holds the raw cell text of one worksheet.
type Sheet struct {
	Name       string
	Annotation []string
	Header     []string
	Rows       [][]string
	// Truncated is set when maxRows stopped the read early.
	Truncated bool
}

// ReadSheet streams a worksheet's rows. An empty name selects the first
// sheet; maxRows <= 0 means no cap on data rows.
func ReadSheet(ctx context.Context, f *excelize.File, name string, maxRows int) (Sheet, error) {
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return Sheet{}, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
		}
		name = list[0]
	}
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return Sheet{}, fmt.Errorf("%w: sheet %q does not exist", ErrUnreadable, name)
	}

	it, err := f.Rows(name)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer it.Close()

	out := Sheet{Name: name}
	rowIdx := 0
	for it.Next() {
		rowIdx++
		if rowIdx%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return Sheet{}, err
			}
		}
		cols, cerr := it.Columns(excelize.Options{RawCellValue: true})
		if cerr != nil {
			return Sheet{}, fmt.Errorf("%w: row %d: %v", ErrUnreadable, rowIdx, cerr)
		}
		switch {
		case rowIdx < HeaderRow:
			out.Annotation = cols
		case rowIdx == HeaderRow:
			out.Header = cols
		default:
			if maxRows > 0 && len(out.Rows) >= maxRows {
				out.Truncated = true
				return out, nil
			}
			out.Rows = append(out.Rows, cols)
		}
	}
	if rowIdx < HeaderRow {
		return Sheet{}, ErrMissingHeader
	}
	return out, nil
}

// ReadFile opens the workbook at path and reads one sheet from it.
func ReadFile(ctx context.Context, path, sheet string, maxRows int) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()
	return ReadSheet(ctx, f, sheet, maxRows)
}

// ParseFile reads and parses a workbook in one step, logging the outcome
// through the context logger.
func (p *Parser) ParseFile(ctx context.Context, path, sheet string, maxRows int) (Result, Sheet, error) {
	log := zerolog.Ctx(ctx)
	sh, err := ReadFile(ctx, path, sheet, maxRows)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("workbook read failed")
		return Result{}, Sheet{}, err
	}
	rp := *p
	rp.firstRow = FirstDataRow
	res, err := rp.ParseSheet(ctx, sh.Header, sh.Rows)
	if err != nil {
		return Result{}, sh, err
	}
	if sh.Truncated {
		res.Warnings = append(res.Warnings, fmt.Sprintf("import truncated at %d rows", maxRows))
	}
	log.Info().
		Str("path", path).
		Str("sheet", sh.Name).
		Int("records", len(res.Records)).
		Int("skipped", res.Skipped).
		Int("warnings", len(res.Warnings)).
		Msg("workbook parsed")
	return res, sh, nil
}

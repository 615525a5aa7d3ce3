package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/buzzlens/internal/model"
	"github.com/xuri/excelize/v2"
)

func createListeningWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	sh := "Buzz"
	require.NoError(t, f.SetSheetName("Sheet1", sh))
	require.NoError(t, f.SetSheetRow(sh, "A1", &[]string{"Social listening export, 2024"}))
	require.NoError(t, f.SetSheetRow(sh, "A2", &[]string{"年份", "月份", "品类", "关键词", "TTL Buzz", "TTL Buzz YOY"}))
	require.NoError(t, f.SetSheetRow(sh, "A3", &[]any{2024, 1, "Tops", "tee", 1200, "10%"}))
	require.NoError(t, f.SetSheetRow(sh, "A4", &[]any{2024, "2月", "Tops", "tee", 1500, "12%"}))
	require.NoError(t, f.SetSheetRow(sh, "A5", &[]any{2024, "Feb", "Bottoms", "jeans", 900, "-5%"}))

	path := filepath.Join(t.TempDir(), "listening.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadFile_Layout(t *testing.T) {
	path := createListeningWorkbook(t)
	sh, err := ReadFile(context.Background(), path, "", 0)
	require.NoError(t, err)
	require.Equal(t, "Buzz", sh.Name)
	require.Equal(t, []string{"Social listening export, 2024"}, sh.Annotation)
	require.Equal(t, "年份", sh.Header[0])
	require.Len(t, sh.Rows, 3)
	require.False(t, sh.Truncated)
}

func TestReadFile_MaxRows(t *testing.T) {
	path := createListeningWorkbook(t)
	sh, err := ReadFile(context.Background(), path, "Buzz", 2)
	require.NoError(t, err)
	require.Len(t, sh.Rows, 2)
	require.True(t, sh.Truncated)
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), "", 0)
	require.ErrorIs(t, err, ErrUnreadable)

	bad := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("not a workbook"), 0o600))
	_, err = ReadFile(context.Background(), bad, "", 0)
	require.ErrorIs(t, err, ErrUnreadable)

	path := createListeningWorkbook(t)
	_, err = ReadFile(context.Background(), path, "Nope", 0)
	require.ErrorIs(t, err, ErrUnreadable)
}

func TestReadSheet_AnnotationOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"note"}))
	_, err := ReadSheet(context.Background(), f, "", 0)
	require.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseFile_EndToEnd(t *testing.T) {
	path := createListeningWorkbook(t)
	ctx := zerolog.Nop().WithContext(context.Background())

	res, sh, err := NewParser(nil, nil).ParseFile(ctx, path, "", 0)
	require.NoError(t, err)
	require.Equal(t, "Buzz", sh.Name)
	require.Len(t, res.Records, 3)
	require.Empty(t, res.Warnings)

	require.Equal(t, model.January, res.Records[0].Month)
	require.Equal(t, model.February, res.Records[1].Month)
	require.Equal(t, model.February, res.Records[2].Month)
	require.InDelta(t, -0.05, res.Records[2].BuzzYoY, 1e-9)
	require.Equal(t, 1500.0, res.Records[1].BuzzTotal)
}

func TestParseFile_PercentFormattedCellKeepsFraction(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"note"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"Year", "Month", "Category", "Keyword", "TTL Buzz", "TTL Buzz YOY"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2024, 3, "Tops", "tee", 1200, 0.1234}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "F3", "F3", style))
	path := filepath.Join(t.TempDir(), "percent.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, _, err := NewParser(nil, nil).ParseFile(zerolog.Nop().WithContext(context.Background()), path, "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Empty(t, res.Warnings)
	require.InDelta(t, 0.1234, res.Records[0].BuzzYoY, 1e-9)
	require.Equal(t, 1200.0, res.Records[0].BuzzTotal)
}

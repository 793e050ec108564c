package excel

import (
	"context"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"gocausal/app"
	"gocausal/domain/effect"
	"gocausal/internal/errors"
)

const overviewSheet = "Overview"

// Writer exports a finished run as an Excel workbook: an overview sheet
// listing every estimate, then one sheet per lesson.
type Writer struct {
	Path string
}

func NewWriter(path string) *Writer { return &Writer{Path: path} }

func (w *Writer) Name() string { return "workbook:" + w.Path }

// Write implements app.Sink.
func (w *Writer) Write(_ context.Context, res *app.RunResult) error {
	return w.WriteWorkbook(res)
}

// WriteWorkbook writes the workbook to the configured path.
func (w *Writer) WriteWorkbook(res *app.RunResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverview(f, res); err != nil {
		return errors.ExportFailed(w.Path, err)
	}
	for _, rep := range res.Reports {
		if err := writeLessonSheet(f, rep); err != nil {
			return errors.ExportFailed(w.Path, err)
		}
	}
	if err := f.SaveAs(w.Path); err != nil {
		return errors.ExportFailed(w.Path, err)
	}
	return nil
}

func writeOverview(f *excelize.File, res *app.RunResult) error {
	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return err
	}

	m := res.Manifest
	if err := setRow(f, overviewSheet, 1, "Causal Inference Lessons"); err != nil {
		return err
	}
	meta := [][2]any{
		{"Run", m.RunID.String()},
		{"Seed", m.Seed},
		{"Code", m.CodeVersion},
		{"Fingerprint", m.Fingerprint.String()},
		{"Lessons", strings.Join(m.Lessons, ", ")},
	}
	row := 3
	for _, kv := range meta {
		if err := setRow(f, overviewSheet, row, kv[0], kv[1]); err != nil {
			return err
		}
		row++
	}

	row++
	if err := setRow(f, overviewSheet, row, "Lesson", "Method", "Label", "Estimate", "SE", "Lower", "Upper", "p", "N"); err != nil {
		return err
	}
	row++
	for _, rep := range res.Reports {
		for _, e := range rep.Estimates {
			err := setRow(f, overviewSheet, row,
				rep.LessonName, string(e.Method), e.Label,
				num(e.Value), num(e.SE), num(e.Lower), num(e.Upper), num(e.P), e.N)
			if err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeLessonSheet(f *excelize.File, rep *effect.Report) error {
	sheet := rep.LessonName
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := setRow(f, sheet, 1, rep.Title); err != nil {
		return err
	}
	if err := setRow(f, sheet, 2, "Seed", rep.Seed); err != nil {
		return err
	}
	row := 4

	if rep.Failed() {
		return setRow(f, sheet, row, "Failed", rep.Err)
	}

	if len(rep.Estimates) > 0 {
		if err := setRow(f, sheet, row, "Method", "Label", "Estimate", "SE", "Lower", "Upper", "p", "N"); err != nil {
			return err
		}
		row++
		for _, e := range rep.Estimates {
			err := setRow(f, sheet, row,
				string(e.Method), e.Label,
				num(e.Value), num(e.SE), num(e.Lower), num(e.Upper), num(e.P), e.N)
			if err != nil {
				return err
			}
			row++
		}
		row++
	}

	for _, tbl := range rep.Tables {
		if err := setRow(f, sheet, row, tbl.Title); err != nil {
			return err
		}
		row++
		if err := setRow(f, sheet, row, strCells(tbl.Columns)...); err != nil {
			return err
		}
		row++
		for _, cells := range tbl.Rows {
			if err := setRow(f, sheet, row, strCells(cells)...); err != nil {
				return err
			}
			row++
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells ...any) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func strCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// num keeps workbook cells numeric where the value allows it. Excel has
// no NaN cell, so non-finite values degrade to a label.
func num(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return v
}

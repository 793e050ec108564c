package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gocausal/internal/errors"
)

// MatchInput is a parsed matching dataset: one unit per row with a
// binary treatment flag and a propensity score.
type MatchInput struct {
	Units     []string
	Treatment []int
	Score     []float64
}

// DataReader reads matching input from Excel and CSV files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the given path, picking the
// format by extension.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadMatchInput reads the file and extracts the unit, treatment and
// score columns. Headers match case-insensitively; the unit column is
// optional and falls back to the 1-based data row number.
func (r *DataReader) ReadMatchInput() (*MatchInput, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("input file %s", r.filePath))
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("input needs a header row and at least one data row")
	}
	return parseMatchRows(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.filePath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", r.filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.filePath, err)
	}
	return rows, nil
}

func parseMatchRows(rows [][]string) (*MatchInput, error) {
	unitCol, treatCol, scoreCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "unit", "id":
			if unitCol == -1 {
				unitCol = i
			}
		case "treatment", "treated":
			if treatCol == -1 {
				treatCol = i
			}
		case "score", "propensity":
			if scoreCol == -1 {
				scoreCol = i
			}
		}
	}
	if treatCol == -1 || scoreCol == -1 {
		return nil, errors.InvalidInput("header must name a treatment and a score column")
	}

	in := &MatchInput{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rowNum := i + 1

		rawTreat, ok := cellAt(row, treatCol)
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: missing treatment cell", rowNum))
		}
		treat, err := strconv.Atoi(rawTreat)
		if err != nil || (treat != 0 && treat != 1) {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: treatment must be 0 or 1, got %q", rowNum, rawTreat))
		}

		rawScore, ok := cellAt(row, scoreCol)
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: missing score cell", rowNum))
		}
		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, errors.InvalidInput(fmt.Sprintf("row %d: score must be a finite number, got %q", rowNum, rawScore))
		}

		unit := strconv.Itoa(i)
		if unitCol != -1 {
			if v, ok := cellAt(row, unitCol); ok {
				unit = v
			}
		}

		in.Units = append(in.Units, unit)
		in.Treatment = append(in.Treatment, treat)
		in.Score = append(in.Score, score)
	}
	if len(in.Score) == 0 {
		return nil, errors.InvalidInput("no data rows after the header")
	}
	return in, nil
}

func cellAt(row []string, idx int) (string, bool) {
	if idx >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[idx])
	if v == "" {
		return "", false
	}
	return v, true
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

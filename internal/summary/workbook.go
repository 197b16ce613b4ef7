package summary

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/geotagx/gtx-builder/internal/project"
)

// Workbook sheet names.
const (
	QuestionSheet = "Questionnaire"
	OptionSheet   = "Options"
)

var (
	questionHeader = []any{"#", "Key", "Type", "Locale", "Question", "Hint", "Branch"}
	optionHeader   = []any{"Key", "Value", "Locale", "Label"}
)

// Workbook exports the questionnaire of p for translators, with one row per
// question and available locale. Missing translations are left blank. The
// caller must close the returned file.
func Workbook(p *project.Project) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", QuestionSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(OptionSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillWorkbook(f, p); err != nil {
		f.Close()
		return nil, fmt.Errorf("exporting %s: %w", p.ShortName, err)
	}
	return f, nil
}

// WriteWorkbook saves the export of p to path.
func WriteWorkbook(p *project.Project, path string) error {
	f, err := Workbook(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func fillWorkbook(f *excelize.File, p *project.Project) error {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	questions := [][]any{questionHeader}
	options := [][]any{optionHeader}
	codes := p.Locale.Codes()
	for i, q := range p.Questionnaire.Questions() {
		for _, code := range codes {
			questions = append(questions, []any{
				i + 1, q.Key, string(q.Type), code, q.Prompt[code], q.Hint[code],
				p.Questionnaire.Branch(q.Key).String(),
			})
		}
		for _, o := range q.Parameters.Options() {
			for _, code := range codes {
				options = append(options, []any{q.Key, o.Value, code, o.Label[code]})
			}
		}
	}

	if err := writeRows(f, QuestionSheet, questions, header); err != nil {
		return err
	}
	return writeRows(f, OptionSheet, options, header)
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

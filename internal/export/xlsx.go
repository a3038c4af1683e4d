// Package export renders a student's plans as an XLSX workbook: one summary sheet plus one sheet
// per plan listing its prescriptions.
package export

import (
	"fmt"
	"io"
	"strings"

	"bassinifit/coach-app/internal/logger"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Resumo"

// Entry is one prescription row.
type Entry struct {
	Exercise    string
	MuscleGroup string
	Category    string
	Sets        string
	Reps        string
	Rest        string
}

// Plan is one plan with its rows, already in display order.
type Plan struct {
	Name         string
	DayType      string
	DayOfWeek    string
	MuscleGroups string
	Notes        string
	Completed    int
	Total        int
	Entries      []Entry
}

// Workbook is everything written for one student.
type Workbook struct {
	StudentName string
	Date        string // day the progress columns refer to
	Plans       []Plan
}

var (
	summaryHeaders = []string{"Treino", "Tipo de dia", "Dia da semana", "Grupos musculares", "Concluídos", "Total", "Observações"}
	entryHeaders   = []string{"#", "Exercício", "Grupo muscular", "Categoria", "Séries", "Repetições", "Descanso"}
)

// Write encodes wb as XLSX into w.
func Write(w io.Writer, wb Workbook) error {
	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			logger.Errorf("Error closing XLSX file: %v", err)
		}
	}()

	headerStyle, err := xlsx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := xlsx.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	title := fmt.Sprintf("%s - %s", wb.StudentName, wb.Date)
	if err := xlsx.SetCellValue(summarySheet, "A1", title); err != nil {
		return err
	}
	if err := writeHeader(xlsx, summarySheet, 2, summaryHeaders, headerStyle); err != nil {
		return err
	}
	for i, p := range wb.Plans {
		row := []interface{}{p.Name, p.DayType, p.DayOfWeek, p.MuscleGroups, p.Completed, p.Total, p.Notes}
		if err := writeRow(xlsx, summarySheet, i+3, row); err != nil {
			return err
		}
	}
	_ = xlsx.SetColWidth(summarySheet, "A", "A", 16)
	_ = xlsx.SetColWidth(summarySheet, "D", "D", 30)
	_ = xlsx.SetColWidth(summarySheet, "G", "G", 40)

	// Sheet names compare case-insensitively
	used := map[string]bool{summarySheet: true, strings.ToLower(summarySheet): true}
	for _, p := range wb.Plans {
		name := uniqueSheetName(p.Name, used)
		if _, err := xlsx.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeHeader(xlsx, name, 1, entryHeaders, headerStyle); err != nil {
			return err
		}
		for i, e := range p.Entries {
			row := []interface{}{i + 1, e.Exercise, e.MuscleGroup, e.Category, e.Sets, e.Reps, e.Rest}
			if err := writeRow(xlsx, name, i+2, row); err != nil {
				return err
			}
		}
		if p.Notes != "" {
			cell, _ := excelize.CoordinatesToCellName(1, len(p.Entries)+3)
			if err := xlsx.SetCellValue(name, cell, p.Notes); err != nil {
				return err
			}
		}
		_ = xlsx.SetColWidth(name, "B", "C", 28)
	}

	// Open on the summary when the file is opened
	if idx, err := xlsx.GetSheetIndex(summarySheet); err == nil {
		xlsx.SetActiveSheet(idx)
	}
	_, err = xlsx.WriteTo(w)
	return err
}

func writeHeader(xlsx *excelize.File, sheet string, row int, headers []string, style int) error {
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := xlsx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	return xlsx.SetCellStyle(sheet, first, last, style)
}

func writeRow(xlsx *excelize.File, sheet string, row int, values []interface{}) error {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return xlsx.SetSheetRow(sheet, cell, &values)
}

// uniqueSheetName makes a valid, unused sheet name: at most 31 characters, none of []:*?/\.
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Treino"
	}
	clean = truncateRunes(clean, 31)
	candidate := clean
	for n := 2; used[strings.ToLower(candidate)] || used[candidate]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(clean, 31-len(suffix)) + suffix
	}
	used[candidate] = true
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amonteverde/cv-valorador/internal/models"
	"github.com/amonteverde/cv-valorador/internal/rubric"
	"github.com/xuri/excelize/v2"
)

// Tier fill colors, best to worst.
var tierColors = []string{"C6EFCE", "FFEB9C", "FFC7CE", "FF9999"}

// ExportToExcel generates an Excel file with the ranked valuation results
func ExportToExcel(results []models.CandidateResult, cfg *rubric.Config, calibrated bool, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	// Clean the path for cross-platform compatibility (Windows paths)
	outputPath = filepath.Clean(outputPath)

	summarySheet := "Resumen"
	rankingSheet := "Ranking"
	detectorsSheet := "Detectores"

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(rankingSheet)
	f.NewSheet(detectorsSheet)

	if err := createSummarySheet(f, summarySheet, results, cfg, calibrated); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := createRankingSheet(f, rankingSheet, results, cfg); err != nil {
		return fmt.Errorf("failed to create ranking sheet: %w", err)
	}

	if err := createDetectorsSheet(f, detectorsSheet, results, cfg); err != nil {
		return fmt.Errorf("failed to create detectors sheet: %w", err)
	}

	// Try to save the file directly
	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}

		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func newHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
}

// tierIndex maps a category's row position to a fill color tier, so the best
// categories stay green no matter how many rows the table has
func tierIndex(cfg *rubric.Config, label string) int {
	for i, cat := range cfg.Categories {
		if cat.Label == label {
			tier := i * len(tierColors) / len(cfg.Categories)
			if tier >= len(tierColors) {
				tier = len(tierColors) - 1
			}
			return tier
		}
	}
	return len(tierColors) - 1
}

// createSummarySheet creates the summary sheet with run details and the
// category distribution
func createSummarySheet(f *excelize.File, sheetName string, results []models.CandidateResult, cfg *rubric.Config, calibrated bool) error {
	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	setLabeled := func(row int, label string, value interface{}) {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), label)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), value)
	}

	row := 1

	// Title
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Informe de Valoración de CV")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	setLabeled(row, "Generado:", time.Now().Format("2006-01-02 15:04:05"))
	row++
	setLabeled(row, "Versión de rúbrica:", cfg.Version)
	row++
	mode := "puntaje base"
	if calibrated {
		mode = "puntaje calibrado"
	}
	setLabeled(row, "Modo:", mode)
	row++
	setLabeled(row, "Candidatos valorados:", len(results))
	row++

	noteText := "Si hay menos candidatos que archivos, algunos CV pudieron ser omitidos: " +
		"imágenes escaneadas sin texto, formatos no soportados, documentos vacíos, " +
		"o nombres de archivo fuera de la convención Nombre_CV.pdf."
	setLabeled(row, "Nota:", noteText)
	row += 2

	// Category distribution
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Distribución por categoría:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row++

	if len(results) > 0 {
		counts := make(map[string]int)
		for _, r := range results {
			counts[r.Result.Category]++
		}
		for _, cat := range cfg.Categories {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), cat.Label+":")
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), counts[cat.Label])
			row++
		}
		row++

		max := results[0].Result.Total
		min := results[0].Result.Total
		sum := 0
		for _, r := range results {
			if r.Result.Total > max {
				max = r.Result.Total
			}
			if r.Result.Total < min {
				min = r.Result.Total
			}
			sum += r.Result.Total
		}

		setLabeled(row, "Puntaje más alto:", max)
		row++
		setLabeled(row, "Puntaje más bajo:", min)
		row++
		setLabeled(row, "Puntaje promedio:", fmt.Sprintf("%.2f", float64(sum)/float64(len(results))))
	}

	return nil
}

// createRankingSheet creates the ranked candidates sheet with one column per
// rubric section and color-coding by category tier
func createRankingSheet(f *excelize.File, sheetName string, results []models.CandidateResult, cfg *rubric.Config) error {
	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return err
	}

	tierStyles := make([]int, len(tierColors))
	linkStyles := make([]int, len(tierColors))
	for i, color := range tierColors {
		tierStyles[i], err = f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorders(),
		})
		if err != nil {
			return err
		}
		linkStyles[i], err = f.NewStyle(&excelize.Style{
			Font:   &excelize.Font{Color: "0563C1", Underline: "single"},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorders(),
		})
		if err != nil {
			return err
		}
	}

	// Headers: one column per section, labeled with its cap
	headers := []string{"Puesto", "Candidato", "Unidad"}
	for _, sec := range cfg.Sections {
		headers = append(headers, fmt.Sprintf("%s (/%d)", sec.Name, sec.Cap))
	}
	headers = append(headers, "Base", "Total", "Categoría", "CV")

	for col, header := range headers {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		width := 14.0
		switch header {
		case "Candidato", "Categoría":
			width = 28
		case "Puesto", "CV":
			width = 8
		}
		f.SetColWidth(sheetName, name, name, width)
		cell := name + "1"
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}

	for i, result := range results {
		row := i + 2
		tier := tierIndex(cfg, result.Result.Category)

		values := []interface{}{result.Rank, result.Name, result.Unit}
		for _, sec := range cfg.Sections {
			values = append(values, result.Result.SectionSubtotals[sec.Name])
		}
		values = append(values, result.Result.BaseTotal, result.Result.Total, result.Result.Category)

		for col, v := range values {
			name, err := excelize.ColumnNumberToName(col + 1)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", name, row), v)
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), tierStyles[tier])

		// CV link in the last column
		cvCell := fmt.Sprintf("%s%d", lastCol, row)
		if result.CVPath != "" {
			absPath, err := filepath.Abs(result.CVPath)
			if err != nil {
				absPath = result.CVPath
			}
			f.SetCellValue(sheetName, cvCell, "Abrir CV")
			fileURL := "file:///" + strings.ReplaceAll(absPath, "\\", "/")
			f.SetCellHyperLink(sheetName, cvCell, fileURL, "External")
			f.SetCellStyle(sheetName, cvCell, cvCell, linkStyles[tier])
		}
	}

	// Enable auto-filter
	if len(results) > 0 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:%s%d", lastCol, len(results)+1), []excelize.AutoFilterOptions{})
	}

	// Freeze top row
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// createDetectorsSheet writes the per-item signal counts so a reviewer can
// audit exactly which mentions produced each subtotal
func createDetectorsSheet(f *excelize.File, sheetName string, results []models.CandidateResult, cfg *rubric.Config) error {
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 26)
	f.SetColWidth(sheetName, "E", "E", 12)

	headerStyle, err := newHeaderStyle(f)
	if err != nil {
		return err
	}

	cellStyle, err := f.NewStyle(&excelize.Style{
		Border: thinBorders(),
	})
	if err != nil {
		return err
	}

	headers := []string{"Puesto", "Candidato", "Sección", "Detector", "Conteo"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// Rows follow rubric declaration order; zero counts are skipped
	row := 2
	for _, result := range results {
		for _, sec := range cfg.Sections {
			for _, item := range sec.Items() {
				count, ok := result.Result.SignalCounts[item.Name]
				if !ok || count == 0 {
					continue
				}
				f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), result.Rank)
				f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), result.Name)
				f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), sec.Name)
				f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), item.Name)
				f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), count)
				f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), cellStyle)
				row++
			}
		}
	}

	// Freeze top row
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/xuri/excelize/v2"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Duration  time.Duration
	Source    string
	// Writer receives console output; nil means os.Stdout
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate creates output in the specified format
func Generate(plan *dto.ProductionPlanResponse, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(plan, config)
	case "json":
		return generateJSONOutput(plan, config)
	case "csv":
		return generateCSVOutput(plan, config)
	case "xlsx":
		return generateXLSXOutput(plan, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(plan *dto.ProductionPlanResponse, config Config) error {
	var report bytes.Buffer
	writeTextReport(&report, plan, config)

	if _, err := config.writer().Write(report.Bytes()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	if config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "production_plan.txt")
	if err := os.WriteFile(filename, report.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write text file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", filename)
	}
	return nil
}

func writeTextReport(out io.Writer, plan *dto.ProductionPlanResponse, config Config) {
	fmt.Fprintf(out, "📊 Production Plan Summary\n")
	fmt.Fprintf(out, "==========================\n\n")
	if plan.RunID != "" {
		fmt.Fprintf(out, "Run: %s\n", plan.RunID)
	}
	if config.Source != "" {
		fmt.Fprintf(out, "Source: %s\n", config.Source)
	}
	fmt.Fprintf(out, "Products: %d\n", plan.TotalProducts)
	fmt.Fprintf(out, "Units: %d\n", plan.TotalUnits)
	fmt.Fprintf(out, "Grand Total: %s\n", plan.GrandTotal.StringFixed(2))
	if plan.UpperBound != nil {
		fmt.Fprintf(out, "Upper Bound: %s\n", plan.UpperBound.StringFixed(2))
	}
	if config.Duration > 0 {
		fmt.Fprintf(out, "Optimization Time: %v\n", config.Duration)
	}
	fmt.Fprintln(out)

	if len(plan.Suggestions) == 0 {
		fmt.Fprintf(out, "Nothing can be produced from the available stock.\n\n")
	} else {
		fmt.Fprintf(out, "📋 Suggested Production:\n")
		fmt.Fprintf(out, "%-12s %-30s %-10s %-12s %-14s\n",
			"Code", "Product", "Qty", "Unit Value", "Total Value")
		fmt.Fprintf(out, "%-12s %-30s %-10s %-12s %-14s\n",
			"------------", "------------------------------", "----------", "------------", "--------------")
		for _, s := range plan.Suggestions {
			fmt.Fprintf(out, "%-12s %-30s %-10d %-12s %-14s\n",
				s.ProductCode,
				s.ProductName,
				s.Quantity,
				s.UnitValue.StringFixed(2),
				s.TotalValue.StringFixed(2))
		}
		fmt.Fprintln(out)
	}

	if len(plan.Leftover) > 0 {
		fmt.Fprintf(out, "📦 Leftover Stock:\n")
		fmt.Fprintf(out, "%-12s %-14s\n", "Code", "Quantity")
		fmt.Fprintf(out, "%-12s %-14s\n", "------------", "--------------")
		for _, b := range plan.Leftover {
			fmt.Fprintf(out, "%-12s %-14s\n", b.Code, b.Quantity.String())
		}
		fmt.Fprintln(out)
	}

	if len(plan.Unconstrained) > 0 {
		fmt.Fprintf(out, "⚠️  Products without composition (planned only up to their demand cap): %v\n\n", plan.Unconstrained)
	}

}

// generateJSONOutput creates JSON output
func generateJSONOutput(plan *dto.ProductionPlanResponse, config Config) error {
	jsonData, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "production_plan.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes the plan and the leftover stock as two CSV files
func generateCSVOutput(plan *dto.ProductionPlanResponse, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	planFile := filepath.Join(config.OutputDir, "production_plan.csv")
	if err := writeCSV(planFile, planRows(plan)); err != nil {
		return fmt.Errorf("failed to write production plan CSV: %w", err)
	}

	leftoverFile := filepath.Join(config.OutputDir, "leftover_stock.csv")
	if err := writeCSV(leftoverFile, leftoverRows(plan)); err != nil {
		return fmt.Errorf("failed to write leftover stock CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.writer(), "  Production Plan: %s\n", planFile)
		fmt.Fprintf(config.writer(), "  Leftover Stock: %s\n", leftoverFile)
	}
	return nil
}

// generateXLSXOutput writes a workbook with a Plan and a Leftover sheet
func generateXLSXOutput(plan *dto.ProductionPlanResponse, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for XLSX format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Plan"); err != nil {
		return fmt.Errorf("failed to name plan sheet: %w", err)
	}
	if err := writeSheet(f, "Plan", planRows(plan), []int{0, 3, 4, 5}, headerStyle); err != nil {
		return err
	}

	summaryRow := len(plan.Suggestions) + 2
	summaryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create summary style: %w", err)
	}
	summary := map[string]interface{}{
		fmt.Sprintf("A%d", summaryRow): "Total",
		fmt.Sprintf("D%d", summaryRow): plan.TotalUnits,
		fmt.Sprintf("F%d", summaryRow): plan.GrandTotal.InexactFloat64(),
	}
	for cell, value := range summary {
		if err := f.SetCellValue("Plan", cell, value); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetCellStyle("Plan", fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	if _, err := f.NewSheet("Leftover"); err != nil {
		return fmt.Errorf("failed to create leftover sheet: %w", err)
	}
	if err := writeSheet(f, "Leftover", leftoverRows(plan), []int{0, 2}, headerStyle); err != nil {
		return err
	}

	colWidths := []float64{12, 12, 30, 10, 12, 14}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth("Plan", col, col, w); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
	}

	filename := filepath.Join(config.OutputDir, "production_plan.xlsx")
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write XLSX file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 XLSX results saved to: %s\n", filename)
	}
	return nil
}

func planRows(plan *dto.ProductionPlanResponse) [][]string {
	rows := [][]string{{"product_id", "product_code", "product_name", "quantity", "unit_value", "total_value"}}
	for _, s := range plan.Suggestions {
		rows = append(rows, []string{
			strconv.FormatInt(s.ProductID, 10),
			s.ProductCode,
			s.ProductName,
			strconv.FormatInt(s.Quantity, 10),
			s.UnitValue.String(),
			s.TotalValue.String(),
		})
	}
	return rows
}

func leftoverRows(plan *dto.ProductionPlanResponse) [][]string {
	rows := [][]string{{"raw_material_id", "code", "quantity"}}
	for _, b := range plan.Leftover {
		rows = append(rows, []string{
			strconv.FormatInt(b.RawMaterialID, 10),
			b.Code,
			b.Quantity.String(),
		})
	}
	return rows
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return file.Close()
}

// writeSheet writes rows from A1; the numeric columns of data rows are
// stored as numbers
func writeSheet(f *excelize.File, sheet string, rows [][]string, numericColumns []int, headerStyle int) error {
	numeric := make(map[int]bool, len(numericColumns))
	for _, c := range numericColumns {
		numeric[c] = true
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			var cellValue interface{} = value
			if r > 0 && numeric[c] {
				if n, err := strconv.ParseFloat(value, 64); err == nil {
					cellValue = n
				}
			}
			if err := f.SetCellValue(sheet, cell, cellValue); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		last, _ := excelize.ColumnNumberToName(len(rows[0]))
		if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	return nil
}

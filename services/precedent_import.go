package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"caseflow/models"
	"caseflow/repositories"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportResult contains the summary of a bulk import run
type ImportResult struct {
	TotalProcessed int
	SuccessCount   int
	FailedCount    int
	Errors         []string
}

const (
	importSheetInstructions = "Instructions"
	importSheetPrecedents   = "Precedents"
)

// Precedents sheet columns:
// 0: Name*, 1: Reference Number, 2: Court*, 3: Decision Date (YYYY-MM-DD),
// 4: Favoured Party, 5: Practice Area Code, 6: Legal Principle*, 7: Summary,
// 8: Binding (yes/no)
var precedentHeaders = []string{
	"Name*",
	"Reference Number",
	"Court*",
	"Decision Date (YYYY-MM-DD)",
	"Favoured Party (plaintiff/defendant)",
	"Practice Area Code",
	"Legal Principle*",
	"Summary",
	"Binding (yes/no)",
}

// GeneratePrecedentTemplate builds the Excel template for bulk precedent
// import, listing the active practice area codes on the instructions sheet
func GeneratePrecedentTemplate(dbConn *gorm.DB) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", importSheetInstructions)

	f.SetCellValue(importSheetInstructions, "A1", "Precedent Import Template")
	f.SetCellValue(importSheetInstructions, "A3", "Considerations:")
	f.SetCellValue(importSheetInstructions, "A4", "- Columns marked with * are required")
	f.SetCellValue(importSheetInstructions, "A5", "- Dates use the YYYY-MM-DD format")
	f.SetCellValue(importSheetInstructions, "A6", "- Favoured party must be 'plaintiff', 'defendant' or empty for neutral decisions")
	f.SetCellValue(importSheetInstructions, "A7", "- Binding accepts yes/no; empty means no")
	f.SetCellValue(importSheetInstructions, "A8", "- The practice area code must match one of the codes listed below")

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	f.SetCellValue(importSheetInstructions, "A10", "Valid practice area codes:")
	f.SetCellStyle(importSheetInstructions, "A10", "A10", titleStyle)

	areas, err := repositories.NewPracticeAreaRepository(dbConn).FindActive()
	if err == nil {
		row := 11
		for _, area := range areas {
			f.SetCellValue(importSheetInstructions, fmt.Sprintf("A%d", row), fmt.Sprintf("%s - %s", area.Code, area.Name))
			row++
		}
	}

	mainTitleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(importSheetInstructions, "A1", "A1", mainTitleStyle)
	f.SetColWidth(importSheetInstructions, "A", "A", 80)

	f.NewSheet(importSheetPrecedents)
	for i, header := range precedentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(importSheetPrecedents, cell, header)
	}
	f.SetColWidth(importSheetPrecedents, "A", "I", 24)

	exampleAreaCode := "CIV"
	if len(areas) > 0 {
		exampleAreaCode = areas[0].Code
	}

	f.SetCellValue(importSheetPrecedents, "A2", "Smith v. Jones")
	f.SetCellValue(importSheetPrecedents, "B2", "2024-CA-0042")
	f.SetCellValue(importSheetPrecedents, "C2", "Court of Appeals")
	f.SetCellValue(importSheetPrecedents, "D2", time.Now().AddDate(-1, 0, 0).Format("2006-01-02"))
	f.SetCellValue(importSheetPrecedents, "E2", models.FavouredPartyPlaintiff)
	f.SetCellValue(importSheetPrecedents, "F2", exampleAreaCode)
	f.SetCellValue(importSheetPrecedents, "G2", "Negligence requires a duty of care owed to the claimant")
	f.SetCellValue(importSheetPrecedents, "H2", "Short summary of the decision...")
	f.SetCellValue(importSheetPrecedents, "I2", "yes")

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(importSheetPrecedents, "A1", "I1", headerStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// AnalyzePrecedentFile reads the file and returns the number of data rows
func AnalyzePrecedentFile(file io.Reader) (int, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return 0, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	rows, err := precedentRows(f)
	if err != nil {
		return 0, err
	}

	total := 0
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
			total++
		}
	}
	return total, nil
}

// BulkImportPrecedents parses the Excel file and creates precedent records.
// All rows are written inside one transaction; the run is rolled back when
// every row fails.
func BulkImportPrecedents(dbConn *gorm.DB, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	rows, err := precedentRows(f)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}}

	// Pre-fetch practice area codes so each row resolves from memory
	areaByCode := make(map[string]string)
	var areas []models.PracticeArea
	if err := dbConn.Find(&areas).Error; err == nil {
		for _, area := range areas {
			areaByCode[strings.ToUpper(area.Code)] = area.ID
		}
	}

	tx := dbConn.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 1 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		result.TotalProcessed++

		name := strings.TrimSpace(row[0])
		court := cell(row, 2)
		principle := cell(row, 6)
		if court == "" || principle == "" {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: court and legal principle are required", i+1))
			continue
		}

		p := models.Precedent{
			Name:            name,
			ReferenceNumber: cell(row, 1),
			Court:           court,
			LegalPrinciple:  principle,
			Summary:         cell(row, 7),
			IsBinding:       parseBool(cell(row, 8)),
		}

		if raw := cell(row, 3); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid decision date %q", i+1, raw))
				continue
			}
			p.DecisionDate = &t
		}

		if party := strings.ToLower(cell(row, 4)); party != "" {
			if !models.IsValidFavouredParty(party) {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid favoured party %q", i+1, party))
				continue
			}
			p.FavouredParty = &party
		}

		if code := strings.ToUpper(cell(row, 5)); code != "" {
			areaID, ok := areaByCode[code]
			if !ok {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: practice area code %q not found", i+1, code))
				continue
			}
			p.PracticeAreaID = &areaID
		}

		if err := tx.Create(&p).Error; err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: failed to save precedent: %v", i+1, err))
			continue
		}
		result.SuccessCount++
	}

	if result.FailedCount > 0 && result.SuccessCount == 0 {
		tx.Rollback()
		return result, fmt.Errorf("all rows failed")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

// precedentRows locates the data sheet, tolerating templates where the
// instructions sheet was removed
func precedentRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("invalid excel format: no sheets")
	}
	name := sheets[len(sheets)-1]
	for _, s := range sheets {
		if s == importSheetPrecedents {
			name = s
			break
		}
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read precedents sheet: %w", err)
	}
	return rows, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

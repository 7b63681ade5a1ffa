package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"skill-sync-backend/internal/domain"
	"skill-sync-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"PLATFORM",
	"CERTIFICATION",
	"TYPE",
	"SCORE",
	"RANKING",
	"VERIFICATION STATUS",
	"VERIFICATION URL",
	"BADGE IMAGE",
	"SYNCED AT",
}

// ExportCertifications renders the user's certifications as xlsx (default) or csv
func (u *skillPlatformUsecase) ExportCertifications(ctx context.Context, userID, format string) ([]byte, string, error) {
	if userID == "" {
		return nil, "", apperror.Unauthenticated()
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, "", apperror.BadRequest(fmt.Sprintf("unsupported export format: %s", format))
	}

	certs, err := u.repo.ListCertifications(ctx, userID, "")
	if err != nil {
		return nil, "", apperror.Persistence("failed to list certifications", err)
	}

	rows := make([][]string, 0, len(certs))
	for _, c := range certs {
		rows = append(rows, certificationRow(c))
	}

	stamp := u.now().Format("20060102_150405")
	if format == "csv" {
		data, err := exportCSV(rows)
		if err != nil {
			return nil, "", apperror.Internal(err)
		}
		return data, fmt.Sprintf("skill_certifications_%s.csv", stamp), nil
	}

	data, err := exportExcel(rows)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, fmt.Sprintf("skill_certifications_%s.xlsx", stamp), nil
}

func certificationRow(c domain.CertificationRecord) []string {
	return []string{
		c.PlatformName,
		c.CertificationName,
		c.CertificationType,
		deref(c.Score),
		deref(c.Ranking),
		c.VerificationStatus,
		c.VerificationURL,
		deref(c.BadgeImageURL),
		c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func exportExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Certifications"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Dark blue header row with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return buf.Bytes(), nil
}

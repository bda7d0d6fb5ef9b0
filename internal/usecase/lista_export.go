package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
)

var exportHeaders = []string{"NOMBRE", "APELLIDO", "CELULAR", "EMAIL", "RUBRO", "PUESTO", "CALIFICACIÓN", "NO LLAMAR"}

// Export renders the lista members as xlsx (default) or csv and returns the
// file with a suggested filename.
func (u *listaUsecase) Export(ctx context.Context, id, format string) ([]byte, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return nil, "", apperror.BadRequest("Formato no soportado: use xlsx o csv")
	}

	detail, err := u.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(detail.Curriculums))
	for _, c := range detail.Curriculums {
		noLlamar := "NO"
		if c.NoLlamar {
			noLlamar = "SI"
		}
		rows = append(rows, []string{c.Nombre, c.Apellido, c.Celular, c.Email, c.Rubro, c.Puesto, c.Calificacion, noLlamar})
	}

	base := exportBaseName(detail.Lista)
	if format == "csv" {
		data, err := exportCSV(rows)
		if err != nil {
			return nil, "", apperror.Internal(err)
		}
		return data, base + ".csv", nil
	}
	data, err := exportExcel(detail.Lista, rows)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, base + ".xlsx", nil
}

func exportExcel(l domain.Lista, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Curriculums"
	f.SetSheetName("Sheet1", sheetName)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// header in the lista's own color with white text
	color := l.Color
	if color == "" {
		color = domain.DefaultListaColor
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
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
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func exportBaseName(l domain.Lista) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, l.Cliente+"_"+l.Puesto)
	return fmt.Sprintf("lista_%s_%s", strings.Trim(slug, "_"), time.Now().Format("20060102_150405"))
}

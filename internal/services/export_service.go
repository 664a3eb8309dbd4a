package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/udistrital/gestion_ofertas_mid/helpers"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	internaldto "github.com/udistrital/gestion_ofertas_mid/internal/dto"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

// Formatos de exportación.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportFile es un adjunto listo para escribir en la respuesta.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Exportar genera el archivo con todos los registros del profesional.
func (s *GestionService) Exportar(ctx context.Context, schema *catalog.Schema, owner, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if err := validate.Struct(internaldto.ExportReq{Format: format}); err != nil {
		return nil, helpers.NewAppError(http.StatusBadRequest, "formato no soportado: "+format, err)
	}

	records, err := s.store.All(ctx, schema, owner)
	if err != nil {
		return nil, storeError(err, "error exportando registros")
	}
	schema.SortRecords(records, "", "")

	var buf bytes.Buffer
	file := &ExportFile{Filename: fmt.Sprintf("%s-%s.%s", schema.Path, s.now().Format("20060102"), format)}
	switch format {
	case FormatPDF:
		file.ContentType = "application/pdf"
		err = writePDF(&buf, schema, records)
	default:
		file.ContentType = "text/csv; charset=utf-8"
		err = writeCSV(&buf, schema, records)
	}
	if err != nil {
		return nil, helpers.NewAppError(http.StatusInternalServerError, "error generando exportación", err)
	}
	file.Body = buf.Bytes()
	return file, nil
}

func exportHeader(schema *catalog.Schema, fields []catalog.Field) []string {
	header := make([]string, 0, len(fields)+3)
	header = append(header, "ID")
	for _, f := range fields {
		header = append(header, f.Label)
	}
	header = append(header, "Statut", "Créé le")
	for _, key := range schema.ReadOnly {
		header = append(header, key)
	}
	return header
}

func exportRow(schema *catalog.Schema, fields []catalog.Field, rec models.Record) []string {
	row := make([]string, 0, len(fields)+3)
	row = append(row, rec.ID())
	for _, f := range fields {
		switch f.Kind {
		case catalog.FieldList:
			row = append(row, strings.Join(rec.Strings(f.Key), "; "))
		case catalog.FieldDate:
			row = append(row, catalog.DateOnly(rec.String(f.Key)))
		default:
			row = append(row, rec.String(f.Key))
		}
	}
	row = append(row, schema.Badge(rec.Status()).Label, catalog.DateOnly(rec.String(models.KeyCreatedAt)))
	for _, key := range schema.ReadOnly {
		row = append(row, fmt.Sprintf("%d", rec.Int(key)))
	}
	return row
}

func writeCSV(w io.Writer, schema *catalog.Schema, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader(schema, schema.Fields)); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(exportRow(schema, schema.Fields, rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writePDF genera una tabla apaisada con las columnas visibles del listado.
func writePDF(w io.Writer, schema *catalog.Schema, records []models.Record) error {
	columns := schema.Columns()
	header := exportHeader(schema, columns)

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(schema.Label, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(schema.Label), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d enregistrement(s)", len(records))), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := (pageWidth - left - right) / float64(len(header))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range header {
		pdf.CellFormat(width, 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, rec := range records {
		for _, cell := range exportRow(schema, columns, rec) {
			pdf.CellFormat(width, 6, tr(truncate(cell, 40)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

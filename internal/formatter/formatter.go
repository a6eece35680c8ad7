// package formatter exports generated batches as PDF documents and plain listings (CSV, Markdown, text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/barcodegen/internal/models"
	"github.com/desertthunder/barcodegen/internal/shared"
)

// ExportToCSV converts a Batch to CSV format with columns: Product, Number, Code
func ExportToCSV(batch *models.Batch) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Product", "Number", "Code"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, code := range batch.Codes {
		record := []string{
			batch.ProductCode,
			strconv.Itoa(batch.First + i),
			code,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Batch to a Markdown summary with a numbered code list
func ExportToMarkdown(batch *models.Batch) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s (%s)\n\n", batch.ProductName, batch.ProductCode))
	buf.WriteString(fmt.Sprintf("**Numbers**: %d-%d\n", batch.First, batch.Last))
	buf.WriteString(fmt.Sprintf("**Codes**: %d\n", batch.Len()))
	if !batch.CreatedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Generated**: %s\n", batch.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	}
	buf.WriteString("\n## Codes\n\n")

	for i, code := range batch.Codes {
		buf.WriteString(fmt.Sprintf("%d. `%s`\n", batch.First+i, code))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Batch to plain text, one code per line
func ExportToText(batch *models.Batch) ([]byte, error) {
	var buf bytes.Buffer
	for _, code := range batch.Codes {
		buf.WriteString(code)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of batch metadata (without codes)
func ToMetadataJSON(batch *models.Batch) ([]byte, error) {
	meta := *batch
	meta.Codes = nil
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	CodesFile    string
	MetadataFile string
}

// WriteCSVExport exports a batch to CSV format with accompanying metadata JSON file.
//
// Defaults to "<product>_<first>-<last>" as the base filename & creates {base}_codes.csv and {base}_metadata.json
func WriteCSVExport(batch *models.Batch, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(batch)
	}

	csvData, err := ExportToCSV(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	codesFile := baseFilepath + "_codes.csv"
	if err := os.WriteFile(codesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("%w: failed to write CSV file: %v", shared.ErrExport, err)
	}

	metadataJSON, err := ToMetadataJSON(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("%w: failed to write metadata file: %v", shared.ErrExport, err)
	}

	return &CSVExportResult{
		CodesFile:    codesFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport writes the Markdown summary of a batch.
//
// Defaults to {base}.md as the filename.
func WriteMarkdownExport(batch *models.Batch, filepath string) (string, error) {
	if filepath == "" {
		filepath = defaultBase(batch) + ".md"
	}

	mdData, err := ExportToMarkdown(batch)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write Markdown file: %v", shared.ErrExport, err)
	}
	return filepath, nil
}

// WriteTextExport exports a batch to plain text format.
//
// Defaults to {base}_codes.txt as the filename.
func WriteTextExport(batch *models.Batch, filepath string) (string, error) {
	if filepath == "" {
		filepath = defaultBase(batch) + "_codes.txt"
	}

	textData, err := ExportToText(batch)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write text file: %v", shared.ErrExport, err)
	}

	return filepath, nil
}

func defaultBase(batch *models.Batch) string {
	return fmt.Sprintf("%s_%d-%d", batch.ProductCode, batch.First, batch.Last)
}

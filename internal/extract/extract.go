// Package extract pulls plain text out of uploaded business documents.
//
// Extraction is best effort: a file that cannot be parsed yields an empty
// string, never an error. The caller decides what an all-empty batch means.
package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tealeg/xlsx/v2"

	"github.com/intakedesk/intakedesk/internal/models"
)

// Text extracts plain text from one uploaded file, dispatching on the file
// extension. Unsupported and unparseable files yield an empty string.
func Text(name string, data []byte) string {
	defer func() {
		// Third-party parsers panic on some malformed files; a corrupt
		// upload must degrade to empty text, not kill the request.
		if r := recover(); r != nil {
			slog.Warn("extract.Text: parser panic", "file", name, "panic", r)
		}
	}()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return pdfText(name, data)
	case ".docx":
		return docxText(name, data)
	case ".pptx":
		return pptxText(name, data)
	case ".xlsx", ".xls":
		return xlsxText(name, data)
	case ".txt", ".md", ".csv":
		return string(data)
	default:
		slog.Debug("extract.Text: unsupported file type", "file", name)
		return ""
	}
}

// Files extracts each upload in turn, pairing names with their text.
func Files(names []string, contents [][]byte) []models.ExtractedDocument {
	docs := make([]models.ExtractedDocument, 0, len(names))
	for i, name := range names {
		docs = append(docs, models.ExtractedDocument{Name: name, Text: Text(name, contents[i])})
	}
	return docs
}

func pdfText(name string, data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("extract.pdfText: failed to open PDF", "file", name, "error", err)
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		slog.Warn("extract.pdfText: failed to read PDF text", "file", name, "error", err)
		return ""
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		slog.Warn("extract.pdfText: failed to copy PDF text", "file", name, "error", err)
		return ""
	}
	return strings.TrimSpace(b.String())
}

// xmlTagPattern strips markup from OOXML part content. Paragraph and row
// closers are replaced with newlines first so the text keeps its shape.
var (
	xmlParagraphPattern = regexp.MustCompile(`</(?:w:p|a:p|text:p)>`)
	xmlTagPattern       = regexp.MustCompile(`<[^>]+>`)
)

func docxText(name string, data []byte) string {
	content := zipPart(name, data, "word/document.xml")
	if content == "" {
		return ""
	}
	return strings.TrimSpace(stripXML(content))
}

func pptxText(name string, data []byte) string {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("extract.pptxText: failed to open archive", "file", name, "error", err)
		return ""
	}

	var slides []string
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f.Name)
		}
	}
	sort.Strings(slides)

	var b strings.Builder
	for i, slide := range slides {
		content := readZipFile(r, slide)
		text := strings.TrimSpace(stripXML(content))
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[Slide %d]\n%s\n\n", i+1, text)
	}
	return strings.TrimSpace(b.String())
}

func xlsxText(name string, data []byte) string {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		slog.Warn("extract.xlsxText: failed to open workbook", "file", name, "error", err)
		return ""
	}

	var b strings.Builder
	for _, sheet := range file.Sheets {
		var rows []string
		for _, row := range sheet.Rows {
			var cells []string
			for _, cell := range row.Cells {
				if v := strings.TrimSpace(cell.String()); v != "" {
					cells = append(cells, v)
				}
			}
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, "\t"))
			}
		}
		if len(rows) > 0 {
			fmt.Fprintf(&b, "[Sheet: %s]\n%s\n\n", sheet.Name, strings.Join(rows, "\n"))
		}
	}
	return strings.TrimSpace(b.String())
}

// zipPart returns the named entry of a zip archive, or "" when the archive
// or the entry is unreadable.
func zipPart(name string, data []byte, part string) string {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Warn("extract.zipPart: failed to open archive", "file", name, "error", err)
		return ""
	}
	return readZipFile(r, part)
}

func readZipFile(r *zip.Reader, part string) string {
	for _, f := range r.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return ""
		}
		return string(content)
	}
	return ""
}

// stripXML flattens OOXML markup into plain text, keeping paragraph breaks.
func stripXML(content string) string {
	content = xmlParagraphPattern.ReplaceAllString(content, "\n")
	content = xmlTagPattern.ReplaceAllString(content, " ")
	content = strings.ReplaceAll(content, "&amp;", "&")
	content = strings.ReplaceAll(content, "&lt;", "<")
	content = strings.ReplaceAll(content, "&gt;", ">")
	content = strings.ReplaceAll(content, "&quot;", `"`)
	content = strings.ReplaceAll(content, "&apos;", "'")

	lines := strings.Split(content, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

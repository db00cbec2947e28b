// Package ingest turns typed text and uploaded files into feedback items.
package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"feedbackbot/internal/textnorm"
)

// ErrUnsupportedFormat is returned for file types that cannot be read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var manualSeparators = regexp.MustCompile(`\r?\n|;|\|\|`)

// SplitManual splits typed feedback on newlines, ';' and '||'.
func SplitManual(text string) []string {
	return nonBlank(manualSeparators.Split(text, -1))
}

// Dedupe drops repeated items, keeping the first occurrence.
func Dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// Collect merges file items and typed items, file items first. Items are
// cleaned before duplicates are dropped, so entries that differ only in
// control characters or quote style count as one.
func Collect(fileItems []string, manual string) []string {
	items := append([]string(nil), fileItems...)
	items = append(items, SplitManual(manual)...)
	return Dedupe(nonBlank(textnorm.NormalizeAll(items)))
}

// ExtractFeedbacks reads one feedback item per line (.txt, .docx, .pdf) or
// per row of the first column (.csv, .xlsx; the first row is a header).
// Blank items are dropped.
func ExtractFeedbacks(filename string, r io.Reader) ([]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt":
		return readText(r)
	case ".csv":
		return readCSV(r)
	case ".xlsx":
		return readXLSX(r)
	case ".docx":
		return readDOCX(r)
	case ".pdf":
		return readPDF(r)
	default:
		if ext == "" {
			ext = filename
		}
		return nil, fmt.Errorf("%w: %s (use .txt, .csv, .xlsx, .docx or .pdf)", ErrUnsupportedFormat, ext)
	}
}

func readText(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	return nonBlank(strings.Split(text, "\n")), nil
}

func readCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var column []string
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) > 0 {
			column = append(column, record[0])
		}
	}
	return nonBlank(column), nil
}

func readXLSX(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	var column []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		column = append(column, row[0])
	}
	return nonBlank(column), nil
}

// readDOCX walks word/document.xml and emits one line per paragraph or
// explicit line break.
func readDOCX(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, errors.New("open docx: word/document.xml not found")
	}
	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	var (
		lines  []string
		line   strings.Builder
		inText bool
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
	}
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode docx: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteString("\t")
			case "br", "cr":
				flush()
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				line.Write(el)
			}
		}
	}
	flush()
	return nonBlank(lines), nil
}

// readPDF splits the text of each page into lines.
func readPDF(r io.Reader) (items []string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	// The pdf parser panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			items, err = nil, fmt.Errorf("parse pdf: %v", p)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Font names are only unique within a page.
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}
	return nonBlank(lines), nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

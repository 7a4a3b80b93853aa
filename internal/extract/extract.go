// Package extract turns uploaded resume files into normalized plain text.
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MinTextLength is the shortest normalized text accepted as a readable resume.
const MinTextLength = 50

var (
	// ErrUnsupportedFormat is returned for extensions other than .pdf and .docx.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrCorruptFile is returned when a supported file cannot be parsed.
	ErrCorruptFile = errors.New("unable to read file")
)

var supported = map[string]func([]byte) (string, error){
	".pdf":  extractPDF,
	".docx": extractDOCX,
}

// CheckExtension validates the file name's extension without touching the content.
func CheckExtension(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := supported[ext]; !ok {
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Errorf("%w: only PDF and DOCX files are allowed, received %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Extract returns the normalized text of a .pdf or .docx payload.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func Extract(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := CheckExtension(fileName); err != nil {
		return "", err
	}
	fn := supported[strings.ToLower(filepath.Ext(fileName))]
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrCorruptFile)
	}
	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return Normalize(text), nil
}

// Usable reports whether normalized text is long enough to analyze.
func Usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTextLength
}

var (
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	newlineRuns     = regexp.MustCompile(` ?\n[\s]*`)
)

// Normalize collapses whitespace runs to one space and newline runs to one newline, then
// trims the result.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse: %v", rec)
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent())
}

// stripDocxXML keeps character data from WordprocessingML, ending paragraphs, breaks and
// tabs with whitespace.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}

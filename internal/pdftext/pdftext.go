// Package pdftext reads and reshapes PDF files without OCR.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PlainText extracts the text layer of the PDF at path. Malformed files can
// panic inside the parser; those panics are returned as errors.
func PlainText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic on %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HasText reports whether the PDF already carries extractable text. Any
// failure counts as no text.
func HasText(path string) bool {
	text, err := PlainText(path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(text) != ""
}

// StrippedLen counts the characters that remain after trimming surrounding
// whitespace.
func StrippedLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

func relaxedConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// PageCount returns the number of pages in the PDF.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// Merge concatenates the given single- or multi-page PDFs into out.
func Merge(inputs []string, out string) error {
	if len(inputs) == 0 {
		return errors.New("merge: no input files")
	}
	if len(inputs) == 1 {
		return copyFile(inputs[0], out)
	}
	return api.MergeCreateFile(inputs, out, false, relaxedConfig())
}

// Optimize rewrites in to out with pdfcpu's optimizer.
func Optimize(in, out string) error {
	return api.OptimizeFile(in, out, relaxedConfig())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

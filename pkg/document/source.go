package document

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// byteOrderMark is dropped from the start of UTF-8 input
const byteOrderMark = "\ufeff"

// ReadSource returns the text content of the question file at path.
// PDF files are converted with pdftotext; everything else is read as
// UTF-8 with invalid sequences replaced.
func ReadSource(ctx context.Context, path string) (string, error) {
	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err = extractTextFromPDF(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}

	data = bytes.TrimPrefix(data, []byte(byteOrderMark))
	return strings.ToValidUTF8(string(data), "\ufffd"), nil
}

// extractTextFromPDF uses pdftotext to extract text content
func extractTextFromPDF(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return nil, &ExtractError{Tool: "pdftotext", Err: err}
	}
	return output, nil
}

package ocr

import (
	"fmt"
	"os"
)

// stagePDF writes the upload to a temporary file for tools that need a path.
// Call cleanup() to remove it; cleanup is never nil.
func stagePDF(dir string, data []byte) (string, func(), error) {
	noop := func() {}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", noop, err
		}
	}
	f, err := os.CreateTemp(dir, "mt-upload-*.pdf")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", noop, fmt.Errorf("write staged pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, err
	}
	return f.Name(), cleanup, nil
}

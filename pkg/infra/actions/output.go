package actions

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/cogrelease/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type outputWriter struct {
	path string
}

// NewOutputWriter creates a writer appending name=value records to the
// runner's output file (the GITHUB_OUTPUT protocol). An empty path yields a
// no-op writer so local runs do not fail.
func NewOutputWriter(path string) interfaces.OutputWriter {
	return &outputWriter{path: path}
}

// Set appends one output record. Multiline values use the heredoc form with
// a random delimiter.
func (w *outputWriter) Set(name, value string) error {
	if w.path == "" {
		return nil
	}

	record, err := formatRecord(name, value)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return goerr.Wrap(err, "failed to open output file", goerr.V("path", w.path))
	}
	defer f.Close()

	if _, err := f.WriteString(record); err != nil {
		return goerr.Wrap(err, "failed to write output", goerr.V("name", name))
	}

	return nil
}

func formatRecord(name, value string) (string, error) {
	if !strings.Contains(value, "\n") {
		return fmt.Sprintf("%s=%s\n", name, value), nil
	}

	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(value, delimiter) {
		return "", goerr.New("output value contains delimiter", goerr.V("name", name))
	}

	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter), nil
}

package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/zpasync/kinds"
)

const (
	stdinFileIndicator = "-"
	maxInputBytes      = 4 << 20
)

// ReadDocuments decodes every desired-state document named by flags, in
// file order.
func ReadDocuments(command *cobra.Command, flags InputFlags) ([]kinds.Document, error) {
	if len(flags.Filenames) == 0 {
		return nil, ValidationError("input is required: provide --filename <path|->", nil)
	}

	documents := make([]kinds.Document, 0)
	stdinUsed := false
	for _, filename := range flags.Filenames {
		filename = strings.TrimSpace(filename)
		if filename == stdinFileIndicator {
			if stdinUsed {
				return nil, ValidationError("stdin can be read only once", nil)
			}
			stdinUsed = true

			decoded, err := decodeLimited(command.InOrStdin(), "stdin")
			if err != nil {
				return nil, err
			}
			documents = append(documents, decoded...)
			continue
		}

		file, err := os.Open(filename)
		if err != nil {
			return nil, ValidationError(fmt.Sprintf("failed to open %s", filename), err)
		}
		decoded, err := decodeLimited(file, filename)
		_ = file.Close()
		if err != nil {
			return nil, err
		}
		documents = append(documents, decoded...)
	}

	if len(documents) == 0 {
		return nil, ValidationError("input is empty: no documents found", nil)
	}
	return documents, nil
}

func decodeLimited(reader io.Reader, source string) ([]kinds.Document, error) {
	documents, err := kinds.DecodeDocuments(io.LimitReader(reader, maxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return documents, nil
}

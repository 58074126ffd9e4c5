package kinds

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/zpasync/faults"
	"github.com/crmarques/zpasync/resource"
)

// Document is one desired-state entry of an apply file.
type Document struct {
	Kind  string    `yaml:"kind"`
	State string    `yaml:"state,omitempty"`
	ID    string    `yaml:"id,omitempty"`
	Spec  yaml.Node `yaml:"spec,omitempty"`
}

// DecodeDocuments reads a multi-document YAML stream. Empty documents are
// skipped.
func DecodeDocuments(reader io.Reader) ([]Document, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	documents := make([]Document, 0)
	for index := 0; ; index++ {
		var document Document
		err := decoder.Decode(&document)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("invalid document %d", index+1), err)
		}
		if strings.TrimSpace(document.Kind) == "" && document.Spec.Kind == 0 {
			continue
		}
		if strings.TrimSpace(document.Kind) == "" {
			return nil, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("document %d has no kind", index+1), nil).WithFields("kind")
		}
		documents = append(documents, document)
	}
	return documents, nil
}

// decodeSpec decodes the spec node into T, rejecting unknown keys.
func decodeSpec[T any](kind resource.Kind, node yaml.Node) (T, error) {
	var value T
	if node.Kind == 0 {
		return value, nil
	}

	encoded, err := yaml.Marshal(&node)
	if err != nil {
		return value, faults.NewTypedError(faults.InternalError, "failed to re-encode spec", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(encoded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&value); err != nil && !errors.Is(err, io.EOF) {
		return value, faults.NewTypedError(faults.ValidationError, fmt.Sprintf("invalid %s spec", kind), err).WithOperation("decode " + string(kind))
	}
	return value, nil
}

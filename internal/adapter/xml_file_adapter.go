package adapter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// MalformedXMLError locates the first well-formedness violation of a document.
type MalformedXMLError struct {
	Line   int
	Reason string
}

func (e *MalformedXMLError) Error() string {
	return fmt.Sprintf("malformed XML at line %d: %s", e.Line, e.Reason)
}

// XMLFileAdapter checks markup files for well-formedness.
type XMLFileAdapter interface {
	// Validate returns a *MalformedXMLError when src is not well-formed XML.
	Validate(src []byte) error
}

// LocalXMLFileAdapter streams documents through encoding/xml.
type LocalXMLFileAdapter struct{}

// NewLocalXMLFileAdapter constructs a LocalXMLFileAdapter.
func NewLocalXMLFileAdapter() *LocalXMLFileAdapter {
	return &LocalXMLFileAdapter{}
}

// Validate decodes every token of src without building a DOM.
func (a *LocalXMLFileAdapter) Validate(src []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(src))
	decoder.Strict = true
	// QWeb templates use HTML entities such as &nbsp;.
	decoder.Entity = xml.HTMLEntity

	for {
		_, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return &MalformedXMLError{Line: syntaxErr.Line, Reason: syntaxErr.Msg}
			}

			line, _ := decoder.InputPos()

			return &MalformedXMLError{Line: line, Reason: err.Error()}
		}
	}
}

package match

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Schema validates decoded match documents.
type Schema struct {
	ctx  *cue.Context
	file cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling match schema: %w", err)
	}
	file := v.LookupPath(cue.ParsePath("#File"))
	if err := file.Err(); err != nil {
		return nil, fmt.Errorf("looking up #File: %w", err)
	}
	return &Schema{ctx: ctx, file: file}, nil
}

// Validate checks a generic YAML document against #File. The returned
// messages are one per violation.
func (s *Schema) Validate(doc any) []string {
	if doc == nil {
		return nil
	}
	v := s.ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return []string{err.Error()}
	}
	err := s.file.Unify(v).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var msgs []string
	for _, e := range cueerrors.Errors(err) {
		msgs = append(msgs, e.Error())
	}
	if len(msgs) == 0 {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// CheckSchema unifies a decoded tree with the embedded CUE schema and
// returns one violation per failed constraint. A nil result means the tree
// is structurally valid.
func CheckSchema(tree map[string]any) []Violation {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a build defect.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	data := ctx.Encode(tree)
	if err := data.Err(); err != nil {
		return cueViolations(err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueViolations(err)
	}
	return nil
}

func cueViolations(err error) []Violation {
	var out []Violation
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Code:    ErrSchema,
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		key := v.Path + "\x00" + v.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, Violation{Code: ErrSchema, Message: err.Error()})
	}
	return out
}

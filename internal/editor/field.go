package editor

import (
	"fmt"
	"strings"
)

// Field is one of the free-text fields that support dictation and refinement.
type Field int

const (
	Title Field = iota
	Description
	Impact
)

// Fields lists every Field in form order.
var Fields = []Field{Title, Impact, Description}

func (f Field) String() string {
	switch f {
	case Title:
		return "title"
	case Description:
		return "description"
	case Impact:
		return "impact"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return Title, nil
	case "desc", "description":
		return Description, nil
	case "impact":
		return Impact, nil
	}
	return 0, fmt.Errorf("unknown field %q (want title, desc or impact)", s)
}

// instruction is the refinement brief sent along with the field's text.
func (f Field) instruction() string {
	switch f {
	case Title:
		return "Refine this project title to be more professional, punchy, and clear for a corporate achievement vault. Keep it short."
	case Impact:
		return "Refine this impact statement to be more quantitative, achievement-oriented, and impactful."
	default:
		return "Refine this project description to be professional, detailed yet concise, highlighting the strategic execution and value delivered."
	}
}

type fieldState struct {
	value     string
	previous  *string
	listening bool
	refining  bool
}

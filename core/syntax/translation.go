package syntax

import (
	"fmt"
	"strings"

	"github.com/nattlua/nattlua-go/core/invariant"
)

// placeholders names the operand slots of a template, in operand order.
const placeholders = "AB"

// Template is an operator translation: target-language text with operand
// slots. "bit.rshift(A, B)" has the fragments "bit.rshift(", ", " and ")".
// A slot is a standalone A or B, i.e. not part of a longer identifier.
type Template struct {
	Operator string
	Source   string
	parts    []templatePart
	slots    int
}

type templatePart struct {
	text string
	slot int // -1 for literal text
}

// ParseTemplate splits text into literal fragments and operand slots.
// Every one of the first slots placeholders must appear at least once.
func ParseTemplate(op, text string, slots int) (Template, error) {
	invariant.InRange(slots, 1, len(placeholders), "template slots")

	t := Template{Operator: op, Source: text, slots: slots}
	seen := make([]bool, slots)
	last := 0
	for i := 0; i < len(text); i++ {
		slot := strings.IndexByte(placeholders[:slots], text[i])
		if slot < 0 {
			continue
		}
		if i > 0 && IsDuringLetter(text[i-1]) {
			continue
		}
		if i+1 < len(text) && IsDuringLetter(text[i+1]) {
			continue
		}
		t.parts = append(t.parts, templatePart{text: text[last:i], slot: -1}, templatePart{slot: slot})
		seen[slot] = true
		last = i + 1
	}
	t.parts = append(t.parts, templatePart{text: text[last:], slot: -1})

	for i, ok := range seen {
		if !ok {
			return Template{}, fmt.Errorf("template %q for %q has no %c slot", text, op, placeholders[i])
		}
	}
	return t, nil
}

// Fragments returns the literal text around the slots, in order. There is
// always one more fragment than slot occurrences.
func (t Template) Fragments() []string {
	var out []string
	for _, p := range t.parts {
		if p.slot < 0 {
			out = append(out, p.text)
		}
	}
	return out
}

// SlotOrder returns the operand index of each slot occurrence.
func (t Template) SlotOrder() []int {
	var out []int
	for _, p := range t.parts {
		if p.slot >= 0 {
			out = append(out, p.slot)
		}
	}
	return out
}

// Render substitutes operands into the slots.
func (t Template) Render(operands ...string) string {
	invariant.Precondition(len(operands) == t.slots, "template %q takes %d operands, got %d", t.Source, t.slots, len(operands))

	var b strings.Builder
	for _, p := range t.parts {
		if p.slot < 0 {
			b.WriteString(p.text)
		} else {
			b.WriteString(operands[p.slot])
		}
	}
	return b.String()
}

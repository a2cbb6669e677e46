package layout

import (
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/sha3"
)

// Document is an ordered instruction stream with a title.
type Document struct {
	Title        string
	Instructions []Instruction
}

// Len returns the number of instructions.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Instructions)
}

// Headings returns the text of every heading at or above maxLevel, in order.
func (d *Document) Headings(maxLevel int) []Heading {
	if d == nil {
		return nil
	}
	var out []Heading
	for _, ins := range d.Instructions {
		if h, ok := ins.(Heading); ok && h.Level <= maxLevel {
			out = append(out, h)
		}
	}
	return out
}

// envelope is the serialized form of one instruction.
type envelope struct {
	Kind      Kind       `json:"kind"`
	Heading   *Heading   `json:"heading,omitempty"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
	Image     *Image     `json:"image,omitempty"`
}

type documentJSON struct {
	Title        string     `json:"title"`
	Instructions []envelope `json:"instructions"`
}

// MarshalJSON encodes the document with an explicit kind tag per
// instruction.
func (d Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{
		Title:        d.Title,
		Instructions: make([]envelope, 0, len(d.Instructions)),
	}
	for _, ins := range d.Instructions {
		env := envelope{Kind: ins.Kind()}
		switch v := ins.(type) {
		case Heading:
			env.Heading = &v
		case Paragraph:
			env.Paragraph = &v
		case Table:
			env.Table = &v
		case Image:
			env.Image = &v
		case PageBreak:
		default:
			return nil, fmt.Errorf("unknown instruction %T", ins)
		}
		out.Instructions = append(out.Instructions, env)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	var in documentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d.Title = in.Title
	d.Instructions = make([]Instruction, 0, len(in.Instructions))
	for i, env := range in.Instructions {
		var ins Instruction
		switch {
		case env.Kind == KindHeading && env.Heading != nil:
			ins = *env.Heading
		case env.Kind == KindParagraph && env.Paragraph != nil:
			ins = *env.Paragraph
		case env.Kind == KindTable && env.Table != nil:
			ins = *env.Table
		case env.Kind == KindImage && env.Image != nil:
			ins = *env.Image
		case env.Kind == KindPageBreak:
			ins = PageBreak{}
		default:
			return fmt.Errorf("instruction %d: invalid kind %q", i, env.Kind)
		}
		d.Instructions = append(d.Instructions, ins)
	}
	return nil
}

// Digest returns the hex SHA3-256 of the document's JSON encoding.
// Identical documents always have identical digests.
func (d Document) Digest() (string, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

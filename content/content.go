// Package content defines the review content exchanged between a scheduler
// and the person being reviewed: a prompt made of text and blank blocks, the
// response filling those blanks, and the template pairing a prompt with its
// expected answer.
package content

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrAnswerMismatch is returned when a template's answer count does not match
// its number of blanks.
var ErrAnswerMismatch = errors.New("content: answer count does not match blanks")

// Placeholder marks a blank in the text form accepted by Parse.
const Placeholder = "{}"

// Kind distinguishes literal text from a slot the reviewer must fill.
type Kind int

const (
	Text  Kind = iota + 1 // Literal text shown as-is.
	Blank                 // Slot answered by the reviewer.
)

var (
	kindNames  = [...]string{Text: "text", Blank: "blank"}
	kindByName = map[string]Kind{"text": Text, "blank": Blank}
)

var (
	_ fmt.Stringer             = Kind(0)
	_ encoding.TextMarshaler   = Kind(0)
	_ encoding.TextUnmarshaler = (*Kind)(nil)
)

func (k Kind) isValid() bool {
	return k >= Text && k <= Blank
}

// String returns "text" or "blank". For invalid values it returns "Kind(n)".
func (k Kind) String() string {
	if k.isValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.isValid() {
		return nil, fmt.Errorf("content: invalid block kind: %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	v, ok := kindByName[string(text)]
	if !ok {
		return fmt.Errorf("content: invalid block kind: %q", text)
	}
	*k = v
	return nil
}

// Block is one piece of a prompt.
type Block struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"` // empty for blanks
}

// Prompt is the content presented for one review.
type Prompt []Block

// Blanks returns the number of blank blocks in the prompt.
func (p Prompt) Blanks() int {
	n := 0
	for _, b := range p {
		if b.Kind == Blank {
			n++
		}
	}
	return n
}

// Render joins the prompt into a single line, drawing blanks as "___".
func (p Prompt) Render() string {
	var sb strings.Builder
	for _, b := range p {
		if b.Kind == Blank {
			sb.WriteString("___")
			continue
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

// String returns the prompt in the text form accepted by Parse.
func (p Prompt) String() string {
	var sb strings.Builder
	for _, b := range p {
		if b.Kind == Blank {
			sb.WriteString(Placeholder)
			continue
		}
		sb.WriteString(b.Text)
	}
	return sb.String()
}

// Parse splits text on Placeholder into text and blank blocks.
// A text without placeholders yields a single text block and is answered
// with one free-form response, so a trailing blank is appended.
func Parse(text string) Prompt {
	parts := strings.Split(text, Placeholder)
	p := make(Prompt, 0, 2*len(parts))
	for i, part := range parts {
		if part != "" {
			p = append(p, Block{Kind: Text, Text: part})
		}
		if i < len(parts)-1 {
			p = append(p, Block{Kind: Blank})
		}
	}
	if p.Blanks() == 0 {
		p = append(p, Block{Kind: Blank})
	}
	return p
}

// Response holds one answer per blank, in prompt order.
type Response []string

// Template is the algorithm-independent description of an item: what to ask
// and what counts as a correct answer. It is all that survives a migration.
type Template struct {
	Prompt Prompt   `json:"prompt"`
	Answer []string `json:"answer"`
}

// NewTemplate parses text and pairs it with the expected answers.
// Returns ErrAnswerMismatch if the answer count differs from the blank count.
func NewTemplate(text string, answer ...string) (Template, error) {
	t := Template{Prompt: Parse(text), Answer: answer}
	if err := t.Validate(); err != nil {
		return Template{}, err
	}
	return t, nil
}

// Validate checks that every blank has exactly one expected answer.
func (t Template) Validate() error {
	if got, want := len(t.Answer), t.Prompt.Blanks(); got != want {
		return fmt.Errorf("%w: %d answers for %d blanks", ErrAnswerMismatch, got, want)
	}
	return nil
}

// Check reports whether r answers every blank correctly. Comparison ignores
// case and surrounding whitespace.
func (t Template) Check(r Response) bool {
	if len(r) != len(t.Answer) {
		return false
	}
	for i, want := range t.Answer {
		if normalize(r[i]) != normalize(want) {
			return false
		}
	}
	return true
}

// Equal reports whether two templates ask the same thing with the same answer.
func (t Template) Equal(o Template) bool {
	if len(t.Prompt) != len(o.Prompt) || len(t.Answer) != len(o.Answer) {
		return false
	}
	for i := range t.Prompt {
		if t.Prompt[i] != o.Prompt[i] {
			return false
		}
	}
	for i := range t.Answer {
		if t.Answer[i] != o.Answer[i] {
			return false
		}
	}
	return true
}

// Key returns a stable textual identity for the template, suitable for
// hashing or set membership.
func (t Template) Key() string {
	b, err := json.Marshal(t)
	if err != nil {
		return t.Prompt.String() + "\x00" + strings.Join(t.Answer, "\x00")
	}
	return string(b)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

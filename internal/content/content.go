package content

import (
	"fmt"
	"strings"
)

// Category is a comprehension-skill classification.
type Category int

const (
	CategoryLiteral Category = iota
	CategoryInferential
	CategoryEvaluative
)

// Categories returns all categories in canonical reporting order.
func Categories() []Category {
	return []Category{CategoryLiteral, CategoryInferential, CategoryEvaluative}
}

// String returns the machine name used in files and on the wire.
func (c Category) String() string {
	switch c {
	case CategoryLiteral:
		return "literal"
	case CategoryInferential:
		return "inferential"
	case CategoryEvaluative:
		return "evaluative"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Label returns the learner-facing French label.
func (c Category) Label() string {
	switch c {
	case CategoryLiteral:
		return "Littérale"
	case CategoryInferential:
		return "Inférentielle"
	case CategoryEvaluative:
		return "Évaluative"
	default:
		return c.String()
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c >= CategoryLiteral && c <= CategoryEvaluative
}

// ParseCategory accepts the machine name, its upper-case form or the
// French label.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "literal", "littérale", "litterale":
		return CategoryLiteral, nil
	case "inferential", "inférentielle", "inferentielle":
		return CategoryInferential, nil
	case "evaluative", "évaluative":
		return CategoryEvaluative, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Question is one fixed comprehension question.
type Question struct {
	ID            int      `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Category      Category `json:"category" yaml:"category"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correct_answer"`
	HintSubtle    string   `json:"hintSubtle" yaml:"hint_subtle"`

	// HintSpecific points at the passage holding the answer. It is kept with
	// the question but the two-try flow only ever surfaces HintSubtle.
	HintSpecific string `json:"hintSpecific,omitempty" yaml:"hint_specific"`
}

// GlossaryEntry explains one word of the story.
type GlossaryEntry struct {
	Word       string `json:"word" yaml:"word"`
	Definition string `json:"definition" yaml:"definition"`
}

// Bank is the immutable exercise content: a story, its glossary and the
// ordered question list. Accessors return copies.
type Bank struct {
	version   string
	title     string
	story     string
	glossary  []GlossaryEntry
	questions []Question
	index     map[int]int
}

// NewBank builds a Bank after validating the questions.
func NewBank(title, story string, glossary []GlossaryEntry, questions []Question) (*Bank, error) {
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}
	b := &Bank{
		title:     strings.TrimSpace(title),
		story:     strings.TrimSpace(story),
		glossary:  append([]GlossaryEntry(nil), glossary...),
		questions: append([]Question(nil), questions...),
		index:     make(map[int]int, len(questions)),
	}
	for i, q := range b.questions {
		b.index[q.ID] = i
	}
	return b, nil
}

func (b *Bank) Version() string { return b.version }
func (b *Bank) Title() string   { return b.title }
func (b *Bank) Story() string   { return b.story }

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Glossary returns a copy of the glossary.
func (b *Bank) Glossary() []GlossaryEntry {
	return append([]GlossaryEntry(nil), b.glossary...)
}

// Questions returns a copy of the questions in exercise order.
func (b *Bank) Questions() []Question {
	return append([]Question(nil), b.questions...)
}

// At returns the question at position i.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i], true
}

// ByID looks a question up by its identifier.
func (b *Bank) ByID(id int) (Question, bool) {
	i, ok := b.index[id]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// CountByCategory returns how many questions each category holds.
func (b *Bank) CountByCategory() map[Category]int {
	out := make(map[Category]int, 3)
	for _, q := range b.questions {
		out[q.Category]++
	}
	return out
}

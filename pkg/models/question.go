package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Question represents a single exam question parsed from one source line
type Question struct {
	Number        int     `json:"QuestionNumber"` // Question number as printed (1, 2, 3, ...)
	CorrectAnswer string  `json:"CorrectAnswer"`  // A, B, C or D
	Text          string  `json:"QuestionText"`   // The question text
	Options       Options `json:"Options"`        // Lettered answer options in source order
	Reference     string  `json:"Reference"`      // Source citation
}

// Options maps option letters to their text and remembers the order
// in which letters first appeared.
type Options struct {
	letters []string
	text    map[string]string
}

// NewOptions creates an empty option set
func NewOptions() Options {
	return Options{text: make(map[string]string)}
}

// Set stores the text for letter. A letter seen before keeps its
// position and takes the new text.
func (o *Options) Set(letter, text string) {
	if o.text == nil {
		o.text = make(map[string]string)
	}
	if _, exists := o.text[letter]; !exists {
		o.letters = append(o.letters, letter)
	}
	o.text[letter] = text
}

// Get returns the text stored for letter
func (o Options) Get(letter string) (string, bool) {
	text, ok := o.text[letter]
	return text, ok
}

// Letters returns the option letters in order of appearance
func (o Options) Letters() []string {
	return append([]string(nil), o.letters...)
}

// Len returns the number of distinct letters
func (o Options) Len() int {
	return len(o.letters)
}

// Equal reports whether both option sets hold the same letters, in the
// same order, with the same text.
func (o Options) Equal(other Options) bool {
	if len(o.letters) != len(other.letters) {
		return false
	}
	for i, letter := range o.letters {
		if other.letters[i] != letter || other.text[letter] != o.text[letter] {
			return false
		}
	}
	return true
}

// MarshalJSON writes the options as a JSON object keyed by letter in
// order of appearance. HTML characters are left unescaped.
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, letter := range o.letters {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, letter); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, o.text[letter]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order of the document
func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = Options{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options: expected object, got %v", tok)
	}

	opts := NewOptions()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("options: expected string key, got %v", keyTok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("options: value for %q: %w", key, err)
		}
		opts.Set(key, text)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = opts
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Equal reports whether two questions carry the same field values
func (q Question) Equal(other Question) bool {
	return q.Number == other.Number &&
		q.CorrectAnswer == other.CorrectAnswer &&
		q.Text == other.Text &&
		q.Reference == other.Reference &&
		q.Options.Equal(other.Options)
}

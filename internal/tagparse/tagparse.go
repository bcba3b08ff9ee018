// Package tagparse reads the marker spec language used in `mark` struct
// tags and definition files:
//
//	spec  := item (';' item)*
//	item  := name [ '(' args ')' ] [ '@' int ]
//	args  := arg (',' arg)*
//	arg   := [ key '=' ] value
//
// Values may be single quoted to carry ',', ';', '(', ')' or '='; inside
// quotes a backslash escapes the next character. '@n' sets an explicit
// marker priority.
package tagparse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Item is one parsed marker invocation.
type Item struct {
	Name     string
	Args     []Arg
	Priority *int
	Offset   int // byte offset of the item in the spec string, for error messages
}

// Arg is one argument; Key is empty for positional arguments.
type Arg struct {
	Key    string
	Value  string
	Quoted bool
}

// SyntaxError reports malformed spec text.
type SyntaxError struct {
	Spec   string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("marker spec %q: offset %d: %s", e.Spec, e.Offset, e.Msg)
}

// Parse splits spec into items. An empty or blank spec yields no items.
func Parse(spec string) ([]Item, error) {
	var items []Item

	for _, chunk := range split(spec, ';') {
		text := strings.TrimSpace(chunk.text)
		if text == "" {
			continue
		}

		offset := chunk.offset + strings.Index(chunk.text, text)

		item, err := parseItem(spec, text, offset)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

func parseItem(spec, text string, offset int) (Item, error) {
	item := Item{Offset: offset}

	if at := lastUnquoted(text, '@'); at >= 0 {
		raw := strings.TrimSpace(text[at+1:])

		p, err := strconv.Atoi(raw)
		if err != nil {
			return Item{}, &SyntaxError{spec, offset + at, fmt.Sprintf("invalid priority %q", raw)}
		}

		item.Priority = &p
		text = strings.TrimSpace(text[:at])
	}

	open := strings.IndexByte(text, '(')
	if open < 0 {
		item.Name = text
	} else {
		if !strings.HasSuffix(text, ")") {
			return Item{}, &SyntaxError{spec, offset + open, "unterminated argument list"}
		}

		item.Name = strings.TrimSpace(text[:open])

		args, err := parseArgs(spec, text[open+1:len(text)-1], offset+open+1)
		if err != nil {
			return Item{}, err
		}

		item.Args = args
	}

	if !isIdent(item.Name) {
		return Item{}, &SyntaxError{spec, offset, fmt.Sprintf("invalid marker name %q", item.Name)}
	}

	return item, nil
}

func parseArgs(spec, text string, offset int) ([]Arg, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var args []Arg

	for _, chunk := range split(text, ',') {
		raw := strings.TrimSpace(chunk.text)
		if raw == "" {
			return nil, &SyntaxError{spec, offset + chunk.offset, "empty argument"}
		}

		var arg Arg

		if eq := firstUnquoted(raw, '='); eq >= 0 {
			arg.Key = strings.TrimSpace(raw[:eq])
			raw = strings.TrimSpace(raw[eq+1:])

			if !isIdent(arg.Key) {
				return nil, &SyntaxError{spec, offset + chunk.offset, fmt.Sprintf("invalid argument name %q", arg.Key)}
			}
		}

		value, quoted, err := unquote(raw)
		if err != nil {
			return nil, &SyntaxError{spec, offset + chunk.offset, err.Error()}
		}

		arg.Value = value
		arg.Quoted = quoted
		args = append(args, arg)
	}

	return args, nil
}

type chunk struct {
	text   string
	offset int
}

// split cuts s at every sep that is outside quotes and parentheses.
func split(s string, sep byte) []chunk {
	var (
		out    []chunk
		depth  int
		quoted bool
		start  int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quoted && c == '\\':
			i++
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == sep && depth == 0:
			out = append(out, chunk{s[start:i], start})
			start = i + 1
		}
	}

	return append(out, chunk{s[start:], start})
}

func firstUnquoted(s string, target byte) int {
	quoted := false

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quoted && c == '\\':
			i++
		case c == '\'':
			quoted = !quoted
		case !quoted && c == target:
			return i
		}
	}

	return -1
}

func lastUnquoted(s string, target byte) int {
	idx := -1
	quoted := false

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quoted && c == '\\':
			i++
		case c == '\'':
			quoted = !quoted
		case !quoted && c == target:
			idx = i
		}
	}

	return idx
}

func unquote(s string) (string, bool, error) {
	if !strings.HasPrefix(s, "'") {
		if strings.ContainsRune(s, '\'') {
			return "", false, fmt.Errorf("stray quote in %q", s)
		}

		return s, false, nil
	}

	if len(s) < 2 || !strings.HasSuffix(s, "'") || strings.HasSuffix(s, `\'`) && !strings.HasSuffix(s, `\\'`) {
		return "", false, fmt.Errorf("unterminated quote in %s", s)
	}

	var b strings.Builder

	body := s[1 : len(s)-1]
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}

		b.WriteByte(body[i])
	}

	return b.String(), true, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && (unicode.IsDigit(r) || r == '-')) {
			continue
		}

		return false
	}

	return true
}

// Quote renders s as a quoted argument value that Parse reads back as s.
func Quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('\'')

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '\'' {
			b.WriteByte('\\')
		}

		b.WriteByte(s[i])
	}

	b.WriteByte('\'')

	return b.String()
}

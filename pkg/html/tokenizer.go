package html

import (
	"fmt"
	gohtml "html"
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  map[string]string
	Text        string
	SelfClosing bool // True for tags ending with /> (XHTML self-closing syntax)
}

// InputSource is a unit of markup to tokenize, tagged with the identity of
// the document it belongs to. Injected sources produced by script execution
// carry the identity of the original document, not a per-script one.
type InputSource struct {
	Content  string
	SystemID string
}

// Tokenizer reads tokens from a stack of input sources. New sources may be
// pushed mid-stream with PushInputSource; they are tokenized before the
// remainder of the source that was active when they were pushed.
type Tokenizer struct {
	stack   []*inputState // top of stack is the active source
	pending []InputSource // pushed since the last token, not yet activated
}

// inputState is the read position within one input source.
type inputState struct {
	input    string
	pos      int
	systemID string
}

func NewTokenizer(html string) *Tokenizer {
	return NewTokenizerSource(InputSource{Content: html})
}

// NewTokenizerSource creates a tokenizer whose initial input carries an
// explicit document identity.
func NewTokenizerSource(src InputSource) *Tokenizer {
	return &Tokenizer{
		stack: []*inputState{{input: src.Content, systemID: src.SystemID}},
	}
}

// PushInputSource queues src to be tokenized next, ahead of whatever remains
// of the current input. Sources pushed between two token reads are consumed
// in the order they were pushed.
func (t *Tokenizer) PushInputSource(src InputSource) {
	t.pending = append(t.pending, src)
}

// SystemID returns the identity of the source the tokenizer is currently
// reading from, or "" when all input is exhausted.
func (t *Tokenizer) SystemID() string {
	if cur := t.current(); cur != nil {
		return cur.systemID
	}
	return ""
}

func (t *Tokenizer) current() *inputState {
	if len(t.stack) == 0 {
		return nil
	}
	return t.stack[len(t.stack)-1]
}

// activatePending moves pushed sources onto the stack so that the
// first-pushed source is read first.
func (t *Tokenizer) activatePending() {
	for i := len(t.pending) - 1; i >= 0; i-- {
		src := t.pending[i]
		t.stack = append(t.stack, &inputState{input: src.Content, systemID: src.SystemID})
	}
	t.pending = t.pending[:0]
}

func (t *Tokenizer) NextToken() (Token, error) {
	for {
		t.activatePending()
		cur := t.current()
		if cur == nil {
			return Token{Type: TokenEOF}, nil
		}
		token, err := cur.nextToken()
		if err != nil {
			return Token{}, err
		}
		if token.Type == TokenEOF {
			// Source exhausted; resume the one beneath it.
			t.stack = t.stack[:len(t.stack)-1]
			continue
		}
		return token, nil
	}
}

// ReadRawUntil reads raw content from the active source until the closing
// end tag is found (e.g., </script>). Used for raw text elements like
// <script> and <style> where '<' does not start a new tag. The read never
// crosses an input source boundary.
func (t *Tokenizer) ReadRawUntil(endTag string) string {
	cur := t.current()
	if cur == nil {
		return ""
	}
	return cur.readRawUntil(endTag)
}

func (s *inputState) nextToken() (Token, error) {
	if s.pos >= len(s.input) {
		return Token{Type: TokenEOF}, nil
	}
	// Only skip whitespace before tags, not before text content.
	// Whitespace before text is significant for inline flow
	// (e.g., the space in "</em> word" must be preserved).
	if s.input[s.pos] == '<' {
		return s.readTag()
	}
	return s.readText()
}

func (s *inputState) readTag() (Token, error) {
	s.pos++

	// Handle <!-- comments -->
	if s.pos+2 < len(s.input) && s.input[s.pos] == '!' && s.input[s.pos+1] == '-' && s.input[s.pos+2] == '-' {
		s.pos += 3
		for s.pos+2 < len(s.input) {
			if s.input[s.pos] == '-' && s.input[s.pos+1] == '-' && s.input[s.pos+2] == '>' {
				s.pos += 3
				return s.nextToken()
			}
			s.pos++
		}
		s.pos = len(s.input)
		return s.nextToken()
	}

	// Handle <?xml ...?> and other processing instructions
	if s.pos < len(s.input) && s.input[s.pos] == '?' {
		for s.pos+1 < len(s.input) {
			if s.input[s.pos] == '?' && s.input[s.pos+1] == '>' {
				s.pos += 2
				return s.nextToken()
			}
			s.pos++
		}
		s.pos = len(s.input)
		return s.nextToken()
	}

	// Handle <!DOCTYPE ...>
	if s.pos < len(s.input) && s.input[s.pos] == '!' {
		if err := s.skipTo('>'); err != nil {
			return Token{}, err
		}
		s.pos++
		return s.nextToken()
	}

	isEndTag := false
	if s.pos < len(s.input) && s.input[s.pos] == '/' {
		isEndTag = true
		s.pos++
	}
	tagName := s.readTagName()
	if tagName == "" {
		return Token{}, fmt.Errorf("expected tag name at position %d", s.pos)
	}
	if isEndTag {
		if err := s.skipTo('>'); err != nil {
			return Token{}, err
		}
		s.pos++
		return Token{Type: TokenEndTag, TagName: tagName}, nil
	}
	attributes := make(map[string]string)
	for {
		s.skipWhitespace()
		if s.pos >= len(s.input) {
			return Token{}, fmt.Errorf("unexpected EOF in tag")
		}
		if s.input[s.pos] == '>' {
			s.pos++
			break
		}
		if s.input[s.pos] == '/' {
			s.pos++
			s.skipWhitespace()
			if s.pos < len(s.input) && s.input[s.pos] == '>' {
				s.pos++
				return Token{Type: TokenStartTag, TagName: tagName, Attributes: attributes, SelfClosing: true}, nil
			}
		}
		name, value, err := s.readAttribute()
		if err != nil {
			return Token{}, err
		}
		attributes[name] = value
	}
	return Token{Type: TokenStartTag, TagName: tagName, Attributes: attributes}, nil
}

func (s *inputState) readTagName() string {
	start := s.pos
	for s.pos < len(s.input) && isTagNameChar(s.input[s.pos]) {
		s.pos++
	}
	return strings.ToLower(s.input[start:s.pos])
}

func (s *inputState) readAttribute() (string, string, error) {
	start := s.pos
	for s.pos < len(s.input) && isAttributeNameChar(s.input[s.pos]) {
		s.pos++
	}
	name := strings.ToLower(s.input[start:s.pos])
	if name == "" {
		return "", "", fmt.Errorf("expected attribute name at position %d", s.pos)
	}
	s.skipWhitespace()
	if s.pos >= len(s.input) || s.input[s.pos] != '=' {
		return name, "", nil
	}
	s.pos++
	s.skipWhitespace()
	value, err := s.readAttributeValue()
	if err != nil {
		return "", "", err
	}
	return name, value, nil
}

func (s *inputState) readAttributeValue() (string, error) {
	if s.pos >= len(s.input) {
		return "", fmt.Errorf("expected attribute value at position %d", s.pos)
	}
	quote := s.input[s.pos]
	if quote == '"' || quote == '\'' {
		s.pos++
		start := s.pos
		for s.pos < len(s.input) && s.input[s.pos] != quote {
			s.pos++
		}
		if s.pos >= len(s.input) {
			return "", fmt.Errorf("unterminated attribute value")
		}
		value := s.input[start:s.pos]
		s.pos++
		return value, nil
	}
	start := s.pos
	for s.pos < len(s.input) && !unicode.IsSpace(rune(s.input[s.pos])) && s.input[s.pos] != '>' {
		s.pos++
	}
	return s.input[start:s.pos], nil
}

func (s *inputState) readText() (Token, error) {
	start := s.pos
	for s.pos < len(s.input) && s.input[s.pos] != '<' {
		s.pos++
	}
	raw := s.input[start:s.pos]
	// If the raw text is entirely whitespace (e.g., indentation between tags),
	// skip it. But if it contains any non-whitespace characters, normalize it
	// while preserving leading/trailing spaces for inline flow.
	if strings.TrimSpace(raw) == "" {
		if s.pos < len(s.input) {
			return s.nextToken()
		}
		return Token{Type: TokenEOF}, nil
	}
	text := normalizeWhitespace(raw)
	text = gohtml.UnescapeString(text)
	return Token{Type: TokenText, Text: text}, nil
}

// normalizeWhitespace collapses runs of whitespace to a single space,
// preserving a single space at boundaries. This is important for inline
// flow: "text <em>word</em> more" must keep the spaces between the text
// nodes and the inline element.
func normalizeWhitespace(s string) string {
	hasLeading := len(s) > 0 && unicode.IsSpace(rune(s[0]))
	hasTrailing := len(s) > 0 && unicode.IsSpace(rune(s[len(s)-1]))

	fields := strings.Fields(s)
	if len(fields) == 0 {
		// All-whitespace token: keep as single space so inline flow
		// preserves word boundaries (e.g., between two inline elements).
		if hasLeading || hasTrailing {
			return " "
		}
		return ""
	}

	result := strings.Join(fields, " ")
	if hasLeading {
		result = " " + result
	}
	if hasTrailing {
		result = result + " "
	}
	return result
}

func (s *inputState) skipWhitespace() {
	for s.pos < len(s.input) && unicode.IsSpace(rune(s.input[s.pos])) {
		s.pos++
	}
}

func (s *inputState) skipTo(target byte) error {
	for s.pos < len(s.input) && s.input[s.pos] != target {
		s.pos++
	}
	if s.pos >= len(s.input) {
		return fmt.Errorf("expected '%c' but reached EOF", target)
	}
	return nil
}

func (s *inputState) readRawUntil(endTag string) string {
	needle := "</" + endTag + ">"
	needleLower := strings.ToLower(needle)
	start := s.pos
	for s.pos+len(needle) <= len(s.input) {
		// Case-insensitive match for the end tag
		if strings.ToLower(s.input[s.pos:s.pos+len(needle)]) == needleLower {
			content := s.input[start:s.pos]
			s.pos += len(needle) // skip past </endTag>
			return content
		}
		s.pos++
	}
	// No closing tag found — consume everything remaining
	content := s.input[start:]
	s.pos = len(s.input)
	return content
}

func isTagNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isAttributeNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.'
}

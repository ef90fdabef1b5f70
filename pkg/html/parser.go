package html

import "fmt"

// Parser drives the tokenizer and delivers events through the filter
// pipeline to a DocumentBuilder. With a ScriptHost enabled, script elements
// execute as they close and anything they write is tokenized in place,
// before the rest of the original input.
type Parser struct {
	tokenizer *Tokenizer
	builder   *DocumentBuilder
	host      ScriptHost
	loc       Locator
}

func NewParser(markup string) *Parser {
	return NewParserSource(InputSource{Content: markup})
}

// NewParserSource creates a parser for markup with an explicit document
// identity (its URL or path). The identity tags every input source that
// script execution injects during the parse.
func NewParserSource(src InputSource) *Parser {
	return &Parser{
		tokenizer: NewTokenizerSource(src),
		builder:   NewDocumentBuilder(),
		loc:       Locator{SystemID: src.SystemID},
	}
}

// EnableScripting makes the parser run script elements through host.
// Without it, script elements are kept in the tree but never executed.
func (p *Parser) EnableScripting(host ScriptHost) {
	p.host = host
}

func (p *Parser) Parse() (*Document, error) {
	chain := Handler(p.builder)
	if p.host != nil {
		chain = NewScriptFilter(p.host, p.tokenizer, chain)
	}

	if err := chain.StartDocument(p.loc); err != nil {
		return nil, err
	}
	for {
		token, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		if token.Type == TokenEOF {
			break
		}

		switch token.Type {
		case TokenStartTag:
			if err := chain.StartElement(token.TagName, token.Attributes); err != nil {
				return nil, err
			}
			if token.SelfClosing {
				if err := chain.EndElement(token.TagName); err != nil {
					return nil, err
				}
				continue
			}
			// Raw text elements: '<' inside them does not open a tag, so
			// their content is read here and the end event synthesized.
			// Anything a script injects is picked up by the next NextToken.
			if isRawTextElement(token.TagName) {
				raw := p.tokenizer.ReadRawUntil(token.TagName)
				if raw != "" {
					if err := chain.Text(raw); err != nil {
						return nil, err
					}
				}
				if err := chain.EndElement(token.TagName); err != nil {
					return nil, err
				}
			}

		case TokenText:
			if err := chain.Text(token.Text); err != nil {
				return nil, err
			}

		case TokenEndTag:
			if err := chain.EndElement(token.TagName); err != nil {
				return nil, err
			}
		}
	}
	if err := chain.EndDocument(); err != nil {
		return nil, err
	}

	return p.builder.Document(), nil
}

// isRawTextElement reports tags whose content is character data only.
func isRawTextElement(tagName string) bool {
	return tagName == "script" || tagName == "style"
}

// Parse parses markup without executing scripts.
func Parse(markup string) (*Document, error) {
	return NewParser(markup).Parse()
}

package html

import (
	"net/url"
	"strings"
)

// DocumentBuilder is the terminal pipeline stage: it turns the event stream
// into a Document tree. Injected sources arrive as ordinary events, so
// script-generated markup lands in the tree at the point of injection.
type DocumentBuilder struct {
	doc   *Document
	stack []*Node

	inStyle      bool
	styleContent string
}

func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{}
}

// Document returns the tree built so far. Valid after EndDocument; during a
// parse it reflects the events delivered up to that point.
func (b *DocumentBuilder) Document() *Document {
	return b.doc
}

func (b *DocumentBuilder) StartDocument(loc Locator) error {
	b.doc = NewDocument()
	b.stack = []*Node{b.doc.Root}
	b.inStyle = false
	b.styleContent = ""
	return nil
}

func (b *DocumentBuilder) StartElement(name string, attrs map[string]string) error {
	// Style content goes to doc.Stylesheets, not into the tree.
	if name == "style" {
		b.inStyle = true
		b.styleContent = ""
		return nil
	}

	// Auto-close <p> when a block-level element is encountered inside it
	if isBlockElement(name) {
		b.autoCloseP()
	}

	node := &Node{
		Type:       ElementNode,
		TagName:    name,
		Attributes: attrs,
		Children:   make([]*Node, 0),
	}
	b.currentParent().AddChild(node)

	// Handle <link rel="stylesheet"> with data URI href
	if name == "link" {
		if rel, ok := attrs["rel"]; ok && strings.Contains(rel, "stylesheet") {
			if href, ok := attrs["href"]; ok {
				if css := loadLinkStylesheet(href); css != "" {
					b.doc.Stylesheets = append(b.doc.Stylesheets, css)
				}
			}
		}
	}

	// Void elements never receive an end event; everything else becomes
	// the new parent until its end tag closes it.
	if !isVoidElement(name) {
		b.stack = append(b.stack, node)
	}
	return nil
}

func (b *DocumentBuilder) Text(text string) error {
	if b.inStyle {
		b.styleContent += text
		return nil
	}
	if text != "" {
		b.currentParent().AppendText(text)
	}
	return nil
}

func (b *DocumentBuilder) EndElement(name string) error {
	if name == "style" && b.inStyle {
		b.doc.Stylesheets = append(b.doc.Stylesheets, b.styleContent)
		b.inStyle = false
		b.styleContent = ""
		return nil
	}

	closed := b.closeTag(name)
	if closed != nil && closed.TagName == "script" {
		b.doc.Scripts = append(b.doc.Scripts, closed.TextContent())
	}
	return nil
}

func (b *DocumentBuilder) EndDocument() error {
	return nil
}

// currentParent returns the current parent node (top of stack)
func (b *DocumentBuilder) currentParent() *Node {
	if len(b.stack) == 0 {
		return b.doc.Root
	}
	return b.stack[len(b.stack)-1]
}

// closeTag pops the stack until the matching tag is found, returning the
// closed node. Unmatched end tags are ignored and return nil.
func (b *DocumentBuilder) closeTag(name string) *Node {
	for i := len(b.stack) - 1; i >= 1; i-- {
		if b.stack[i].TagName == name {
			node := b.stack[i]
			b.stack = b.stack[:i]
			return node
		}
	}
	return nil
}

// autoCloseP closes an open <p> element if one is on the stack
func (b *DocumentBuilder) autoCloseP() {
	for i := len(b.stack) - 1; i >= 1; i-- {
		if b.stack[i].TagName == "p" {
			b.stack = b.stack[:i]
			return
		}
		// Don't close past block-level containers
		if isBlockElement(b.stack[i].TagName) {
			return
		}
	}
}

// isBlockElement returns true for elements that auto-close <p>
func isBlockElement(tagName string) bool {
	switch tagName {
	case "address", "article", "aside", "blockquote", "details", "dialog",
		"dd", "div", "dl", "dt", "fieldset", "figcaption", "figure",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "li", "main", "nav", "ol",
		"p", "pre", "section", "table", "ul":
		return true
	}
	return false
}

// loadLinkStylesheet loads CSS from a data URI href
func loadLinkStylesheet(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "data:text/css,") {
		encoded := href[len("data:text/css,"):]
		decoded, err := url.PathUnescape(encoded)
		if err != nil {
			return encoded
		}
		return decoded
	}
	return ""
}

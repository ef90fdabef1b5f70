package html

import (
	"strings"
	"testing"
)

func TestParser_SimpleDocument(t *testing.T) {
	doc, err := Parse("<html><body><p>Hello</p></body></html>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := doc.Root.FindFirst("p")
	if p == nil {
		t.Fatal("expected a <p> element")
	}
	if p.TextContent() != "Hello" {
		t.Errorf("expected text 'Hello', got %q", p.TextContent())
	}
}

func TestParser_NestedElements(t *testing.T) {
	doc, err := Parse("<div><span>a</span><span>b</span></div>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	div := doc.Root.FindFirst("div")
	if div == nil {
		t.Fatal("expected a <div>")
	}
	spans := div.FindAll("span")
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].TextContent() != "a" || spans[1].TextContent() != "b" {
		t.Error("span contents out of order")
	}
}

func TestParser_AutoCloseParagraph(t *testing.T) {
	doc, err := Parse("<p>one<p>two")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paragraphs := doc.Root.FindAll("p")
	if len(paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
	}
	if paragraphs[1].Parent == paragraphs[0] {
		t.Error("second <p> nested inside first; should have auto-closed")
	}
}

func TestParser_VoidElements(t *testing.T) {
	doc, err := Parse("<div>a<br>b</div>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	div := doc.Root.FindFirst("div")
	if div == nil || len(div.Children) != 3 {
		t.Fatalf("expected text, br, text under div")
	}
	if div.Children[1].TagName != "br" {
		t.Errorf("expected <br> child, got %v", div.Children[1].TagName)
	}
}

func TestParser_StyleCollected(t *testing.T) {
	doc, err := Parse("<style>p { color: red; }</style><p>x</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Stylesheets) != 1 || !strings.Contains(doc.Stylesheets[0], "color: red") {
		t.Errorf("expected stylesheet collected, got %v", doc.Stylesheets)
	}
	if doc.Root.FindFirst("style") != nil {
		t.Error("style element should not appear in the tree")
	}
}

func TestParser_ScriptKeptWithoutHost(t *testing.T) {
	doc, err := Parse("<div><script>document.write('<b>x</b>')</script></div>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Scripts) != 1 || !strings.Contains(doc.Scripts[0], "document.write") {
		t.Errorf("expected script source recorded, got %v", doc.Scripts)
	}
	// Without a host nothing executes, so no <b> appears.
	if doc.Root.FindFirst("b") != nil {
		t.Error("script must not execute without a host")
	}
}

func TestParser_ScriptRawTextNotParsedAsMarkup(t *testing.T) {
	doc, err := Parse("<script>if (a<b) { write('<div>'); }</script>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Root.FindFirst("div") != nil {
		t.Error("markup-looking script text must stay character data")
	}
	if len(doc.Scripts) != 1 || !strings.Contains(doc.Scripts[0], "<div>") {
		t.Errorf("script source mangled: %v", doc.Scripts)
	}
}

func TestParser_ScriptOutputParsedInPlace(t *testing.T) {
	host := &fakeHost{
		onInline: func(out *WriteBuffer, source, label string) error {
			out.Write("<b>new</b>")
			return nil
		},
	}
	parser := NewParser("<div><script>w()</script><span>after</span></div>")
	parser.EnableScripting(host)

	doc, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	div := doc.Root.FindFirst("div")
	if div == nil {
		t.Fatal("expected a <div>")
	}
	var tags []string
	for _, child := range div.Children {
		if child.Type == ElementNode {
			tags = append(tags, child.TagName)
		}
	}
	// The written <b> must land between the script and the original <span>.
	want := []string{"script", "b", "span"}
	if len(tags) != 3 || tags[0] != want[0] || tags[1] != want[1] || tags[2] != want[2] {
		t.Errorf("expected children %v, got %v", want, tags)
	}
}

func TestParser_WrittenScriptExecutesWhenReached(t *testing.T) {
	var order []string
	host := &fakeHost{
		onInline: func(out *WriteBuffer, source, label string) error {
			order = append(order, source)
			switch source {
			case "one()":
				out.Write("<script>two()</script>")
			case "two()":
				out.Write("<i>done</i>")
			}
			return nil
		},
	}
	parser := NewParser("<body><script>one()</script><p>tail</p></body>")
	parser.EnableScripting(host)

	doc, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "one()" || order[1] != "two()" {
		t.Fatalf("expected chained execution, got %v", order)
	}
	if doc.Root.FindFirst("i") == nil {
		t.Error("second-generation script output missing from tree")
	}
	// The original tail still parses after all injected content.
	if p := doc.Root.FindFirst("p"); p == nil || p.TextContent() != "tail" {
		t.Error("original input lost after injection")
	}
}

func TestParser_SelfClosingScriptRunsExternal(t *testing.T) {
	host := &fakeHost{
		onExternal: func(out *WriteBuffer, uri, charset string) error {
			out.Write("<em>ext</em>")
			return nil
		},
	}
	parser := NewParser(`<div><script src="a.js"/><span>s</span></div>`)
	parser.EnableScripting(host)

	doc, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(host.calls) == 0 || host.calls[0] != "external:a.js" {
		t.Fatalf("expected external execution, calls: %v", host.calls)
	}
	if doc.Root.FindFirst("em") == nil {
		t.Error("external script output missing from tree")
	}
}

func TestParser_ExternalOutputPrecedesInlineOutput(t *testing.T) {
	host := &fakeHost{
		onExternal: func(out *WriteBuffer, uri, charset string) error {
			out.Write("A")
			return nil
		},
		onInline: func(out *WriteBuffer, source, label string) error {
			out.Write("B")
			return nil
		},
	}
	parser := NewParser(`<div><script src="a.js">inline()</script></div>`)
	parser.EnableScripting(host)

	doc, err := parser.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	div := doc.Root.FindFirst("div")
	if div == nil {
		t.Fatal("expected a <div>")
	}
	if got := div.TextContent(); !strings.Contains(got, "AB") {
		t.Errorf("expected external output before inline output, got %q", got)
	}
}

func TestParser_FailedScriptLeavesDocumentIntact(t *testing.T) {
	host := &fakeHost{
		onInline: func(out *WriteBuffer, source, label string) error {
			out.Write("<b>gone</b>")
			return errTest
		},
	}
	parser := NewParser("<div><script>boom()</script><span>kept</span></div>")
	parser.EnableScripting(host)

	doc, err := parser.Parse()
	if err != nil {
		t.Fatalf("script failure must not abort the parse: %v", err)
	}
	if doc.Root.FindFirst("b") != nil {
		t.Error("failed execution must not contribute output")
	}
	if doc.Root.FindFirst("span") == nil {
		t.Error("original markup lost after script failure")
	}
}

var errTest = errString("test failure")

type errString string

func (e errString) Error() string { return string(e) }

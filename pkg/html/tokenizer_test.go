package html

import "testing"

func TestTokenizer_SimpleStartTag(t *testing.T) {
	tokenizer := NewTokenizer("<div>")
	token, err := tokenizer.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Type != TokenStartTag {
		t.Errorf("expected TokenStartTag, got %v", token.Type)
	}
	if token.TagName != "div" {
		t.Errorf("expected tag name 'div', got '%s'", token.TagName)
	}
}

func TestTokenizer_TagWithAttributes(t *testing.T) {
	tokenizer := NewTokenizer(`<div style="color: red" id="main">`)
	token, err := tokenizer.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Attributes["style"] != "color: red" {
		t.Errorf("expected style='color: red', got '%s'", token.Attributes["style"])
	}
	if token.Attributes["id"] != "main" {
		t.Errorf("expected id='main', got '%s'", token.Attributes["id"])
	}
}

func TestTokenizer_CompleteSequence(t *testing.T) {
	tokenizer := NewTokenizer("<div>Hello</div>")
	token1, _ := tokenizer.NextToken()
	if token1.Type != TokenStartTag || token1.TagName != "div" {
		t.Error("expected start tag 'div'")
	}
	token2, _ := tokenizer.NextToken()
	if token2.Type != TokenText || token2.Text != "Hello" {
		t.Error("expected text 'Hello'")
	}
	token3, _ := tokenizer.NextToken()
	if token3.Type != TokenEndTag {
		t.Error("expected end tag")
	}
	token4, _ := tokenizer.NextToken()
	if token4.Type != TokenEOF {
		t.Error("expected EOF")
	}
}

func TestTokenizer_PushedSourceReadBeforeRemainingInput(t *testing.T) {
	tokenizer := NewTokenizer("<div></div>")
	token, _ := tokenizer.NextToken()
	if token.Type != TokenStartTag || token.TagName != "div" {
		t.Fatal("expected start tag 'div'")
	}

	tokenizer.PushInputSource(InputSource{Content: "<b>hi</b>", SystemID: "doc"})

	expect := []struct {
		typ TokenType
		tag string
	}{
		{TokenStartTag, "b"},
		{TokenText, ""},
		{TokenEndTag, "b"},
		{TokenEndTag, "div"},
		{TokenEOF, ""},
	}
	for i, want := range expect {
		got, err := tokenizer.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if got.Type != want.typ {
			t.Fatalf("token %d: expected type %v, got %v", i, want.typ, got.Type)
		}
		if want.tag != "" && got.TagName != want.tag {
			t.Errorf("token %d: expected tag '%s', got '%s'", i, want.tag, got.TagName)
		}
	}
}

func TestTokenizer_PushedSourcesConsumedInPushOrder(t *testing.T) {
	tokenizer := NewTokenizer("<div>rest</div>")
	if _, err := tokenizer.NextToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tokenizer.PushInputSource(InputSource{Content: "first"})
	tokenizer.PushInputSource(InputSource{Content: "second"})

	token, _ := tokenizer.NextToken()
	if token.Type != TokenText || token.Text != "first" {
		t.Errorf("expected text 'first', got %q", token.Text)
	}
	token, _ = tokenizer.NextToken()
	if token.Type != TokenText || token.Text != "second" {
		t.Errorf("expected text 'second', got %q", token.Text)
	}
	token, _ = tokenizer.NextToken()
	if token.Type != TokenText || token.Text != "rest" {
		t.Errorf("expected original text 'rest' after pushed sources, got %q", token.Text)
	}
}

func TestTokenizer_PushDuringInjectedSourceNests(t *testing.T) {
	tokenizer := NewTokenizer("last")
	tokenizer.PushInputSource(InputSource{Content: "outer-a outer-b"})

	token, _ := tokenizer.NextToken()
	if token.Text != "outer-a outer-b" {
		t.Fatalf("expected injected text first, got %q", token.Text)
	}

	// A push while an injected source is active lands before the original
	// input as well.
	tokenizer.PushInputSource(InputSource{Content: "inner"})
	token, _ = tokenizer.NextToken()
	if token.Text != "inner" {
		t.Errorf("expected nested injected text, got %q", token.Text)
	}
	token, _ = tokenizer.NextToken()
	if token.Text != "last" {
		t.Errorf("expected original input last, got %q", token.Text)
	}
}

func TestTokenizer_SystemIDTracksActiveSource(t *testing.T) {
	tokenizer := NewTokenizerSource(InputSource{Content: "<div>x</div>", SystemID: "http://example.com/page.html"})
	if got := tokenizer.SystemID(); got != "http://example.com/page.html" {
		t.Errorf("expected root system ID, got %q", got)
	}
}

func TestTokenizer_ReadRawUntilStaysInSource(t *testing.T) {
	tokenizer := NewTokenizer("<script>if (a < b) { x(); }</script><p>after</p>")
	token, _ := tokenizer.NextToken()
	if token.TagName != "script" {
		t.Fatal("expected script start tag")
	}
	raw := tokenizer.ReadRawUntil("script")
	if raw != "if (a < b) { x(); }" {
		t.Errorf("expected verbatim raw content, got %q", raw)
	}
	token, _ = tokenizer.NextToken()
	if token.Type != TokenStartTag || token.TagName != "p" {
		t.Errorf("expected <p> after raw read, got %v %q", token.Type, token.TagName)
	}
}

func TestTokenizer_SelfClosingTag(t *testing.T) {
	tokenizer := NewTokenizer(`<script src="a.js"/>`)
	token, err := tokenizer.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !token.SelfClosing {
		t.Error("expected SelfClosing token")
	}
	if token.Attributes["src"] != "a.js" {
		t.Errorf("expected src='a.js', got %q", token.Attributes["src"])
	}
}

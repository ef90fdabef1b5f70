package html

import (
	"errors"
	"fmt"
	"strings"
)

// ScriptHost runs script code on behalf of the filter. Implementations are
// blocking: RunExternal and RunInline do not return until the script has
// finished and all of its writes have landed in out.
type ScriptHost interface {
	// IsScript classifies a script element from its type and language
	// attributes. Either or both may be empty.
	IsScript(typeAttr, languageAttr string) bool

	// RunExternal loads the script at uri (decoded per charset, which may be
	// empty) and executes it. Everything the script writes goes to out.
	RunExternal(out *WriteBuffer, uri, charset string) error

	// RunInline executes inline script source. label names the script in
	// diagnostics. Everything the script writes goes to out.
	RunInline(out *WriteBuffer, source, label string) error
}

// ErrMarkupInScript is reported when an element other than the script itself
// closes while script capture is active. Script elements contain only
// character data; hitting this means the filter and the tokenizer have lost
// sync, so the parse aborts rather than guessing.
var ErrMarkupInScript = errors.New("markup element inside script")

// ScriptFilter executes script elements as they close and feeds whatever
// they write back to the tokenizer as new input, so script-generated markup
// is parsed in place, right after the element that produced it.
//
// The filter observes passively: every event is forwarded downstream
// unchanged, including the script element itself and its text.
type ScriptFilter struct {
	BaseFilter
	host     ScriptHost
	injector InputInjector

	// Capture state for the script element currently open, if any.
	// capture == nil means no script element is being collected.
	capture  *strings.Builder
	src      string
	charset  string
	systemID string
	count    int
}

// NewScriptFilter creates a filter stage that hands script elements to host
// and pushes their written output to injector. Events flow on to next.
func NewScriptFilter(host ScriptHost, injector InputInjector, next Handler) *ScriptFilter {
	return &ScriptFilter{
		BaseFilter: BaseFilter{Next: next},
		host:       host,
		injector:   injector,
	}
}

func (f *ScriptFilter) StartDocument(loc Locator) error {
	f.capture = nil
	f.src = ""
	f.charset = ""
	f.systemID = loc.SystemID
	f.count = 0
	return f.BaseFilter.StartDocument(loc)
}

func (f *ScriptFilter) StartElement(name string, attrs map[string]string) error {
	if strings.EqualFold(name, "script") && f.host.IsScript(attrs["type"], attrs["language"]) {
		if src := attrs["src"]; src != "" {
			f.src = src
			f.charset = attrs["charset"]
		}
		f.capture = &strings.Builder{}
	}
	return f.BaseFilter.StartElement(name, attrs)
}

func (f *ScriptFilter) Text(text string) error {
	if f.capture != nil {
		f.capture.WriteString(text)
	}
	return f.BaseFilter.Text(text)
}

func (f *ScriptFilter) EndElement(name string) error {
	if err := f.BaseFilter.EndElement(name); err != nil {
		return err
	}
	if f.capture == nil {
		return nil
	}
	if !strings.EqualFold(name, "script") {
		return fmt.Errorf("closing <%s> while capturing script text: %w", name, ErrMarkupInScript)
	}

	// Capture state is cleared no matter how execution goes; the next
	// script element starts from scratch.
	defer func() {
		f.capture = nil
		f.src = ""
		f.charset = ""
	}()

	// External source first, inline body second, each under its own write
	// buffer. A failed execution contributes nothing, and the inline body
	// runs even when the external load failed.
	if f.src != "" {
		out := &WriteBuffer{}
		if err := f.host.RunExternal(out, f.src, f.charset); err == nil {
			f.inject(out)
		}
	}

	f.count++
	out := &WriteBuffer{}
	label := fmt.Sprintf("embedded script %d", f.count)
	if err := f.host.RunInline(out, f.capture.String(), label); err == nil {
		f.inject(out)
	}
	return nil
}

// inject pushes the buffer's content to the tokenizer as a new input
// source tagged with the document identity recorded at document start.
// Nothing is pushed when the script wrote nothing, or wrote only empty
// strings; both leave the token stream untouched.
func (f *ScriptFilter) inject(out *WriteBuffer) {
	if !out.DidWrite() {
		return
	}
	content := out.String()
	if content == "" {
		return
	}
	f.injector.PushInputSource(InputSource{Content: content, SystemID: f.systemID})
}

package js

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dynhtml/pkg/html"
	"dynhtml/pkg/resource"

	"github.com/dop251/goja"
)

// Engine runs script elements for the parser on a goja runtime. One engine
// serves one document: runtime state (globals, functions) persists across
// the document's scripts, the way successive script elements on a page
// share a window.
//
// Engine implements html.ScriptHost.
type Engine struct {
	vm      *goja.Runtime
	loader  resource.ScriptLoader
	timeout time.Duration

	// out is the write buffer of the invocation in progress. Set on entry
	// to a Run call and cleared on exit; document.write outside a call is
	// a TypeError in the script.
	out *html.WriteBuffer
}

type Option func(*Engine)

// WithLoader supplies the loader used for script elements with a src
// attribute. Without one, external scripts are declined.
func WithLoader(loader resource.ScriptLoader) Option {
	return func(e *Engine) { e.loader = loader }
}

// WithTimeout bounds each script execution. A script still running when the
// timeout fires is interrupted and its invocation reports an error. Zero
// means no limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New creates an engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	vm := goja.New()
	e := &Engine{vm: vm}
	for _, opt := range opts {
		opt(e)
	}

	c := &consoleAPI{stdout: os.Stdout, stderr: os.Stderr}
	c.register(vm)
	e.registerDocument()

	return e
}

// IsScript classifies a script element from its type and language
// attributes. An empty type and language defaults to JavaScript, matching
// browser behavior.
func (e *Engine) IsScript(typeAttr, languageAttr string) bool {
	if t := strings.TrimSpace(strings.ToLower(typeAttr)); t != "" {
		switch t {
		case "text/javascript", "text/ecmascript",
			"application/javascript", "application/x-javascript",
			"application/ecmascript":
			return true
		}
		return false
	}
	if lang := strings.TrimSpace(strings.ToLower(languageAttr)); lang != "" {
		return strings.HasPrefix(lang, "javascript")
	}
	return true
}

// RunExternal loads the script at uri and executes it. The uri doubles as
// the script name in stack traces.
func (e *Engine) RunExternal(out *html.WriteBuffer, uri, charset string) error {
	if e.loader == nil {
		return fmt.Errorf("no script loader configured, cannot load %s", uri)
	}
	source, err := e.loader.LoadScript(uri, charset)
	if err != nil {
		return fmt.Errorf("loading %s: %w", uri, err)
	}
	return e.run(out, source, uri)
}

// RunInline executes inline script source under the given label.
func (e *Engine) RunInline(out *html.WriteBuffer, source, label string) error {
	return e.run(out, source, label)
}

func (e *Engine) run(out *html.WriteBuffer, source, name string) error {
	e.out = out
	defer func() { e.out = nil }()

	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			e.vm.Interrupt("script timeout after " + e.timeout.String())
		})
		defer func() {
			timer.Stop()
			e.vm.ClearInterrupt()
		}()
	}

	if _, err := e.vm.RunScript(name, source); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// registerDocument sets up the global `document` object. Only the write
// surface is provided; the parser consumes the written markup, there is no
// live DOM behind it.
func (e *Engine) registerDocument() {
	doc := e.vm.NewObject()
	doc.Set("write", func(call goja.FunctionCall) goja.Value {
		return e.docWrite(call, "")
	})
	doc.Set("writeln", func(call goja.FunctionCall) goja.Value {
		return e.docWrite(call, "\n")
	})
	e.vm.Set("document", doc)
}

func (e *Engine) docWrite(call goja.FunctionCall, suffix string) goja.Value {
	if e.out == nil {
		panic(e.vm.NewTypeError("document.write called outside script execution"))
	}
	for _, arg := range call.Arguments {
		e.out.Write(arg.String())
	}
	if suffix != "" {
		e.out.Write(suffix)
	}
	return goja.Undefined()
}

package html

// Locator identifies the document a parse belongs to. The system ID is the
// URL or path the markup was read from; it tags every input source the parse
// later synthesizes so diagnostics and relative references stay attributable
// to the real document.
type Locator struct {
	SystemID string
}

// Handler receives the streaming parse events produced by the Parser.
// Pipeline stages implement Handler and forward every event to the next
// stage after doing their own bookkeeping; no stage swallows events.
type Handler interface {
	StartDocument(loc Locator) error
	StartElement(name string, attrs map[string]string) error
	Text(text string) error
	EndElement(name string) error
	EndDocument() error
}

// InputInjector accepts synthesized markup to be tokenized before the
// remainder of the current input. The Tokenizer implements it; stages that
// generate markup mid-parse (script execution) only ever append.
type InputInjector interface {
	PushInputSource(src InputSource)
}

// BaseFilter is a pass-through pipeline stage. Embed it and override the
// events you care about; everything else forwards to Next unchanged.
type BaseFilter struct {
	Next Handler
}

func (f *BaseFilter) StartDocument(loc Locator) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.StartDocument(loc)
}

func (f *BaseFilter) StartElement(name string, attrs map[string]string) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.StartElement(name, attrs)
}

func (f *BaseFilter) Text(text string) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.Text(text)
}

func (f *BaseFilter) EndElement(name string) error {
	if f.Next == nil {
		return nil
	}
	return f.Next.EndElement(name)
}

func (f *BaseFilter) EndDocument() error {
	if f.Next == nil {
		return nil
	}
	return f.Next.EndDocument()
}

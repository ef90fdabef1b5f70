package html

import "strings"

// WriteBuffer collects the markup written back into the document by one
// scripting-engine invocation (document.write and friends). A fresh buffer
// is created for every invocation and read out immediately after the call
// returns; it is never shared between invocations.
type WriteBuffer struct {
	buf   strings.Builder
	wrote bool
}

// Write appends content in call order.
func (w *WriteBuffer) Write(content string) {
	w.wrote = true
	w.buf.WriteString(content)
}

// DidWrite reports whether any write occurred, distinguishing "no writes"
// from "wrote empty text". Neither produces an injection, but the two are
// different facts about the script that ran.
func (w *WriteBuffer) DidWrite() bool {
	return w.wrote
}

func (w *WriteBuffer) String() string {
	return w.buf.String()
}

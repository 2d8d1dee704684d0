// File: internal/dialog/recorder.go
package dialog

import (
	"context"
	"sync"
)

// Message is one notification captured by a Recorder.
type Message struct {
	Kind    string
	Title   string
	Message string
}

// Recorder is an in-memory Dialogs implementation for tests. Picker results
// are scripted through the exported fields.
type Recorder struct {
	mu       sync.Mutex
	messages []Message

	AcknowledgeErr error
	File           string
	Files          []string
	Dir            string
	Filters        []Filter
}

var _ Dialogs = (*Recorder)(nil)

func (r *Recorder) record(kind, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Kind: kind, Title: title, Message: message})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Kind returns only the messages of the given kind ("error", "warning", "info", "acknowledge").
func (r *Recorder) Kind(kind string) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (r *Recorder) Error(_ context.Context, title, message string) {
	r.record("error", title, message)
}

func (r *Recorder) Warning(_ context.Context, title, message string) {
	r.record("warning", title, message)
}

func (r *Recorder) Info(_ context.Context, title, message string) {
	r.record("info", title, message)
}

func (r *Recorder) Acknowledge(_ context.Context, title, message string) error {
	r.record("acknowledge", title, message)
	return r.AcknowledgeErr
}

func (r *Recorder) SelectFile(_ context.Context, _ string, filters ...Filter) (string, error) {
	r.mu.Lock()
	r.Filters = filters
	r.mu.Unlock()
	return r.File, nil
}

func (r *Recorder) SelectFiles(context.Context, string) ([]string, error) {
	if r.Files == nil {
		return []string{}, nil
	}
	return r.Files, nil
}

func (r *Recorder) SelectDir(context.Context, string) (string, error) {
	return r.Dir, nil
}

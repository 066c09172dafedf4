package events

import "github.com/atomicstack/select-autosuggest/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Command = CommandTracer{}
)

func (UITracer) Key(key, focus string) {
	logging.Trace("ui.key", map[string]interface{}{"key": key, "focus": focus})
}

func (UITracer) Focus(widget, element string) {
	logging.Trace("ui.focus", map[string]interface{}{"widget": widget, "element": element})
}

func (UITracer) Copy(value string) {
	logging.Trace("ui.copy", map[string]interface{}{"value": value})
}

func (FilterTracer) Append(id, filter string) {
	logging.Trace("filter.append", map[string]interface{}{"id": id, "filter": filter})
}

func (FilterTracer) Backspace(id, filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"id": id, "filter": filter})
}

func (FilterTracer) WordBackspace(id, filter string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"id": id, "filter": filter})
}

func (FilterTracer) Cursor(id string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"id": id, "cursor": pos})
}

func (FilterTracer) Debounce(id, value string) {
	logging.Trace("filter.debounce", map[string]interface{}{"id": id, "value": value})
}

func (FilterTracer) Skip(id, reason string) {
	logging.Trace("filter.skip", map[string]interface{}{"id": id, "reason": reason})
}

func (FilterTracer) Pass(id, query string, candidates int) {
	logging.Trace("filter.pass", map[string]interface{}{"id": id, "query": query, "candidates": candidates})
}

func (FilterTracer) Cleared(id string) {
	logging.Trace("filter.cleared", map[string]interface{}{"id": id})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label string, err error) {
	payload := map[string]interface{}{"id": id, "label": label}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("command.result", payload)
}

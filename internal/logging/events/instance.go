package events

import "github.com/atomicstack/select-autosuggest/internal/logging"

type InstanceTracer struct{}

type SelectionTracer struct{}

var (
	Instance  = InstanceTracer{}
	Selection = SelectionTracer{}
)

func (InstanceTracer) Subscribe(id string, multiple bool, options int) {
	logging.Trace("instance.subscribe", map[string]interface{}{"id": id, "multiple": multiple, "options": options})
}

func (InstanceTracer) Render(id, step string, skipped bool) {
	logging.Trace("instance.render", map[string]interface{}{"id": id, "step": step, "skipped": skipped})
}

func (InstanceTracer) Expand(id string, suggestions int) {
	logging.Trace("instance.expand", map[string]interface{}{"id": id, "suggestions": suggestions})
}

func (InstanceTracer) Collapse(id string) {
	logging.Trace("instance.collapse", map[string]interface{}{"id": id})
}

func (InstanceTracer) Destroy(id string) {
	logging.Trace("instance.destroy", map[string]interface{}{"id": id})
}

func (SelectionTracer) Select(id, value string) {
	logging.Trace("selection.select", map[string]interface{}{"id": id, "value": value})
}

func (SelectionTracer) Deselect(id, value string) {
	logging.Trace("selection.deselect", map[string]interface{}{"id": id, "value": value})
}

func (SelectionTracer) Sync(id string, values []string) {
	logging.Trace("selection.sync", map[string]interface{}{"id": id, "values": values})
}

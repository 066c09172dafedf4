package events

import "github.com/atomicstack/select-autosuggest/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Serve(addr string) {
	logging.Trace("app.serve", map[string]interface{}{"addr": addr})
}

func (AppTracer) Exit(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("app.exit", payload)
}

package events

import "github.com/atomicstack/select-autosuggest/internal/logging"

type ServerTracer struct{}

var Server = ServerTracer{}

func (ServerTracer) Query(method, query string, matches int) {
	logging.Trace("server.query", map[string]interface{}{"method": method, "query": query, "matches": matches})
}

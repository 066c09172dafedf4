package events

import "github.com/atomicstack/select-autosuggest/internal/logging"

type RemoteTracer struct{}

var Remote = RemoteTracer{}

func (RemoteTracer) Request(id, method, url string) {
	logging.Trace("remote.request", map[string]interface{}{"id": id, "method": method, "url": url})
}

func (RemoteTracer) Response(id string, status, results int) {
	logging.Trace("remote.response", map[string]interface{}{"id": id, "status": status, "results": results})
}

func (RemoteTracer) Error(id string, err error) {
	if err == nil {
		return
	}
	logging.Trace("remote.error", map[string]interface{}{"id": id, "error": err.Error()})
}

func (RemoteTracer) Stale(id string) {
	logging.Trace("remote.stale", map[string]interface{}{"id": id})
}

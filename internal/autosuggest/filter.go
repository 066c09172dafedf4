package autosuggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/remote"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// settleDelay separates a finished request from clearing the busy marker so
// back-to-back requests do not flicker.
const settleDelay = time.Millisecond

// FilterValues joins initial and proposal and, for a non-empty query, keeps
// the entries whose value equals the query or whose label contains it, both
// ignoring case. Fuzzy mode also keeps labels containing the query's letters
// in order.
func FilterValues(initial value.Values, query string, proposal value.Values, mode MatchMode) value.Values {
	pool := initial.Concat(proposal)
	if query == "" {
		return pool
	}
	needle := strings.ToLower(query)
	out := make(value.Values, 0, len(pool))
	for _, p := range pool {
		switch {
		case strings.EqualFold(p.Value, query):
		case strings.Contains(strings.ToLower(p.Label), needle):
		case mode == MatchFuzzy && fuzzy.MatchNormalizedFold(query, p.Label):
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterValues filters the instance's initial values plus proposal.
func (e *Engine) FilterValues(id, query string, proposal value.Values) (value.Values, error) {
	inst, err := e.require(id)
	if err != nil {
		return nil, err
	}
	return FilterValues(inst.InitialValue, query, proposal, inst.Settings.Config.Match), nil
}

// handleFilter resolves remote suggestions for query and passes them to
// handler on the loop. Without an endpoint, or with a short query, handler
// runs immediately with nothing.
func (e *Engine) handleFilter(id, query string, handler func(value.Values)) {
	inst, ok := e.lookup(id)
	if !ok || inst.PreventFilter {
		return
	}

	req := remote.Request{
		ID:         id,
		Endpoint:   inst.Settings.Endpoint,
		FilterName: dom.AttrOr(inst.Filter, "name", id),
		Query:      query,
		Config:     inst.Settings.Config.Config,
	}
	if remote.Skip(req) {
		events.Filter.Skip(id, "no endpoint or short query")
		handler(nil)
		return
	}

	e.cancelRequest(id)
	e.tokens++
	token := e.tokens
	ctx, cancel := context.WithCancel(inst.ctx)
	e.update(id, Update{
		PreventFilter: flag(true),
		request:       &requestState{token: token, cancel: cancel},
	})
	e.setBusy(id, true)

	go func() {
		results, err := e.fetcher.Fetch(ctx, req)
		e.sched.Post(func() {
			e.settle(id, token, results, err, handler)
		})
	}()
}

// settle runs on the loop once a request returns. Responses for destroyed
// instances and superseded requests are dropped.
func (e *Engine) settle(id string, token uint64, results value.Values, err error, handler func(value.Values)) {
	inst, ok := e.lookup(id)
	if !ok || inst.request.token != token {
		events.Remote.Stale(id)
		return
	}
	if inst.request.cancel != nil {
		inst.request.cancel()
	}
	e.update(id, Update{request: &requestState{token: token}})

	if err != nil {
		if errors.Is(err, context.Canceled) {
			e.update(id, Update{PreventFilter: flag(false), request: &requestState{}})
			e.setBusy(id, false)
			return
		}
		events.Remote.Error(id, err)
		e.report(fmt.Errorf("filter %s: %w", id, err))
		var statusErr *remote.StatusError
		if errors.As(err, &statusErr) {
			e.fire(OnEndpointException, id, inst.Filter, map[string]interface{}{
				"status":     statusErr.Code,
				"statusText": statusErr.Status,
			})
		}
		results = nil
	}
	handler(results)

	e.sched.AfterFunc(settleDelay, func() {
		current, ok := e.lookup(id)
		if !ok || current.request.token != token {
			return
		}
		e.update(id, Update{PreventFilter: flag(false), request: &requestState{}})
		e.setBusy(id, false)
	})
}

// cancelRequest abandons the in-flight request for id, if any, and clears
// the suppression it holds.
func (e *Engine) cancelRequest(id string) {
	inst, ok := e.lookup(id)
	if !ok || inst.request.token == 0 {
		return
	}
	if inst.request.cancel != nil {
		inst.request.cancel()
	}
	e.update(id, Update{PreventFilter: flag(false), request: &requestState{}})
	e.setBusy(id, false)
}

func (e *Engine) setBusy(id string, busy bool) {
	inst, ok := e.lookup(id)
	if !ok || inst.Wrapper == nil {
		return
	}
	if busy {
		dom.SetAttr(inst.Wrapper, "aria-busy", "true")
	} else {
		dom.RemoveAttr(inst.Wrapper, "aria-busy")
	}
	e.changed(id)
}

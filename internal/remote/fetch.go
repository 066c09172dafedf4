// Package remote issues the endpoint request behind a filter pass and turns
// the JSON reply into value pairs.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

const maxBodyBytes = 4 << 20

// Request describes one filter pass against an endpoint.
type Request struct {
	ID         string
	Endpoint   string
	FilterName string
	Query      string
	Config     Config
}

// StatusError reports a reply outside the 2xx and 3xx ranges.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to use endpoint: %s", e.Status)
}

// Fetcher performs requests with a shared client.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wraps client. A nil client gets a default with a timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Skip reports whether req must not reach the network: no endpoint, or a
// query shorter than the configured minimum.
func Skip(req Request) bool {
	if strings.TrimSpace(req.Endpoint) == "" {
		return true
	}
	return req.Query == "" || utf8.RuneCountInString(req.Query) < req.Config.MinQueryLength
}

// Fetch sends req and decodes the reply. An unparsable body is logged and
// yields no results without an error; status and transport failures are
// returned.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (value.Values, error) {
	if Skip(req) {
		return nil, nil
	}
	httpReq, err := buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	events.Remote.Request(req.ID, httpReq.Method, httpReq.URL.String())

	resp, err := f.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("unable to use endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var body interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logging.Error(fmt.Errorf("unable to parse response for %q: %w", req.Query, err))
		return nil, nil
	}

	results := Decode(body, req.Config.Transform)
	events.Remote.Response(req.ID, resp.StatusCode, len(results))
	return results, nil
}

// Decode applies transform to a parsed body and converts the outcome into
// pairs. A transform that fails or does not produce a sequence is logged and
// the body is used as a single entry instead.
func Decode(body interface{}, transform Transform) value.Values {
	if body == nil {
		return nil
	}
	if transform == nil {
		return toPairs(entries(body))
	}
	logging.Info("transforming endpoint output with custom handler")
	out, err := transform.Apply(body)
	if err != nil {
		logging.Error(fmt.Errorf("unable to transform response: %w", err))
		return toPairs([]interface{}{body})
	}
	list, ok := out.([]interface{})
	if !ok {
		logging.Error(fmt.Errorf("ignoring transform result of type %T, it is not a sequence", out))
		return toPairs([]interface{}{body})
	}
	return toPairs(list)
}

// entries treats an array of arrays or objects as a list, and anything else
// (an object, or a single [value, label] array) as one entry.
func entries(body interface{}) []interface{} {
	list, ok := body.([]interface{})
	if !ok {
		return []interface{}{body}
	}
	if len(list) == 0 {
		return list
	}
	switch list[0].(type) {
	case []interface{}, map[string]interface{}:
		return list
	}
	return []interface{}{list}
}

func toPairs(list []interface{}) value.Values {
	out := make(value.Values, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case []interface{}:
			if len(v) == 0 {
				continue
			}
			val, ok := scalar(v[0])
			if !ok {
				continue
			}
			label := val
			if len(v) > 1 {
				if l, ok := scalar(v[1]); ok {
					label = l
				}
			}
			out = append(out, value.Pair{Value: val, Label: label})
		case map[string]interface{}:
			val, ok := scalar(v["value"])
			if !ok {
				continue
			}
			label, ok := scalar(v["label"])
			if !ok {
				label = val
			}
			out = append(out, value.Pair{Value: val, Label: label})
		default:
			if s, ok := scalar(v); ok {
				out = append(out, value.Pair{Value: s, Label: s})
			}
		}
	}
	return out
}

func scalar(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	params := make(map[string]string, len(req.Config.Parameters)+1)
	for k, v := range req.Config.Parameters {
		params[k] = v
	}
	name := req.FilterName
	if name == "" {
		name = req.ID
	}
	params[name] = req.Query

	method := req.Config.NormalizedMethod()
	if method == http.MethodGet {
		target := req.Endpoint
		if qs := Serialize(params); qs != "" {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + qs
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		applyHeaders(httpReq, req.Config.Headers)
		return httpReq, nil
	}

	contentType := req.Config.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	var payload string
	if strings.Contains(strings.ToLower(contentType), "json") {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		payload = string(raw)
	} else {
		payload = Serialize(params)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.Endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	applyHeaders(httpReq, req.Config.Headers)
	return httpReq, nil
}

func applyHeaders(r *http.Request, headers map[string]string) {
	r.Header.Set("Accept", "application/json")
	for k, v := range headers {
		r.Header.Set(k, v)
	}
}

// Serialize encodes params as key=value pairs joined by '&', keys sorted,
// with spaces as %20.
func Serialize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, escape(k)+"="+escape(params[k]))
	}
	return strings.Join(parts, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

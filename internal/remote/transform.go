package remote

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/jmespath/go-jmespath"
)

// Transform reshapes a decoded response body into a sequence of entries.
type Transform interface {
	Apply(body interface{}) (interface{}, error)
}

// TransformFunc adapts a plain function.
type TransformFunc func(body interface{}) (interface{}, error)

func (f TransformFunc) Apply(body interface{}) (interface{}, error) { return f(body) }

// ScriptTransform evaluates a JavaScript function expression such as
// `body => body.items.map(i => [i.id, i.name])`.
type ScriptTransform struct {
	mu sync.Mutex
	vm *goja.Runtime
	fn goja.Callable
}

// NewScriptTransform compiles src. The runtime is private to the transform
// and guarded by a mutex, so Apply may be called from fetch goroutines.
func NewScriptTransform(src string) (*ScriptTransform, error) {
	vm := goja.New()
	wrapper := "(function(f){if(typeof f!=='function'){throw new TypeError('transform is not a function');}" +
		"return function(raw){return f(JSON.parse(raw));};})(" + src + ")"
	v, err := vm.RunString(wrapper)
	if err != nil {
		return nil, fmt.Errorf("compile transform: %w", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("compile transform: expression is not a function")
	}
	return &ScriptTransform{vm: vm, fn: fn}, nil
}

func (s *ScriptTransform) Apply(body interface{}) (interface{}, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.fn(goja.Undefined(), s.vm.ToValue(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
		return nil, nil
	}
	return res.Export(), nil
}

// PathTransform applies a JMESPath expression.
type PathTransform struct {
	expr *jmespath.JMESPath
}

func NewPathTransform(expr string) (*PathTransform, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile transformPath: %w", err)
	}
	return &PathTransform{expr: compiled}, nil
}

func (p *PathTransform) Apply(body interface{}) (interface{}, error) {
	return p.expr.Search(body)
}

type chain []Transform

func (c chain) Apply(body interface{}) (interface{}, error) {
	cur := body
	for _, t := range c {
		next, err := t.Apply(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// CompileTransform builds the configured transform. The JMESPath expression
// runs first and the script receives its result. Both empty yields nil.
func CompileTransform(script, path string) (Transform, error) {
	var steps chain
	if p := strings.TrimSpace(path); p != "" {
		t, err := NewPathTransform(p)
		if err != nil {
			return nil, err
		}
		steps = append(steps, t)
	}
	if s := strings.TrimSpace(script); s != "" {
		t, err := NewScriptTransform(s)
		if err != nil {
			return nil, err
		}
		steps = append(steps, t)
	}
	switch len(steps) {
	case 0:
		return nil, nil
	case 1:
		return steps[0], nil
	}
	return steps, nil
}

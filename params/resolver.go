package params

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"dario.cat/mergo"
	"github.com/Masterminds/sprig/v3"
	"github.com/cschleiden/go-taskmapper/core"
)

var (
	singleReference = regexp.MustCompile(`^\$\{([^}]+)\}$`)
	anyReference    = regexp.MustCompile(`\$?\$\{([^}]+)\}`)
)

type ErrUnresolvedReference struct {
	Path string
}

func (e *ErrUnresolvedReference) Error() string {
	return fmt.Sprintf("reference ${%s} could not be resolved", e.Path)
}

// TemplateResolver resolves ${path} references against the workflow state and renders {{ }} templates with
// the hermetic sprig function library.
//
// A string consisting of a single ${path} reference resolves to the referenced value with its type. References
// embedded in longer strings are substituted as text after the template is rendered, so templates read workflow
// data through the template data (.workflow.input.x) and never through a reference. $${ escapes a literal ${.
type TemplateResolver struct {
	options Options
	funcs   template.FuncMap
}

var _ Resolver = (*TemplateResolver)(nil)

func NewTemplateResolver(opts ...Option) *TemplateResolver {
	options := ApplyOptions(opts...)

	funcs := sprig.HermeticTxtFuncMap()
	maps.Copy(funcs, options.Funcs)

	return &TemplateResolver{
		options: options,
		funcs:   funcs,
	}
}

func (r *TemplateResolver) Resolve(ctx context.Context, bindings map[string]any, wf *core.Workflow, def *core.TaskDefinition, taskID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if wf == nil {
		return nil, errors.New("workflow is nil")
	}

	input, err := withDefaults(bindings, def)
	if err != nil {
		return nil, err
	}

	doc, err := newDocument(wf, taskID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]any, len(input))
	for k, v := range input {
		rv, err := r.value(v, doc)
		if err != nil {
			return nil, fmt.Errorf("resolving input parameter %q: %w", k, err)
		}

		resolved[k] = rv
	}

	return resolved, nil
}

// withDefaults returns a copy of the bindings with the input template of the definition applied for every
// parameter that is not bound. Nested maps are merged.
func withDefaults(bindings map[string]any, def *core.TaskDefinition) (map[string]any, error) {
	if def == nil || len(def.InputTemplate) == 0 {
		input := core.CloneMap(bindings)
		if input == nil {
			input = map[string]any{}
		}

		return input, nil
	}

	input := core.CloneMap(def.InputTemplate)

	bound := core.CloneMap(bindings)
	if len(bound) == 0 {
		return input, nil
	}

	for k, v := range bound {
		// A parameter bound to nil falls back to the default.
		if _, ok := input[k]; ok && v == nil {
			delete(bound, k)
		}
	}

	if err := mergo.Merge(&input, bound, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("applying input template of task definition %q: %w", def.Name, err)
	}

	return input, nil
}

func (r *TemplateResolver) value(v any, doc *document) (any, error) {
	switch t := v.(type) {
	case string:
		return r.str(t, doc)

	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			rv, err := r.value(e, doc)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = rv
		}
		return m, nil

	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			rv, err := r.value(e, doc)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			s[i] = rv
		}
		return s, nil

	default:
		return v, nil
	}
}

func (r *TemplateResolver) str(s string, doc *document) (any, error) {
	if m := singleReference.FindStringSubmatch(s); m != nil {
		return r.reference(m[1], doc)
	}

	if !strings.Contains(s, "${") && !strings.Contains(s, "{{") {
		return s, nil
	}

	// References become placeholders until the author's template is rendered. Substituted values are never parsed
	// as templates or scanned for further references.
	var (
		values []string
		err    error
	)
	src := anyReference.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(m, "$$") {
			return m[1:]
		}

		v, rerr := r.reference(m[2:len(m)-1], doc)
		if rerr != nil {
			if err == nil {
				err = rerr
			}
			return ""
		}

		values = append(values, text(v))
		return placeholder(len(values) - 1)
	})
	if err != nil {
		return nil, err
	}

	if !strings.Contains(src, "{{") {
		return substitute(src, values), nil
	}

	out, err := r.render(src, doc)
	if err != nil {
		return nil, err
	}

	return rendered(substitute(out, values)), nil
}

func placeholder(i int) string {
	return "\x00" + strconv.Itoa(i) + "\x00"
}

func substitute(s string, values []string) string {
	if len(values) == 0 {
		return s
	}

	pairs := make([]string, 0, 2*len(values))
	for i, v := range values {
		pairs = append(pairs, placeholder(i), v)
	}

	return strings.NewReplacer(pairs...).Replace(s)
}

func (r *TemplateResolver) reference(path string, doc *document) (any, error) {
	path = strings.TrimSpace(path)
	if path == TaskIDVariable {
		return doc.taskID, nil
	}

	res := doc.lookup(path)
	if !res.Exists() {
		if r.options.Strict {
			return nil, &ErrUnresolvedReference{Path: path}
		}

		return nil, nil
	}

	return resultValue(res), nil
}

func (r *TemplateResolver) render(s string, doc *document) (string, error) {
	tmpl, err := template.New("input").Option("missingkey=error").Funcs(r.funcs).Parse(s)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc.data); err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}

	return buf.String(), nil
}

// rendered converts template output that spells a boolean, object or array into that value.
func rendered(out string) any {
	switch out {
	case "true":
		return true
	case "false":
		return false
	}

	if strings.HasPrefix(out, "{") || strings.HasPrefix(out, "[") {
		var v any
		if json.Unmarshal([]byte(out), &v) == nil {
			return v
		}
	}

	return out
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

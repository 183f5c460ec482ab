package params

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cschleiden/go-taskmapper/core"
	"github.com/tidwall/gjson"
)

// TaskIDVariable resolves to the id assigned to the task being mapped.
const TaskIDVariable = "CPEWF_TASK_ID"

// document is the data expressions are evaluated against. The workflow is available under "workflow", every
// task of the run under its reference name.
type document struct {
	taskID string
	data   map[string]any
	raw    []byte
}

func newDocument(wf *core.Workflow, taskID string) (*document, error) {
	data := map[string]any{
		"workflow": workflowData(wf),
		"taskId":   taskID,
	}

	for _, t := range wf.Tasks {
		td := taskData(t)
		data[t.ReferenceTaskName] = td

		// Tasks inside loops are also available under their plain reference name, latest iteration wins.
		if t.Iteration > 0 {
			data[core.RemoveIteration(t.ReferenceTaskName)] = td
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding workflow state: %w", err)
	}

	return &document{taskID: taskID, data: data, raw: raw}, nil
}

func workflowData(wf *core.Workflow) map[string]any {
	d := map[string]any{
		"workflowId":           wf.WorkflowID,
		"correlationId":        wf.CorrelationID,
		"priority":             wf.Priority,
		"status":               string(wf.Status),
		"workflowType":         wf.Name(),
		"version":              wf.Version(),
		"input":                wf.Input,
		"output":               wf.Output,
		"variables":            wf.Variables,
		"parentWorkflowId":     wf.ParentWorkflowID,
		"parentWorkflowTaskId": wf.ParentWorkflowTaskID,
		"taskToDomain":         wf.TaskToDomain,
	}

	if !wf.CreateTime.IsZero() {
		d["createTime"] = wf.CreateTime.UnixMilli()
	}

	return d
}

func taskData(t *core.Task) map[string]any {
	d := map[string]any{
		"taskId":               t.TaskID,
		"taskType":             t.TaskType,
		"taskDefName":          t.TaskDefName,
		"referenceTaskName":    t.ReferenceTaskName,
		"status":               string(t.Status),
		"input":                t.InputData,
		"output":               t.OutputData,
		"retryCount":           t.RetryCount,
		"callbackAfterSeconds": t.CallbackAfterSeconds,
		"workflowInstanceId":   t.WorkflowInstanceID,
		"workflowType":         t.WorkflowType,
		"iteration":            t.Iteration,
		"domain":               t.Domain,
		"subWorkflowId":        t.SubWorkflowID,
	}

	if !t.ScheduledTime.IsZero() {
		d["scheduledTime"] = t.ScheduledTime.UnixMilli()
	}

	return d
}

// lookup evaluates a dotted path such as workflow.input.items[0].id.
func (d *document) lookup(path string) gjson.Result {
	return gjson.GetBytes(d.raw, gjsonPath(path))
}

// gjsonPath converts a dotted path with [n] indexes into gjson syntax, escaping characters that have a
// meaning in gjson paths.
func gjsonPath(path string) string {
	var parts []string

	for _, segment := range strings.Split(strings.TrimSpace(path), ".") {
		name, indexes := splitIndexes(segment)
		if name != "" {
			parts = append(parts, escapeKey(name))
		}

		parts = append(parts, indexes...)
	}

	return strings.Join(parts, ".")
}

func splitIndexes(segment string) (string, []string) {
	open := strings.IndexByte(segment, '[')
	if open < 0 || !strings.HasSuffix(segment, "]") {
		return segment, nil
	}

	name := segment[:open]
	var indexes []string
	for _, part := range strings.Split(segment[open+1:len(segment)-1], "][") {
		if _, err := strconv.Atoi(part); err != nil {
			// Not an index expression, treat the segment as a plain key.
			return segment, nil
		}
		indexes = append(indexes, part)
	}

	return name, indexes
}

func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

// resultValue converts a lookup result into Go values. Integral numbers keep their exact value as int64 (or
// uint64 above the int64 range); only fractional or exponent numbers become float64.
func resultValue(res gjson.Result) any {
	switch {
	case res.IsObject():
		m := map[string]any{}
		res.ForEach(func(k, v gjson.Result) bool {
			m[k.String()] = resultValue(v)
			return true
		})
		return m

	case res.IsArray():
		s := []any{}
		res.ForEach(func(_, v gjson.Result) bool {
			s = append(s, resultValue(v))
			return true
		})
		return s

	case res.Type == gjson.Number:
		return number(res.Raw)

	default:
		return res.Value()
	}
}

func number(raw string) any {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}

		if u, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return u
		}
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}

	return json.Number(raw)
}

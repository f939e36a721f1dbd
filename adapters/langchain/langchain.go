// Package langchain exposes toolhub tools to LangChain Go: as tools.Tool
// implementations for agent executors and as llms.Tool definitions for
// direct model binding.
package langchain

import (
	"context"
	"encoding/json"

	"github.com/tmc/langchaingo/llms"
	lctools "github.com/tmc/langchaingo/tools"

	"github.com/skosovsky/toolhub"
)

// Definitions returns llms.Tool definitions for every registered tool, in
// registration order, for binding to a model via llms.WithTools.
func Definitions(reg *toolhub.Registry) []llms.Tool {
	var defs []llms.Tool
	for t := range reg.List("") {
		var params any = map[string]any{"type": "object", "properties": map[string]any{}}
		if s := t.InputSchema(); s != nil {
			params = s.JSONSchema()
		}
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  params,
			},
		})
	}
	return defs
}

// Tools wraps every tool the Dispatcher can run as a LangChain tools.Tool.
func Tools(d *toolhub.Dispatcher) []lctools.Tool {
	var out []lctools.Tool
	for t := range d.Registry().List("") {
		out = append(out, &adapted{dispatcher: d, tool: t})
	}
	return out
}

// adapted runs one toolhub tool behind the LangChain tools.Tool interface.
type adapted struct {
	dispatcher *toolhub.Dispatcher
	tool       toolhub.Tool
}

func (a *adapted) Name() string        { return a.tool.Name() }
func (a *adapted) Description() string { return a.tool.Description() }

// Call parses the agent's input and dispatches it. LangChain agents pass
// either a JSON object or, for single-argument tools, a bare string; both
// are accepted. Failures are returned as the observation string rather
// than an error, so the agent loop can read them and self-correct.
func (a *adapted) Call(ctx context.Context, input string) (string, error) {
	args, err := a.parseInput(input)
	if err != nil {
		return err.Error(), nil
	}
	res := a.dispatcher.Invoke(ctx, a.tool.Name(), args)
	if !res.Ok() {
		return res.Failure.Message, nil
	}
	content, err := json.Marshal(res.Output)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (a *adapted) parseInput(input string) (toolhub.Args, error) {
	var args toolhub.Args
	if err := json.Unmarshal([]byte(input), &args); err == nil {
		return args, nil
	}
	// Bare-string input: feed it to the schema's single field.
	if s := a.tool.InputSchema(); s != nil && s.Len() == 1 {
		f := s.Fields()[0]
		return toolhub.Args{f.Name: input}, nil
	}
	return nil, &toolhub.ValidationError{Reason: "input is not a JSON object"}
}

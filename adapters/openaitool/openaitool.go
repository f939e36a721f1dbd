// Package openaitool bridges a toolhub registry to the OpenAI
// chat-completions tool-calling API: export registered tools as function
// specs and dispatch the model's tool calls back through a Dispatcher.
package openaitool

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/openai/openai-go"

	"github.com/skosovsky/toolhub"
)

// Specs returns the OpenAI function specs for every tool in the registry,
// in registration order. Namespaced names (e.g. "smithery:exa:web_search")
// are sanitized for the OpenAI name grammar; Dispatch reverses the mapping.
func Specs(reg *toolhub.Registry) []openai.ChatCompletionToolParam {
	var specs []openai.ChatCompletionToolParam
	for t := range reg.List("") {
		specs = append(specs, Spec(t))
	}
	return specs
}

// Spec returns the OpenAI function spec for one tool.
func Spec(t toolhub.Tool) openai.ChatCompletionToolParam {
	params := openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	if s := t.InputSchema(); s != nil {
		params = openai.FunctionParameters(s.JSONSchema())
	}
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        SanitizeName(t.Name()),
			Description: openai.String(t.Description()),
			Parameters:  params,
		},
	}
}

// Dispatch executes one tool call from a model response and returns the
// tool message to append to the conversation. Failures become the message
// content, so the model can read the error and self-correct; Dispatch
// itself never fails.
func Dispatch(ctx context.Context, d *toolhub.Dispatcher, call openai.ChatCompletionMessageToolCall) openai.ChatCompletionMessageParamUnion {
	name := ResolveName(d.Registry(), call.Function.Name)

	var args toolhub.Args
	if raw := call.Function.Arguments; raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return openai.ToolMessage("invalid JSON arguments: "+err.Error(), call.ID)
		}
	}

	res := d.Invoke(ctx, name, args)
	if !res.Ok() {
		return openai.ToolMessage(res.Failure.Message, call.ID)
	}
	content, err := json.Marshal(res.Output)
	if err != nil {
		return openai.ToolMessage("failed to encode tool output: "+err.Error(), call.ID)
	}
	return openai.ToolMessage(string(content), call.ID)
}

// SanitizeName maps a tool name onto the OpenAI function name grammar
// ([A-Za-z0-9_-]). Namespace colons become double underscores.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, ":", "__")
}

// ResolveName maps a sanitized function name back to the registered tool
// name by scanning the registry. Unsanitized names pass through unchanged;
// an unknown name is returned as-is and surfaces as a not-found failure.
func ResolveName(reg *toolhub.Registry, name string) string {
	if _, err := reg.Get(name); err == nil {
		return name
	}
	for t := range reg.List("") {
		if SanitizeName(t.Name()) == name {
			return t.Name()
		}
	}
	return name
}

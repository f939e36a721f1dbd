// Package smithery imports tools from remote MCP servers (Smithery registry
// or any MCP-compatible endpoint) into a toolhub registry. Imported tools
// are namespaced "smithery:{server}:{tool}" so remote names can never
// shadow local ones.
package smithery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skosovsky/toolhub"
)

// DefaultPrefix is the namespace prefix for imported tool names.
const DefaultPrefix = "smithery"

// ToolSpec is a remote tool as a server describes it: name, description,
// and a JSON Schema for its input. Output schemas are not part of the MCP
// discovery contract, so imported tools carry none.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Source is a connection to one remote tool server. The HTTP JSON-RPC
// client in this package implements it; tests substitute fakes.
type Source interface {
	ListTools(ctx context.Context) ([]ToolSpec, error)
	CallTool(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// Importer discovers tools on remote servers and registers proxies for
// them. Re-importing the same server replaces the previous proxies, so an
// import after a server update is an idempotent refresh, never a duplicate.
type Importer struct {
	reg    *toolhub.Registry
	prefix string
	logger *zap.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithPrefix overrides the namespace prefix (default "smithery").
func WithPrefix(prefix string) ImporterOption {
	return func(i *Importer) {
		i.prefix = prefix
	}
}

// WithImportLogger sets the diagnostic logger. Defaults to zap.NewNop().
func WithImportLogger(logger *zap.Logger) ImporterOption {
	return func(i *Importer) {
		i.logger = logger
	}
}

// NewImporter creates an Importer registering into reg.
func NewImporter(reg *toolhub.Registry, opts ...ImporterOption) *Importer {
	i := &Importer{reg: reg, prefix: DefaultPrefix, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportServer discovers every tool on the server and registers a remote
// proxy for each under "{prefix}:{server}:{tool}". It returns the
// registered names in discovery order. Discovery failures and unusable tool
// schemas return an ImportError; nothing is partially registered on a
// discovery failure.
func (i *Importer) ImportServer(ctx context.Context, server string, src Source) ([]string, error) {
	specs, err := src.ListTools(ctx)
	if err != nil {
		return nil, &toolhub.ImportError{Server: server, Err: err}
	}

	proxies := make([]*RemoteTool, 0, len(specs))
	for _, spec := range specs {
		proxy, err := newRemoteTool(i.prefix, server, spec, src)
		if err != nil {
			return nil, &toolhub.ImportError{Server: server, Err: err}
		}
		proxies = append(proxies, proxy)
	}

	names := make([]string, 0, len(proxies))
	for _, proxy := range proxies {
		i.reg.RegisterOrReplace(proxy)
		names = append(names, proxy.Name())
	}
	i.logger.Info("imported remote tools",
		zap.String("server", server),
		zap.Int("count", len(names)),
	)
	return names, nil
}

// ListTools discovers the server's tools without registering anything.
func (i *Importer) ListTools(ctx context.Context, server string, src Source) ([]ToolSpec, error) {
	specs, err := src.ListTools(ctx)
	if err != nil {
		return nil, &toolhub.ImportError{Server: server, Err: err}
	}
	return specs, nil
}

// RemoteTool proxies invocations to a tool living on a remote server. Its
// input schema is compiled from the server's declaration, so validation
// runs locally before any network call; its output schema is nil because
// the remote contract is unknown.
type RemoteTool struct {
	name        string
	remoteName  string
	description string
	input       *toolhub.Schema
	source      Source
}

func newRemoteTool(prefix, server string, spec ToolSpec, src Source) (*RemoteTool, error) {
	var input *toolhub.Schema
	if spec.InputSchema != nil {
		s, err := toolhub.SchemaFromJSON(spec.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %q: unusable input schema: %w", spec.Name, err)
		}
		input = s
	}
	return &RemoteTool{
		name:        fmt.Sprintf("%s:%s:%s", prefix, server, spec.Name),
		remoteName:  spec.Name,
		description: spec.Description,
		input:       input,
		source:      src,
	}, nil
}

func (t *RemoteTool) Name() string                  { return t.name }
func (t *RemoteTool) Description() string           { return t.description }
func (t *RemoteTool) InputSchema() *toolhub.Schema  { return t.input }
func (t *RemoteTool) OutputSchema() *toolhub.Schema { return nil }

// Invoke forwards the validated arguments to the remote server.
func (t *RemoteTool) Invoke(ctx context.Context, args toolhub.Args) (toolhub.Args, error) {
	out, err := t.source.CallTool(ctx, t.remoteName, args)
	if err != nil {
		return nil, err
	}
	return toolhub.Args(out), nil
}

var _ toolhub.Tool = (*RemoteTool)(nil)

package smithery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const defaultBaseURL = "https://server.smithery.ai"

// Client talks MCP JSON-RPC 2.0 to one server over streamable HTTP. It
// implements Source.
type Client struct {
	server     string
	baseURL    string
	apiKey     string
	config     map[string]any
	httpClient *http.Client
	nextID     atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the Smithery API key, sent as the api_key query parameter.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithServerConfig sets the per-server configuration object, sent
// base64-encoded as the config query parameter.
func WithServerConfig(config map[string]any) ClientOption {
	return func(c *Client) {
		c.config = config
	}
}

// WithBaseURL overrides the Smithery gateway URL, e.g. to point at a
// self-hosted MCP endpoint.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient overrides the HTTP client (custom timeout, transport,
// test server).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the named server (e.g. "exa",
// "@smithery/fetch").
func NewClient(server string, opts ...ClientOption) *Client {
	c := &Client{
		server:     server,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Server returns the server name this client connects to.
func (c *Client) Server() string { return c.server }

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ListTools implements Source via the MCP tools/list method.
func (c *Client) ListTools(ctx context.Context) ([]ToolSpec, error) {
	var result struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := c.call(ctx, "tools/list", nil, &result); err != nil {
		return nil, err
	}
	specs := make([]ToolSpec, 0, len(result.Tools))
	for _, t := range result.Tools {
		specs = append(specs, ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return specs, nil
}

// CallTool implements Source via the MCP tools/call method. Structured
// results pass through as-is; plain text content is wrapped under the
// "content" key.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StructuredContent map[string]any `json:"structuredContent"`
		IsError           bool           `json:"isError"`
	}
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return nil, err
	}

	var texts []string
	for _, item := range result.Content {
		if item.Type == "text" {
			texts = append(texts, item.Text)
		}
	}
	if result.IsError {
		return nil, fmt.Errorf("remote tool %q failed: %s", name, strings.Join(texts, "\n"))
	}
	if result.StructuredContent != nil {
		return result.StructuredContent, nil
	}
	return map[string]any{"content": strings.Join(texts, "\n")}, nil
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(payload))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("malformed result: %w", err)
		}
	}
	return nil
}

// endpoint builds the server URL with auth and config query parameters.
func (c *Client) endpoint() string {
	u := c.baseURL + "/" + c.server + "/mcp"
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	if c.config != nil {
		if encoded, err := json.Marshal(c.config); err == nil {
			q.Set("config", base64.StdEncoding.EncodeToString(encoded))
		}
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

var _ Source = (*Client)(nil)

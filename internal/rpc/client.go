// Package rpc talks to a NEAR node over JSON-RPC 2.0.
package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/ggonzalez94/near-cli/internal/httpx"
	"github.com/ggonzalez94/near-cli/internal/near"
)

const (
	RequestViewAccessKey = "view_access_key"
	RequestViewCode      = "view_code"
)

type Client struct {
	http   *httpx.Client
	url    string
	nextID atomic.Uint64
	log    zerolog.Logger
}

func New(httpClient *httpx.Client, url string, logger zerolog.Logger) *Client {
	return &Client{http: httpClient, url: url, log: logger.With().Str("rpc", url).Logger()}
}

func (c *Client) URL() string { return c.url }

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Error is a JSON-RPC error object as returned by the node.
type Error struct {
	Name    string          `json:"name,omitempty"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Cause   *struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info,omitempty"`
	} `json:"cause,omitempty"`
}

func (e *Error) Error() string {
	parts := []string{e.Message}
	if e.Cause != nil && e.Cause.Name != "" {
		parts = append(parts, e.Cause.Name)
	}
	if len(e.Data) > 0 && string(e.Data) != "null" {
		parts = append(parts, strings.Trim(string(e.Data), `"`))
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, strings.Join(parts, ": "))
}

func (c *Client) call(ctx context.Context, httpClient *httpx.Client, method string, params any, out any) error {
	id := c.nextID.Add(1)
	body, err := json.Marshal(request{JSONRPC: "2.0", ID: fmt.Sprintf("near-cli-%d", id), Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}
	c.log.Debug().Str("method", method).Uint64("id", id).Msg("rpc call")
	var resp response
	if err := httpClient.PostJSON(ctx, c.url, body, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// Query runs a "query" call of the given request kind against ref. Node-side
// query errors, which arrive inside a successful result, are returned as errors.
func (c *Client) Query(ctx context.Context, ref near.BlockReference, requestType string, fields map[string]any, out any) error {
	params := ref.Params()
	params["request_type"] = requestType
	for k, v := range fields {
		params[k] = v
	}
	var raw json.RawMessage
	if err := c.call(ctx, c.http, "query", params, &raw); err != nil {
		return err
	}
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Error != "" {
		return fmt.Errorf("query %s: %s", requestType, probe.Error)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", requestType, err)
	}
	return nil
}

type AccessKeyResult struct {
	Nonce       uint64              `json:"nonce"`
	Permission  near.PermissionView `json:"permission"`
	BlockHeight uint64              `json:"block_height"`
	BlockHash   near.CryptoHash     `json:"block_hash"`
}

func (c *Client) ViewAccessKey(ctx context.Context, account near.AccountID, publicKey near.PublicKey, ref near.BlockReference) (AccessKeyResult, error) {
	var out AccessKeyResult
	err := c.Query(ctx, ref, RequestViewAccessKey, map[string]any{
		"account_id": account.String(),
		"public_key": publicKey.String(),
	}, &out)
	if err != nil {
		return AccessKeyResult{}, wrapQuery("view access key", err)
	}
	return out, nil
}

type CodeResult struct {
	Code        []byte
	Hash        near.CryptoHash
	BlockHeight uint64
	BlockHash   near.CryptoHash
}

func (c *Client) ViewCode(ctx context.Context, account near.AccountID, ref near.BlockReference) (CodeResult, error) {
	var out struct {
		CodeBase64  string          `json:"code_base64"`
		Hash        near.CryptoHash `json:"hash"`
		BlockHeight uint64          `json:"block_height"`
		BlockHash   near.CryptoHash `json:"block_hash"`
	}
	if err := c.Query(ctx, ref, RequestViewCode, map[string]any{"account_id": account.String()}, &out); err != nil {
		return CodeResult{}, wrapQuery("view contract", err)
	}
	code, err := base64.StdEncoding.DecodeString(out.CodeBase64)
	if err != nil {
		return CodeResult{}, wrapQuery("view contract", fmt.Errorf("decode code_base64: %w", err))
	}
	return CodeResult{Code: code, Hash: out.Hash, BlockHeight: out.BlockHeight, BlockHash: out.BlockHash}, nil
}

// BroadcastTxCommit submits a signed transaction and waits for its final
// outcome. The request is sent once and never retried.
func (c *Client) BroadcastTxCommit(ctx context.Context, tx near.SignedTransaction) (near.FinalExecutionOutcome, error) {
	encoded, err := tx.Base64()
	if err != nil {
		return near.FinalExecutionOutcome{}, clierr.Wrap(clierr.CodeInternal, "encode signed transaction", err)
	}
	var out near.FinalExecutionOutcome
	if err := c.call(ctx, c.http.WithoutRetries(), "broadcast_tx_commit", []string{encoded}, &out); err != nil {
		return near.FinalExecutionOutcome{}, withCode("failed to broadcast transaction", err)
	}
	return out, nil
}

func wrapQuery(kind string, err error) error {
	return withCode("failed to fetch query for "+kind, err)
}

func withCode(message string, err error) error {
	return clierr.Wrap(clierr.CodeUnavailable, message, err)
}

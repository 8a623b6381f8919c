package quicker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConnected is returned when the host bridge is unreachable or not
// configured.
var ErrNotConnected = errors.New("quicker bridge not connected")

const bridgeTimeout = 2 * time.Minute

// BridgeClient reaches the host runtime over its local HTTP bridge. Each
// subprogram call is one POST of {"subprogram": name, "params": {...}}; the
// response body is returned raw for NormalizeResult to untangle.
type BridgeClient struct {
	baseURL string
	client  *http.Client
}

func NewBridgeClient(baseURL string) *BridgeClient {
	return &BridgeClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: bridgeTimeout},
	}
}

type bridgeRequest struct {
	Subprogram string         `json:"subprogram"`
	Params     map[string]any `json:"params"`
}

func (b *BridgeClient) CallSubprogram(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	if b.baseURL == "" {
		return nil, ErrNotConnected
	}
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(bridgeRequest{Subprogram: name, Params: params})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/subprogram", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("subprogram %s: %w", name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("subprogram %s: read response: %w", name, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("subprogram %s: bridge error (status %d): %s", name, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client fetches browse hierarchies from registered adapter base URLs.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// FetchTree retrieves the full hierarchy of one adapter: thing nodes,
// sources, and sinks.
func (c *Client) FetchTree(ctx context.Context, adapter Adapter) (*Tree, error) {
	tree := &Tree{}

	var structure struct {
		ThingNodes []ThingNode `json:"thingNodes"`
	}

	if err := c.fetch(ctx, adapter, "/structure", &structure); err != nil {
		return nil, err
	}

	tree.ThingNodes = structure.ThingNodes

	var sources struct {
		Sources []DataSource `json:"sources"`
	}

	if err := c.fetch(ctx, adapter, "/sources", &sources); err != nil {
		return nil, err
	}

	tree.Sources = sources.Sources

	var sinks struct {
		Sinks []DataSink `json:"sinks"`
	}

	if err := c.fetch(ctx, adapter, "/sinks", &sinks); err != nil {
		return nil, err
	}

	tree.Sinks = sinks.Sinks

	return tree, nil
}

func (c *Client) fetch(ctx context.Context, adapter Adapter, path string, out any) error {
	url := strings.TrimSuffix(adapter.URL, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("adapter %s unreachable: %w", adapter.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("adapter %s returned status %d for %s", adapter.ID, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("adapter %s returned invalid json for %s: %w", adapter.ID, path, err)
	}

	return nil
}

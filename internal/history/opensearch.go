package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenSearchSink indexes each event as a document under a fixed index,
// talking to the plain REST API so no OpenSearch client library is needed.
// Documents land at <endpoint>/<index>/_doc.
type OpenSearchSink struct {
	httpc    *http.Client
	endpoint string
	index    string
}

func NewOpenSearchSink(endpoint, index string) *OpenSearchSink {
	return &OpenSearchSink{
		httpc:    &http.Client{Timeout: 5 * time.Second},
		endpoint: strings.TrimRight(endpoint, "/"),
		index:    index,
	}
}

func (s *OpenSearchSink) Send(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	url := s.endpoint + "/" + s.index + "/_doc"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("index event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("index event: opensearch returned %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op; the sink holds no connection state.
func (s *OpenSearchSink) Close() error { return nil }

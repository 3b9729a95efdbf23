// Package analysis holds the adapters behind the AnalysisProvider port: an
// HTTP client for the hosted model endpoint and a deterministic stub for
// local runs. Prompt wording lives server-side; this package only speaks the
// {sub_score, data} contract.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"venturelens/internal/registry"
	"venturelens/internal/report"
)

// HTTPProvider calls the analysis endpoint once per dimension. Transient
// failures (network, 5xx) are retried a bounded number of times; anything
// else surfaces so the worker can treat the dimension as missing.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	DimensionID string          `json:"dimension_id"`
	Diagram     string          `json:"diagram"`
	Context     json.RawMessage `json:"context,omitempty"`
}

type analyzeResponse struct {
	SubScore *float64        `json:"sub_score"`
	Data     json.RawMessage `json:"data"`
}

func (p *HTTPProvider) Analyze(ctx context.Context, dim registry.DimensionDefinition, runContext json.RawMessage) (report.DimensionResult, error) {
	body, err := json.Marshal(analyzeRequest{
		DimensionID: dim.ID,
		Diagram:     string(dim.Diagram),
		Context:     runContext,
	})
	if err != nil {
		return report.DimensionResult{}, err
	}

	var out analyzeResponse
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(fmt.Errorf("analysis endpoint returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("analysis endpoint returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&out)
	})
	if err != nil {
		return report.DimensionResult{}, fmt.Errorf("analyze %s: %w", dim.ID, err)
	}
	if out.SubScore == nil {
		return report.DimensionResult{}, fmt.Errorf("analyze %s: response missing sub_score", dim.ID)
	}
	return report.DimensionResult{DimensionID: dim.ID, SubScore: *out.SubScore, Data: out.Data}, nil
}

// StubProvider produces deterministic scores and minimal diagram-valid data.
// Used for local development and the synchronous wait path in tests.
type StubProvider struct{}

func (StubProvider) Analyze(_ context.Context, dim registry.DimensionDefinition, runContext json.RawMessage) (report.DimensionResult, error) {
	score := float64(35 + stubHash(dim.ID, runContext)%61)
	return report.DimensionResult{
		DimensionID: dim.ID,
		SubScore:    score,
		Data:        stubData(dim),
	}, nil
}

func stubHash(id string, ctx json.RawMessage) int {
	h := 17
	for _, b := range []byte(id) {
		h = h*31 + int(b)
	}
	for _, b := range ctx {
		h = h*31 + int(b)
	}
	if h < 0 {
		h = -h
	}
	return h
}

func stubData(dim registry.DimensionDefinition) json.RawMessage {
	switch dim.Diagram {
	case registry.DiagramPyramid:
		return json.RawMessage(`{"tiers":[{"label":"Critical","value":20},{"label":"Painful","value":35},{"label":"Mild","value":45}]}`)
	case registry.DiagramFunnel:
		return json.RawMessage(`{"stages":[{"label":"Aware","value":1000},{"label":"Engaged","value":200},{"label":"Converted","value":40}]}`)
	case registry.DiagramMatrix:
		if dim.Role == registry.RoleModifier {
			return json.RawMessage(`{"x_axis":"Likelihood","y_axis":"Impact","points":[{"label":"Execution risk","quadrant":2}],"items":[{"title":"Execution risk","severity":"high","note":"stub assessment"}]}`)
		}
		return json.RawMessage(`{"x_axis":"Price","y_axis":"Focus","points":[{"label":"You","quadrant":1},{"label":"Incumbent","quadrant":3}]}`)
	case registry.DiagramCapability:
		return json.RawMessage(`{"groups":[{"label":"Core","items":[{"label":"Prototype","level":55}]}]}`)
	case registry.DiagramTimeline:
		return json.RawMessage(`{"milestones":[{"label":"Beta","at":"Q1"},{"label":"Launch","at":"Q3"}]}`)
	case registry.DiagramHeatGrid:
		return json.RawMessage(`{"rows":["SMB","Enterprise"],"cols":["Domestic","Global"],"cells":[{"row":"SMB","col":"Domestic","intensity":0.8}]}`)
	default:
		return nil
	}
}

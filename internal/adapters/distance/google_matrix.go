package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"warehouse-route-service/internal/platform/metrics"
	"warehouse-route-service/internal/platform/obs"
	"warehouse-route-service/internal/ports"

	"golang.org/x/time/rate"
)

const (
	DefaultGoogleMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"
	// DefaultMaxElements is the per-request element limit of the matrix API.
	DefaultMaxElements = 100
)

// GoogleConfig tunes the matrix client. Zero values select the defaults.
type GoogleConfig struct {
	BaseURL           string
	MaxElements       int
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxAttempts       int
	RetryBackoff      time.Duration
	// Now stamps departure_time. Defaults to time.Now.
	Now func() time.Time
}

// GoogleMatrixProvider implements ports.MatrixProvider on the Google Distance
// Matrix API.
//
// Location sets larger than the element limit are split into square blocks
// of origins x destinations and stitched back together. Requests are
// throttled by a shared limiter and retried on transient failures.
// The provider is safe for concurrent use.
type GoogleMatrixProvider struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	chunkSize   int
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

func NewGoogleMatrixProvider(apiKey string, cfg GoogleConfig) (*GoogleMatrixProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google api key is empty")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGoogleMatrixURL
	}
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = DefaultMaxElements
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &GoogleMatrixProvider{
		session:     &http.Client{Timeout: cfg.Timeout},
		apiKey:      apiKey,
		baseURL:     cfg.BaseURL,
		chunkSize:   max(1, int(math.Sqrt(float64(cfg.MaxElements)))),
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
		now:         cfg.Now,
	}, nil
}

type matrixValue struct {
	Value int64 `json:"value"`
}

type matrixElement struct {
	Status   string      `json:"status"`
	Duration matrixValue `json:"duration"`
	Distance matrixValue `json:"distance"`
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

// GetMatrix returns the N x N travel-time matrix in seconds for locations.
// groupKey is only used for logging; caching is layered on by CachedProvider.
func (g *GoogleMatrixProvider) GetMatrix(
	ctx context.Context,
	locations []string,
	groupKey string,
) (_ [][]int64, err error) {
	defer obs.Time(ctx, "google.GetMatrix")(&err)

	if len(locations) == 0 {
		return nil, &ports.DistanceProviderError{Reason: "no locations"}
	}
	for i, l := range locations {
		if strings.TrimSpace(l) == "" {
			return nil, &ports.DistanceProviderError{Reason: fmt.Sprintf("location %d is empty", i)}
		}
	}

	n := len(locations)
	full := make([][]int64, n)
	for i := range full {
		full[i] = make([]int64, n)
	}

	chunks := chunkRanges(n, g.chunkSize)
	for _, oc := range chunks {
		for _, dc := range chunks {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, &ports.DistanceProviderError{Reason: "throttle wait", Err: err}
			}

			block, err := g.fetchBlock(ctx, locations[oc[0]:oc[1]], locations[dc[0]:dc[1]])
			if err != nil {
				metrics.MatrixRequests.WithLabelValues("error").Inc()
				return nil, &ports.DistanceProviderError{
					Reason: fmt.Sprintf("group %q block origins[%d:%d] destinations[%d:%d]", groupKey, oc[0], oc[1], dc[0], dc[1]),
					Err:    err,
				}
			}
			metrics.MatrixRequests.WithLabelValues("ok").Inc()

			for oi, row := range block {
				copy(full[oc[0]+oi][dc[0]:dc[1]], row)
			}
		}
	}

	return full, nil
}

// fetchBlock requests one origins x destinations block and checks every element.
func (g *GoogleMatrixProvider) fetchBlock(ctx context.Context, origins, destinations []string) ([][]int64, error) {
	q := url.Values{}
	q.Set("origins", strings.Join(origins, "|"))
	q.Set("destinations", strings.Join(destinations, "|"))
	q.Set("key", g.apiKey)
	q.Set("departure_time", strconv.FormatInt(g.now().Unix(), 10))
	q.Set("traffic_model", "best_guess")
	q.Set("units", "metric")
	q.Set("mode", "driving")
	endpoint := g.baseURL + "?" + q.Encode()

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		return g.newRequest(ctx, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if mr.Status != "OK" {
		if mr.ErrorMessage != "" {
			return nil, fmt.Errorf("status %s: %s", mr.Status, mr.ErrorMessage)
		}
		return nil, fmt.Errorf("status %s", mr.Status)
	}

	if len(mr.Rows) != len(origins) {
		return nil, fmt.Errorf("expected %d rows, got %d", len(origins), len(mr.Rows))
	}

	out := make([][]int64, len(origins))
	for oi, row := range mr.Rows {
		if len(row.Elements) != len(destinations) {
			return nil, fmt.Errorf("row %d: expected %d elements, got %d", oi, len(destinations), len(row.Elements))
		}
		out[oi] = make([]int64, len(destinations))
		for di, el := range row.Elements {
			if el.Status != "OK" {
				return nil, fmt.Errorf("element %s -> %s: status %s", origins[oi], destinations[di], el.Status)
			}
			out[oi][di] = el.Duration.Value
		}
	}

	return out, nil
}

// chunkRanges splits [0, n) into half-open ranges of at most size entries.
func chunkRanges(n, size int) [][2]int {
	out := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}

package oracle

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/beka-birhanu/gridnav/config"
	logger "github.com/beka-birhanu/gridnav/infrastruture/log"
	"github.com/beka-birhanu/gridnav/navigator"
)

const (
	defaultRemoteTimeout = 5 * time.Second

	healthPath  = "/health"
	predictPath = "/predict"
)

var (
	ErrEmptyPrediction = errors.New("model server returned neither actions nor scores")
)

// RemoteConfig holds the settings of a Remote oracle.
type RemoteConfig struct {
	URL     string        // Base URL of the model server
	Timeout time.Duration // Per request timeout
	Client  *http.Client  // Optional; a client with Timeout is created when nil
	Logger  *log.Logger
}

// PredictRequest is the body sent to the model server.
type PredictRequest struct {
	Belief [][]int8 `json:"belief"`
}

// PredictResponse is the model server's answer. Actions, when present, is taken as
// the ranking. Otherwise Scores holds one score per action (index 0 is action 1)
// and actions are ranked by descending score.
type PredictResponse struct {
	Actions []int     `json:"actions,omitempty"`
	Scores  []float64 `json:"scores,omitempty"`
}

// Remote asks an external model server for rankings over HTTP.
type Remote struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewRemote creates a Remote oracle and probes the server's health endpoint.
// It fails with navigator.ErrOracleUnavailable when the server cannot be reached,
// so a misconfigured model surfaces at start-up instead of on the first prediction.
func NewRemote(ctx context.Context, c RemoteConfig) (*Remote, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("%w: no model server URL", navigator.ErrOracleUnavailable)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	l := c.Logger
	if l == nil {
		l, _ = logger.New("ORACLE", config.ColorMagenta, os.Stdout)
	}

	r := &Remote{
		baseURL: strings.TrimRight(c.URL, "/"),
		client:  client,
		logger:  l,
	}

	if err := r.health(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", navigator.ErrOracleUnavailable, err)
	}

	logger.Info(r.logger, "model server ready at %s", r.baseURL)
	return r, nil
}

func (r *Remote) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+healthPath, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}

// Predict implements navigator.Oracle.
func (r *Remote) Predict(ctx context.Context, belief [][]int8) ([]navigator.Action, error) {
	body, err := json.Marshal(PredictRequest{Belief: belief})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Error(r.logger, "predict request: %s", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("model server returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var prediction PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("decoding prediction: %w", err)
	}

	return prediction.Ranking()
}

// Ranking converts the response into an action ranking.
func (p PredictResponse) Ranking() ([]navigator.Action, error) {
	if len(p.Actions) > 0 {
		ranked := make([]navigator.Action, len(p.Actions))
		for i, a := range p.Actions {
			ranked[i] = navigator.Action(a)
		}
		return ranked, navigator.ValidateRanking(ranked)
	}

	if len(p.Scores) == 0 {
		return nil, ErrEmptyPrediction
	}
	if len(p.Scores) != len(navigator.Actions) {
		return nil, fmt.Errorf("%w: got %d scores", navigator.ErrInvalidRanking, len(p.Scores))
	}

	ranked := slices.Clone(navigator.Actions)
	slices.SortStableFunc(ranked, func(a, b navigator.Action) int {
		return cmp.Compare(p.Scores[b-1], p.Scores[a-1])
	})
	return ranked, nil
}

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/neoforge-dev/synapse-sub010/internal/alert"
	"github.com/neoforge-dev/synapse-sub010/internal/metrics"
	"github.com/neoforge-dev/synapse-sub010/internal/models"
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *APIClient) doRequest(method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token := viper.GetString("token"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(respBody))
	}
	return respBody, nil
}

func (c *APIClient) Health() (*metrics.HealthSummary, error) {
	body, err := c.doRequest("GET", "/api/v1/health", nil)
	if err != nil {
		return nil, err
	}
	var summary metrics.HealthSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *APIClient) ActiveAlerts() ([]models.AlertRule, error) {
	body, err := c.doRequest("GET", "/api/v1/alerts/active", nil)
	if err != nil {
		return nil, err
	}
	var rules []models.AlertRule
	if err := json.Unmarshal(body, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *APIClient) AlertHistory(limit int) ([]models.AlertEvent, error) {
	body, err := c.doRequest("GET", fmt.Sprintf("/api/v1/alerts/history?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}
	var events []models.AlertEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *APIClient) Statistics() (*alert.Statistics, error) {
	body, err := c.doRequest("GET", "/api/v1/alerts/statistics", nil)
	if err != nil {
		return nil, err
	}
	var stats alert.Statistics
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *APIClient) ListRules() ([]models.AlertRule, error) {
	body, err := c.doRequest("GET", "/api/v1/rules", nil)
	if err != nil {
		return nil, err
	}
	var rules []models.AlertRule
	if err := json.Unmarshal(body, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *APIClient) CreateRule(spec alert.RuleSpec) error {
	_, err := c.doRequest("POST", "/api/v1/rules", spec)
	return err
}

func (c *APIClient) DeleteRule(name string) error {
	_, err := c.doRequest("DELETE", "/api/v1/rules/"+name, nil)
	return err
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/stats"
)

// Client represents an HTTP client for the dashboard API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 30*time.Second)
}

// NewClientWithTimeout creates a new API client with a custom request timeout
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// APIError represents an error from the API
type APIError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// SiteRequest is the body of site creation and update
type SiteRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Status  string `json:"status,omitempty"`
}

// ShipmentRequest is the body of shipment creation
type ShipmentRequest struct {
	SiteID       string `json:"siteId"`
	HandlerCount int64  `json:"handlerCount"`
	ShipmentDate string `json:"shipmentDate"`
}

// SiteDetail is a site with its statistics block
type SiteDetail struct {
	Site  database.Site         `json:"site"`
	Stats stats.SiteDetailStats `json:"stats"`
}

type shipmentList struct {
	Data []database.Shipment `json:"data"`
}

type loginResponse struct {
	Message string           `json:"message"`
	User    database.Profile `json:"user"`
}

// doRequest performs an HTTP request and handles errors
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()

		apiErr := APIError{Code: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return nil, &apiErr
	}

	return resp, nil
}

// getJSON performs a request and decodes the JSON response into dst
func (c *Client) getJSON(ctx context.Context, method, path string, body, dst any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// HealthCheck checks if the API server is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.getJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}

// ListSites returns the sites, optionally filtered by status
func (c *Client) ListSites(ctx context.Context, status string) ([]database.Site, error) {
	path := "/api/sites"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var sites []database.Site
	if err := c.getJSON(ctx, http.MethodGet, path, nil, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// GetSite returns a site with its statistics
func (c *Client) GetSite(ctx context.Context, id string) (*SiteDetail, error) {
	var detail SiteDetail
	if err := c.getJSON(ctx, http.MethodGet, "/api/sites/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateSite creates a new site
func (c *Client) CreateSite(ctx context.Context, req *SiteRequest) (*database.Site, error) {
	var site database.Site
	if err := c.getJSON(ctx, http.MethodPost, "/api/sites", req, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// UpdateSite replaces the editable fields of a site
func (c *Client) UpdateSite(ctx context.Context, id string, req *SiteRequest) (*database.Site, error) {
	var site database.Site
	if err := c.getJSON(ctx, http.MethodPut, "/api/sites/"+url.PathEscape(id), req, &site); err != nil {
		return nil, err
	}
	site.ID = id
	return &site, nil
}

// SetSiteStatus changes the status of a site
func (c *Client) SetSiteStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.getJSON(ctx, http.MethodPost, "/api/sites/"+url.PathEscape(id)+"/status", body, nil)
}

// DeleteSite deletes a site and its shipments
func (c *Client) DeleteSite(ctx context.Context, id string) error {
	return c.getJSON(ctx, http.MethodDelete, "/api/sites/"+url.PathEscape(id), nil, nil)
}

// ListShipments returns every shipment, or only those of siteID when set
func (c *Client) ListShipments(ctx context.Context, siteID string) ([]database.Shipment, error) {
	path := "/api/shipments"
	if siteID != "" {
		path = "/api/sites/" + url.PathEscape(siteID) + "/shipments"
	}
	var list shipmentList
	if err := c.getJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CreateShipment records a new shipment
func (c *Client) CreateShipment(ctx context.Context, req *ShipmentRequest) (*database.Shipment, error) {
	var shipment database.Shipment
	if err := c.getJSON(ctx, http.MethodPost, "/api/shipments", req, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// DeleteShipment deletes a shipment
func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	return c.getJSON(ctx, http.MethodDelete, "/api/shipments/"+url.PathEscape(id), nil, nil)
}

// Login checks credentials and returns the user's profile
func (c *Client) Login(ctx context.Context, email, password string) (*database.Profile, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.getJSON(ctx, http.MethodPost, "/api/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Dashboard returns the global overview
func (c *Client) Dashboard(ctx context.Context) (*stats.DashboardStats, error) {
	var dashboard stats.DashboardStats
	if err := c.getJSON(ctx, http.MethodGet, "/api/stats/dashboard", nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

// Detailed returns the per-site statistics
func (c *Client) Detailed(ctx context.Context) (*stats.DetailedStats, error) {
	var detailed stats.DetailedStats
	if err := c.getJSON(ctx, http.MethodGet, "/api/stats/detailed", nil, &detailed); err != nil {
		return nil, err
	}
	return &detailed, nil
}

// ExportCSV streams the server-side CSV export into w
func (c *Client) ExportCSV(ctx context.Context, w io.Writer) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/stats/detailed/export", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	return nil
}

// ReportURL is the address of the printable statistics page
func (c *Client) ReportURL() string {
	return c.baseURL + "/reports/statistics"
}

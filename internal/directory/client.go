package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carebridge/interpreter-booking/pkg/logging"
)

const defaultTimeout = 30 * time.Second

// ErrPatientNotFound is returned when the directory has no patient for the id.
var ErrPatientNotFound = errors.New("directory: patient not found")

// Client talks to a FHIR R4 patient directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a directory client for the given FHIR base URL.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetPatient fetches a single patient resource by FHIR id.
func (c *Client) GetPatient(ctx context.Context, fhirID string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Patient/"+url.PathEscape(fhirID), nil)
	if err != nil {
		return nil, fmt.Errorf("directory: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: get patient %s: %w", fhirID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, ErrPatientNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("directory: get patient %s: unexpected status %d", fhirID, resp.StatusCode)
	}

	var resource Resource
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return nil, fmt.Errorf("directory: decode patient %s: %w", fhirID, err)
	}
	return &resource, nil
}

// SearchPatients searches the directory with optional name/language filters.
func (c *Client) SearchPatients(ctx context.Context, name, language string, count int) ([]Resource, error) {
	if count <= 0 {
		count = 20
	}
	params := url.Values{}
	params.Set("_count", strconv.Itoa(count))
	if name != "" {
		params.Set("name", name)
	}
	if language != "" {
		params.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/Patient?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("directory: build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: search patients: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("directory: search patients: unexpected status %d", resp.StatusCode)
	}

	var bundle Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("directory: decode search bundle: %w", err)
	}

	resources := make([]Resource, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		resources = append(resources, entry.Resource)
	}
	return resources, nil
}

// CreatePatient creates a patient resource in the directory and returns it.
func (c *Client) CreatePatient(ctx context.Context, demo Demographics) (*Resource, error) {
	resource := buildResource(demo)

	body, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("directory: encode patient: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Patient", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("directory: build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/fhir+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: create patient: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("directory create rejected", "status", resp.StatusCode, "body", string(detail))
		return nil, fmt.Errorf("directory: create patient: unexpected status %d", resp.StatusCode)
	}

	var created Resource
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("directory: decode created patient: %w", err)
	}
	return &created, nil
}

// buildResource maps flat demographics onto a FHIR Patient resource.
func buildResource(demo Demographics) Resource {
	resource := Resource{
		ResourceType: "Patient",
		Gender:       demo.Gender,
		BirthDate:    demo.BirthDate,
	}
	if resource.Gender == "" {
		resource.Gender = "unknown"
	}

	parts := strings.Fields(demo.Name)
	name := HumanName{Use: "official", Text: demo.Name}
	if len(parts) > 0 {
		name.Family = parts[len(parts)-1]
		name.Given = parts[:len(parts)-1]
	}
	resource.Name = []HumanName{name}

	if demo.PhoneNumber != "" {
		resource.Telecom = append(resource.Telecom, ContactPoint{System: "phone", Value: demo.PhoneNumber, Use: "mobile"})
	}
	if demo.Email != "" {
		resource.Telecom = append(resource.Telecom, ContactPoint{System: "email", Value: demo.Email})
	}
	if demo.Address != "" {
		resource.Address = []Address{{Use: "home", Type: "physical", Text: demo.Address}}
	}
	if demo.Language != "" {
		resource.Communication = []Communication{{
			Language: CodeableConcept{
				Coding: []Coding{{System: "urn:ietf:bcp:47", Display: demo.Language}},
				Text:   demo.Language,
			},
			Preferred: true,
		}}
	}
	return resource
}

// Package api wraps the three Eagle endpoints this program talks to:
// the persona archive, the team list, and the message submission call.
// Fetch operations surface typed errors; Publish never fails. Every
// outcome, including transport errors, comes back as a PublishResult so
// the caller can keep going with the rest of a batch.
package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL points at the Eagle API.
const DefaultBaseURL = "https://dev-api.conducttr.com/v1.1/eagle"

const (
	defaultTimeout = 30 * time.Second

	// errorDetailLimit caps how much of an error body is kept on a
	// failed publish.
	errorDetailLimit = 300
)

// Client issues bearer-authenticated calls against one Eagle deployment.
// It is safe for use from a single session flow; it holds no mutable state.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes Client construction.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, mainly so tests
// can shorten timeouts.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a Client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPersonas retrieves the persona list. The endpoint hands back a
// presigned URL for a zip archive holding a single JSON file; the payload
// inside is either a bare array of persona records or an object whose
// first array-valued entry is the record list. Anything else degrades to
// an empty list rather than an error.
func (c *Client) FetchPersonas(ctx context.Context, credential string) ([]Persona, error) {
	resp, err := c.get(ctx, "/personas", credential)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var pointer struct {
		PresignedURL string `json:"presigned_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pointer); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("personas pointer: %v", err)}
	}
	if pointer.PresignedURL == "" {
		return nil, &FormatError{Reason: "personas response carried no presigned_url"}
	}

	archive, err := c.download(ctx, pointer.PresignedURL)
	if err != nil {
		return nil, err
	}
	payload, err := archiveJSON(archive)
	if err != nil {
		return nil, err
	}
	return personasFromPayload(payload), nil
}

// FetchTeams retrieves the team list; the endpoint returns a bare array
// of {id, name} records.
func (c *Client) FetchTeams(ctx context.Context, credential string) ([]Team, error) {
	resp, err := c.get(ctx, "/teams", credential)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var records []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("api: decode teams: %w", err)
	}
	teams := make([]Team, 0, len(records))
	for _, r := range records {
		teams = append(teams, Team{ID: r.ID, RawName: r.Name})
	}
	return teams, nil
}

// Publish submits one message. It never returns an error: a non-2xx
// response or a transport failure is reported through the result so a
// batch can proceed to its remaining teams.
func (c *Client) Publish(ctx context.Context, credential string, pr PublishRequest) PublishResult {
	result := PublishResult{TeamID: pr.TeamID}

	body, err := json.Marshal(pr)
	if err != nil {
		result.ErrorDetail = err.Error()
		return result
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		result.ErrorDetail = err.Error()
		return result
	}
	c.authorize(req, credential)

	resp, err := c.http.Do(req)
	if err != nil {
		result.ErrorDetail = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if ok(resp.StatusCode) {
		result.OK = true
		return result
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, errorDetailLimit))
	result.ErrorDetail = string(detail)
	return result
}

func (c *Client) authorize(req *http.Request, credential string) {
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) get(ctx context.Context, path, credential string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req, credential)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if !ok(resp.StatusCode) {
		resp.Body.Close()
		return nil, &AuthError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// download fetches the presigned archive. The URL is self-authorizing, so
// no bearer header is attached.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	if !ok(resp.StatusCode) {
		return nil, &AuthError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func ok(status int) bool { return status >= 200 && status <= 299 }

// archiveJSON returns the contents of the first .json member of the zip.
func archiveJSON(archive []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("persona archive: %v", err)}
	}
	for _, file := range reader.File {
		if !strings.HasSuffix(file.Name, ".json") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("persona archive member %s: %v", file.Name, err)}
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("persona archive member %s: %v", file.Name, err)}
		}
		return data, nil
	}
	return nil, &FormatError{Reason: "persona archive holds no JSON file"}
}

// personaRecord is the wire shape inside the archive.
type personaRecord struct {
	SystemInfo struct {
		Name           string `json:"name"`
		Handle         string `json:"handle"`
		Hash           string `json:"hash"`
		IsOrganisation bool   `json:"is_organisation"`
	} `json:"system_info"`
}

// personasFromPayload extracts persona records from the archive payload.
// The payload is usually a bare array; some deployments wrap it in an
// object, in which case the first array-valued entry in document order is
// taken. That fallback is an observed upstream habit, not a documented
// contract, so no shape match means an empty list rather than an error.
func personasFromPayload(data []byte) []Persona {
	var records []personaRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return flattenPersonas(records)
	}

	// Walk object entries with a token decoder; a plain map would lose
	// document order.
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil
		}
		return flattenPersonas(records)
	}
	return nil
}

func flattenPersonas(records []personaRecord) []Persona {
	personas := make([]Persona, 0, len(records))
	for _, r := range records {
		personas = append(personas, Persona{
			Name:           r.SystemInfo.Name,
			Handle:         r.SystemInfo.Handle,
			Hash:           r.SystemInfo.Hash,
			IsOrganisation: r.SystemInfo.IsOrganisation,
		})
	}
	return personas
}

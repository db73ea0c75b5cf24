// Package github provides the GitHub GraphQL operations needed to commit files to a branch.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v72/github"
)

const defaultAPIURL = "https://api.github.com/"

// Client executes GraphQL operations using the transport, authentication, and base URL of a go-github client
type Client struct {
	rest *gh.Client
}

// NewClient creates a GraphQL client on top of a go-github client
func NewClient(rest *gh.Client) *Client {
	return &Client{rest: rest}
}

// NewRESTClient creates a go-github client for the given API URL. An empty URL or the public API URL selects
// github.com; anything else is treated as a GitHub Enterprise Server API URL
func NewRESTClient(httpClient *http.Client, apiURL string) (*gh.Client, error) {
	client := gh.NewClient(httpClient)
	if apiURL == "" || strings.TrimSuffix(apiURL, "/")+"/" == defaultAPIURL {
		return client, nil
	}

	client, err := client.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure enterprise URL %q: %w", apiURL, err)
	}
	return client, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors"`
}

// GraphQLErrorEntry is one entry of the errors array of a GraphQL response
type GraphQLErrorEntry struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQLError is returned when a GraphQL response carries errors. The API reports most failures this way, with
// HTTP status 200
type GraphQLError struct {
	Errors []GraphQLErrorEntry
}

func (e *GraphQLError) Error() string {
	messages := make([]string, len(e.Errors))
	for i, entry := range e.Errors {
		messages[i] = entry.Message
	}
	return strings.Join(messages, "; ")
}

// HasType returns true if any entry has the given error type, e.g. "NOT_FOUND"
func (e *GraphQLError) HasType(typ string) bool {
	for _, entry := range e.Errors {
		if entry.Type == typ {
			return true
		}
	}
	return false
}

// Do executes a query or mutation and decodes the "data" member of the response into data
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, data any) error {
	req, err := c.rest.NewRequest(http.MethodPost, graphqlPath(c.rest), &graphqlRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}

	var resp graphqlResponse
	if _, err := c.rest.Do(ctx, req, &resp); err != nil {
		return fmt.Errorf("failed to execute GraphQL request: %w", err)
	}

	if len(resp.Errors) > 0 {
		return &GraphQLError{Errors: resp.Errors}
	}

	if data == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, data); err != nil {
		return fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	return nil
}

// graphqlPath returns the GraphQL endpoint relative to the REST base URL. GitHub Enterprise Server serves REST
// under /api/v3/ and GraphQL under /api/graphql
func graphqlPath(client *gh.Client) string {
	if strings.HasSuffix(client.BaseURL.Path, "/api/v3/") {
		return "../graphql"
	}
	return "graphql"
}

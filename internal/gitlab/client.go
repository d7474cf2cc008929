// Package gitlab commits rendered artifacts to a GitLab repository.
package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"modelcatalog/internal/transport"
)

// ActionKind is a file-level change in a commit.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// Valid reports whether k is a supported kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Action is one entry of the commit "actions" list.
type Action struct {
	Action   ActionKind `json:"action"`
	FilePath string     `json:"file_path"`
	Content  string     `json:"content"`
}

// MarshalJSON always writes content, even when empty, except for a delete that
// carries none.
func (a Action) MarshalJSON() ([]byte, error) {
	type wire struct {
		Action   ActionKind `json:"action"`
		FilePath string     `json:"file_path"`
		Content  *string    `json:"content,omitempty"`
	}
	w := wire{Action: a.Action, FilePath: a.FilePath}
	if a.Action != ActionDelete || a.Content != "" {
		w.Content = &a.Content
	}
	return json.Marshal(w)
}

type commitRequest struct {
	Branch        string   `json:"branch"`
	CommitMessage string   `json:"commit_message"`
	Actions       []Action `json:"actions"`
}

// Config locates the GitLab instance.
type Config struct {
	BaseURI     string
	AccessToken string
	Timeout     time.Duration
}

// Client is a GitLab commits API client.
type Client struct {
	tc *transport.Client
}

// New constructs a Client.
func New(cfg Config, log zerolog.Logger) *Client {
	tc := transport.New(transport.Target{
		Name:    "gitlab",
		BaseURI: cfg.BaseURI,
		Headers: map[string]string{"PRIVATE-TOKEN": cfg.AccessToken},
		Timeout: cfg.Timeout,
	}, func(e *transport.Error) error { return &CommitError{Cause: e} }, transport.WithLogger(log))
	return &Client{tc: tc}
}

// Commit submits all actions to branch as a single commit. Atomicity is provided
// by GitLab; nothing is retried or rolled back here.
func (c *Client) Commit(ctx context.Context, projectID, branch, message string, actions []Action) error {
	if projectID == "" || branch == "" {
		return fmt.Errorf("gitlab commit: project id and branch are required")
	}
	if len(actions) == 0 {
		return fmt.Errorf("gitlab commit: no actions")
	}
	for i, a := range actions {
		if !a.Action.Valid() {
			return fmt.Errorf("gitlab commit: action %d: unsupported kind %q", i, a.Action)
		}
		if a.FilePath == "" {
			return fmt.Errorf("gitlab commit: action %d: empty file path", i)
		}
	}
	path := "/api/v4/projects/" + url.PathEscape(projectID) + "/repository/commits"
	_, err := c.tc.Do(ctx, http.MethodPost, path, nil, commitRequest{
		Branch:        branch,
		CommitMessage: message,
		Actions:       actions,
	})
	return err
}

// CommitError is returned when GitLab rejects or never answers a commit request.
type CommitError struct {
	Cause *transport.Error
}

func (e *CommitError) Error() string { return "commit failed: " + e.Cause.Error() }

func (e *CommitError) Unwrap() error { return e.Cause }

package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/rpc/releases"
)

func (c *Client) repoURL(repo model.Repository, parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}

	return fmt.Sprintf("%s/repos/%s/%s/%s", c.baseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), strings.Join(escaped, "/"))
}

// GetReleaseByTag looks up the release published under tag.
func (c *Client) GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*releases.ReleaseReply, error) {
	var reply releases.ReleaseReply
	_, err := c.doJSON(ctx, "getRelease", http.MethodGet, c.repoURL(repo, "releases", "tags", tag), nil, &reply)
	if err != nil {
		return nil, err
	}

	return &reply, nil
}

// CreateRelease creates a release under tag.
func (c *Client) CreateRelease(ctx context.Context, repo model.Repository, tag string) (*releases.ReleaseReply, error) {
	var reply releases.ReleaseReply
	args := releases.CreateReleaseArgs{TagName: tag}

	_, err := c.doJSON(ctx, "createRelease", http.MethodPost, c.repoURL(repo, "releases"), args, &reply)
	if err != nil {
		return nil, err
	}

	return &reply, nil
}

// PutContents commits content at path. The release API refuses to create
// releases in a repository without commits, this gives it one.
func (c *Client) PutContents(ctx context.Context, repo model.Repository, path, message string, content []byte) error {
	args := releases.PutContentsArgs{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	_, err := c.doJSON(ctx, "putContents", http.MethodPut, c.repoURL(repo, append([]string{"contents"}, segments...)...), args, nil)
	return err
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/rpc/releases"
)

// assetsPageSize is the largest page the listing endpoint serves.
const assetsPageSize = 100

// ListAssets returns every asset of a release, following pagination.
func (c *Client) ListAssets(ctx context.Context, assetsURL *url.URL) ([]releases.AssetReply, error) {
	first := *assetsURL
	q := first.Query()
	q.Set("per_page", strconv.Itoa(assetsPageSize))
	first.RawQuery = q.Encode()

	assets := make([]releases.AssetReply, 0)
	next := first.String()

	for next != "" {
		var page []releases.AssetReply
		header, err := c.doJSON(ctx, "listAssets", http.MethodGet, next, nil, &page)
		if err != nil {
			return nil, err
		}

		assets = append(assets, page...)
		next = parseLinkNext(header.Get("Link"))
	}

	return assets, nil
}

// UploadAsset attaches data to the release behind uploadURL as an asset named name.
func (c *Client) UploadAsset(ctx context.Context, uploadURL *url.URL, name string, data []byte) (*releases.AssetReply, error) {
	target := *uploadURL
	target.RawQuery = url.Values{"name": []string{name}}.Encode()

	req, err := c.newRequest(ctx, http.MethodPost, target.String(), bytes.NewReader(data))
	if err != nil {
		return nil, errs.Transport("uploadAsset", err)
	}

	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", binaryMediaType)
	req.Header.Set("Accept", jsonMediaType)

	resp, err := c.send("uploadAsset", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reply releases.AssetReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, errs.Decode("uploadAsset", err)
	}

	return &reply, nil
}

// DownloadAsset fetches the raw bytes behind an asset download URL.
func (c *Client) DownloadAsset(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, errs.Transport("downloadAsset", err)
	}

	req.Header.Set("Accept", binaryMediaType)

	resp, err := c.send("downloadAsset", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transport("downloadAsset", err)
	}

	return data, nil
}

// parseLinkNext extracts the rel="next" target of an RFC 8288 Link header.
func parseLinkNext(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(strings.TrimSpace(part), ";")
		if len(segments) < 2 {
			continue
		}

		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		for _, param := range segments[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target[1 : len(target)-1]
			}
		}
	}

	return ""
}

// Package releases holds the JSON shapes exchanged with the release API.
package releases

// ReleaseReply is returned by release lookup and creation. Either URL may
// be missing from a partial response.
type ReleaseReply struct {
	ID        int64   `json:"id,omitempty"`
	TagName   string  `json:"tag_name,omitempty"`
	UploadURL *string `json:"upload_url"`
	AssetsURL *string `json:"assets_url"`
}

// Complete reports whether both endpoints are present.
func (r *ReleaseReply) Complete() bool {
	return r != nil && r.UploadURL != nil && *r.UploadURL != "" && r.AssetsURL != nil && *r.AssetsURL != ""
}

type CreateReleaseArgs struct {
	TagName string `json:"tag_name"`
}

type AssetReply struct {
	ID                 int64  `json:"id,omitempty"`
	Name               string `json:"name"`
	Size               int64  `json:"size,omitempty"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// PutContentsArgs creates a file through the contents API. Content is
// base64 encoded; SHA is only required when replacing an existing file.
type PutContentsArgs struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type ContentReply struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

type PutContentsReply struct {
	Content *ContentReply `json:"content"`
}

type ErrorReply struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url,omitempty"`
}

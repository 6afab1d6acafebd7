package model

import "net/url"

// Release is the pair of endpoints of a release container. It is resolved
// fresh for every upload and never cached.
type Release struct {
	AssetsURL *url.URL
	UploadURL *url.URL
}

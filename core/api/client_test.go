package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyropy/relstore/core/errs"
	"github.com/pyropy/relstore/core/model"
	"github.com/pyropy/relstore/rpc/releases"
)

func newTestClient(t *testing.T, server *httptest.Server, token string) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL:    server.URL + "/",
		Token:      token,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	return client
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

var testRepo = model.Repository{Owner: "owner", Name: "repo"}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)

	assert.Contains(t, client.String(), "baseURL: "+DefaultBaseURL+",")
	assert.Contains(t, client.String(), "userAgent: "+DefaultUserAgent+",")
}

func TestNewClient_MalformedHeader(t *testing.T) {
	_, err := NewClient(Config{Token: "abc\r\nX-Injected: 1"})
	assert.Error(t, err)

	_, err = NewClient(Config{UserAgent: "agent\n"})
	assert.Error(t, err)
}

func TestClient_TokenIsRedacted(t *testing.T) {
	client, err := NewClient(Config{Token: "ghp_supersecret"})
	require.NoError(t, err)

	for _, format := range []string{"%v", "%+v", "%#v", "%s"} {
		assert.NotContains(t, fmt.Sprintf(format, client), "ghp_supersecret", format)
	}

	b, err := json.Marshal(struct{ Token credential }{client.token})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "ghp_supersecret")
}

func TestClient_Headers(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantAuth string
	}{
		{name: "with token", token: "secret", wantAuth: "Bearer secret"},
		{name: "anonymous", token: "", wantAuth: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantAuth, r.Header.Get("Authorization"))
				assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
				assert.Equal(t, "/repos/owner/repo/releases/tags/files", r.URL.Path)
				_, _ = io.WriteString(w, `{"upload_url":"u","assets_url":"a"}`)
			}))
			defer server.Close()

			reply, err := newTestClient(t, server, tt.token).GetReleaseByTag(context.Background(), testRepo, "files")
			require.NoError(t, err)
			assert.True(t, reply.Complete())
		})
	}
}

func TestClient_CreateRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/owner/repo/releases", r.URL.Path)

		var args releases.CreateReleaseArgs
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "files", args.TagName)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"assets_url":"a"}`)
	}))
	defer server.Close()

	reply, err := newTestClient(t, server, "t").CreateRelease(context.Background(), testRepo, "files")
	require.NoError(t, err)
	assert.False(t, reply.Complete())
}

func TestClient_PutContents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/owner/repo/contents/__no_empty_repo__", r.URL.Path)

		var args releases.PutContentsArgs
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "init", args.Message)
		assert.Equal(t, "", args.Content)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	err := newTestClient(t, server, "t").PutContents(context.Background(), testRepo, "__no_empty_repo__", "init", nil)
	require.NoError(t, err)
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not Found"}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server, "").GetReleaseByTag(context.Background(), testRepo, "files")
	require.Error(t, err)

	assert.ErrorIs(t, err, errs.ErrTransport)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnprocessable(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer server.Close()

	_, err := newTestClient(t, server, "").GetReleaseByTag(context.Background(), testRepo, "files")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(t, server, "")
	server.Close()

	_, err := client.DownloadAsset(context.Background(), server.URL+"/x-chunk0")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTransport)
}

func TestClient_ListAssetsPaginates(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		switch r.URL.Query().Get("page") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/assets?per_page=100&page=2>; rel="next", <%s/assets?per_page=100&page=2>; rel="last"`, server.URL, server.URL))
			_, _ = io.WriteString(w, `[{"name":"a-chunk0","browser_download_url":"https://dl/a-chunk0"}]`)
		case "2":
			_, _ = io.WriteString(w, `[{"name":"b-chunk0","browser_download_url":"https://dl/b-chunk0"}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	assets, err := newTestClient(t, server, "").ListAssets(context.Background(), mustURL(t, server.URL+"/assets"))
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "a-chunk0", assets[0].Name)
	assert.Equal(t, "b-chunk0", assets[1].Name)
}

func TestClient_UploadAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "abc-chunk0", r.URL.Query().Get("name"))
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		assert.Equal(t, int64(5), r.ContentLength)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "hello", string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"name":"abc-chunk0","browser_download_url":"https://dl/abc-chunk0"}`)
	}))
	defer server.Close()

	reply, err := newTestClient(t, server, "t").UploadAsset(context.Background(), mustURL(t, server.URL+"/upload"), "abc-chunk0", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "https://dl/abc-chunk0", reply.BrowserDownloadURL)
}

func TestClient_DownloadAsset(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Accept"))
		_, _ = io.WriteString(w, strings.Repeat("x", 10))
	}))
	defer server.Close()

	data, err := newTestClient(t, server, "").DownloadAsset(context.Background(), server.URL+"/abc-chunk0")
	require.NoError(t, err)
	assert.Len(t, data, 10)
	assert.Equal(t, int32(1), hits.Load())
}

func TestParseLinkNext(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: `<https://x/a?page=2>; rel="next"`, want: "https://x/a?page=2"},
		{header: `<https://x/a?page=1>; rel="prev", <https://x/a?page=3>; rel="next"`, want: "https://x/a?page=3"},
		{header: `<https://x/a?page=5>; rel="last"`, want: ""},
		{header: `garbage`, want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLinkNext(tt.header), tt.header)
	}
}

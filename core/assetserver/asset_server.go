// Package assetserver serves a local stand-in for the hosted release API:
// releases, asset upload, paginated asset listing and asset download.
package assetserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pyropy/relstore/lib/logger"
	"github.com/pyropy/relstore/rpc/releases"
)

var log, _ = logger.New("assetserver")

type AssetServer struct {
	*AssetService

	Cfg    *Config
	router *chi.Mux
}

func NewAssetServer(cfg *Config) (*AssetServer, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	assetService, err := NewAssetService(cfg.Root, cfg.CacheBytes, cfg.AutoInit)
	if err != nil {
		return nil, err
	}

	s := &AssetServer{
		AssetService: assetService,
		Cfg:          cfg,
	}
	s.router = s.routes()

	return s, nil
}

func (s *AssetServer) Handler() http.Handler {
	return s.router
}

func (s *AssetServer) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/repos/{owner}/{repo}", func(r chi.Router) {
		r.Get("/releases/tags/{tag}", s.getRelease)
		r.Get("/releases/{id}/assets", s.listAssets)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Post("/releases", s.createRelease)
			r.Post("/releases/{id}/assets", s.uploadAsset)
			r.Put("/contents/*", s.putContents)
		})
	})

	r.Get("/{owner}/{repo}/releases/download/{tag}/{asset}", s.downloadAsset)

	return r
}

func (s *AssetServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Cfg.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Cfg.Token {
			writeError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *AssetServer) publicURL(r *http.Request) string {
	if s.Cfg.PublicURL != "" {
		return s.Cfg.PublicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func (s *AssetServer) releaseReply(r *http.Request, rel Release) releases.ReleaseReply {
	assetsURL := fmt.Sprintf("%s/repos/%s/%s/releases/%d/assets", s.publicURL(r), url.PathEscape(rel.Owner), url.PathEscape(rel.Repo), rel.ID)
	uploadURL := assetsURL + "{?name,label}"

	return releases.ReleaseReply{
		ID:        rel.ID,
		TagName:   rel.Tag,
		UploadURL: &uploadURL,
		AssetsURL: &assetsURL,
	}
}

func (s *AssetServer) assetReply(r *http.Request, rel Release, a Asset) releases.AssetReply {
	return releases.AssetReply{
		ID:   a.ID,
		Name: a.Name,
		Size: a.Size,
		BrowserDownloadURL: fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", s.publicURL(r),
			url.PathEscape(rel.Owner), url.PathEscape(rel.Repo), url.PathEscape(rel.Tag), url.PathEscape(a.Name)),
	}
}

func (s *AssetServer) getRelease(w http.ResponseWriter, r *http.Request) {
	owner, repo, tag := chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), chi.URLParam(r, "tag")

	rel, err := s.GetRelease(owner, repo, tag)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.releaseReply(r, rel))
}

func (s *AssetServer) createRelease(w http.ResponseWriter, r *http.Request) {
	owner, repo := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")

	var args releases.CreateReleaseArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil || args.TagName == "" {
		writeError(w, http.StatusUnprocessableEntity, "tag_name is required")
		return
	}

	rel, err := s.CreateRelease(owner, repo, args.TagName)
	if err != nil {
		log.Infow("http", "event", "createRelease", "repo", repoKey(owner, repo), "tag", args.TagName, "err", err)
		writeServiceError(w, err)
		return
	}

	log.Infow("http", "event", "createRelease", "repo", repoKey(owner, repo), "tag", rel.Tag, "id", rel.ID)
	writeJSON(w, http.StatusCreated, s.releaseReply(r, rel))
}

func (s *AssetServer) putContents(w http.ResponseWriter, r *http.Request) {
	owner, repo, path := chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), chi.URLParam(r, "*")

	var args releases.PutContentsArgs
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil || args.Message == "" {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	if _, err := base64.StdEncoding.DecodeString(args.Content); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "content is not valid Base64")
		return
	}

	if err := s.PutContents(owner, repo, path); err != nil {
		writeServiceError(w, err)
		return
	}

	log.Infow("http", "event", "putContents", "repo", repoKey(owner, repo), "path", path)

	writeJSON(w, http.StatusCreated, releases.PutContentsReply{
		Content: &releases.ContentReply{Path: path},
	})
}

func (s *AssetServer) release(r *http.Request) (Release, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return Release{}, ErrReleaseNotFound
	}

	return s.GetReleaseByID(chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), id)
}

func (s *AssetServer) listAssets(w http.ResponseWriter, r *http.Request) {
	rel, err := s.release(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", s.Cfg.PageSize)
	if perPage > s.Cfg.PageSize {
		perPage = s.Cfg.PageSize
	}

	assets, more := s.ListAssets(rel.ID, page, perPage)

	if more {
		next := fmt.Sprintf("%s%s?page=%d&per_page=%d", s.publicURL(r), r.URL.EscapedPath(), page+1, perPage)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}

	replies := make([]releases.AssetReply, 0, len(assets))
	for _, a := range assets {
		replies = append(replies, s.assetReply(r, rel, a))
	}

	writeJSON(w, http.StatusOK, replies)
}

func (s *AssetServer) uploadAsset(w http.ResponseWriter, r *http.Request) {
	rel, err := s.release(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := r.URL.Query().Get("name")
	asset, err := s.UploadAsset(rel.ID, name, data)
	if err != nil {
		log.Infow("http", "event", "uploadAsset", "release", rel.ID, "name", name, "err", err)
		writeServiceError(w, err)
		return
	}

	log.Debugw("http", "event", "uploadAsset", "release", rel.ID, "name", name, "size", asset.Size)
	writeJSON(w, http.StatusCreated, s.assetReply(r, rel, asset))
}

func (s *AssetServer) downloadAsset(w http.ResponseWriter, r *http.Request) {
	owner, repo := chi.URLParam(r, "owner"), chi.URLParam(r, "repo")
	tag, name := chi.URLParam(r, "tag"), chi.URLParam(r, "asset")

	data, err := s.ReadAsset(owner, repo, tag, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}

	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorw("http", "error", "encoding response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, releases.ErrorReply{Message: message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReleaseNotFound), errors.Is(err, ErrAssetNotFound):
		writeError(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, ErrReleaseExists),
		errors.Is(err, ErrEmptyRepository),
		errors.Is(err, ErrContentExists),
		errors.Is(err, ErrAssetExists),
		errors.Is(err, ErrInvalidAssetName):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Errorw("http", "error", "internal error", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

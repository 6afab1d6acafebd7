package model

import (
	"net/url"
	"strings"

	"github.com/pyropy/relstore/core/errs"
)

const hostingDomain = "github.com"

type Repository struct {
	Owner string
	Name  string
}

// ParseRepository accepts "owner/name" or a hosting URL such as
// "https://github.com/owner/name".
func ParseRepository(repo string) (Repository, error) {
	repo = strings.TrimSpace(repo)

	if strings.Contains(repo, "://") || strings.HasPrefix(repo, hostingDomain+"/") {
		return parseRepositoryURL(repo)
	}

	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, errs.New("parseRepository", errs.ErrInvalidRepoFormat, nil)
	}

	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

func parseRepositoryURL(repo string) (Repository, error) {
	if !strings.Contains(repo, "://") {
		repo = "https://" + repo
	}

	u, err := url.Parse(repo)
	if err != nil {
		return Repository{}, errs.New("parseRepository", errs.ErrInvalidRepoFormat, err)
	}

	if u.Host == "" {
		return Repository{}, errs.New("parseRepository", errs.ErrInvalidRepoFormat, nil)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, errs.New("parseRepository", errs.ErrInvalidRepoFormat, nil)
	}

	return Repository{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

package source

import (
	"context"

	copmerrors "github.com/samhoang/copm/internal/errors"
	"github.com/samhoang/copm/internal/logger"
)

// FetchResult is a repository snapshot on disk
type FetchResult struct {
	Root      string // directory holding the repository contents
	Integrity Integrity
}

// Transport retrieves a repository snapshot into destDir
type Transport interface {
	// Type returns the transport identifier (e.g., "tarball", "git")
	Type() string

	// Fetch downloads owner/repo below destDir
	Fetch(ctx context.Context, owner, repo, destDir string) (*FetchResult, error)
}

// Fetcher tries the primary transport and falls back to the secondary
type Fetcher struct {
	Primary  Transport
	Fallback Transport
}

// NewFetcher creates a fetcher from a primary and an optional fallback transport
func NewFetcher(primary, fallback Transport) *Fetcher {
	return &Fetcher{Primary: primary, Fallback: fallback}
}

// Fetch retrieves owner/repo, returning ErrDownloadFailed when every transport fails
func (f *Fetcher) Fetch(ctx context.Context, owner, repo, destDir string) (*FetchResult, error) {
	log := logger.G(ctx).WithField("repo", owner+"/"+repo)

	res, err := f.Primary.Fetch(ctx, owner, repo, destDir)
	if err == nil {
		log.WithField("transport", f.Primary.Type()).Debug("fetched")
		return res, nil
	}
	if f.Fallback == nil {
		return nil, copmerrors.NewDownloadError(owner+"/"+repo, err)
	}

	if status := HTTPStatus(err); status != 0 {
		log = log.WithField("status", status)
	}
	log.WithError(err).Warnf("%s fetch failed, falling back to %s", f.Primary.Type(), f.Fallback.Type())

	res, err = f.Fallback.Fetch(ctx, owner, repo, destDir)
	if err != nil {
		return nil, copmerrors.NewDownloadError(owner+"/"+repo, err)
	}
	log.WithField("transport", f.Fallback.Type()).Debug("fetched")
	return res, nil
}

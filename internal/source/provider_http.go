package source

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/samhoang/copm/internal/logger"
)

// UserAgent is sent with every archive request
var UserAgent = "copm/0.1.0"

// TarballTransport downloads the default-branch tarball from the GitHub API
type TarballTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTarballTransport creates a transport against the given API base URL
func NewTarballTransport(baseURL, token string, timeout time.Duration) *TarballTransport {
	return &TarballTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *TarballTransport) Type() string {
	return "tarball"
}

func (t *TarballTransport) Fetch(ctx context.Context, owner, repo, destDir string) (*FetchResult, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tarball/HEAD", t.baseURL, owner, repo)

	tmpFile, err := os.CreateTemp("", "copm-download-*")
	if err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "download", Source: url, Err: err}
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "download", Source: url, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	logger.G(ctx).WithField("url", url).Debug("downloading tarball")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "download", Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SourceError{Transport: "tarball", Op: "download", Source: url,
			Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	hash := sha256.New()
	writer := io.MultiWriter(tmpFile, hash)
	if _, err := io.Copy(writer, resp.Body); err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "download", Source: url, Err: err}
	}

	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "extract", Source: url, Err: err}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "extract", Source: url, Err: err}
	}
	if err := extractTarGz(tmpFile, destDir); err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "extract", Source: url, Err: err}
	}

	root, err := singleTopLevelDir(destDir)
	if err != nil {
		return nil, &SourceError{Transport: "tarball", Op: "extract", Source: url, Err: err}
	}

	return &FetchResult{
		Root:      root,
		Integrity: Integrity{Scheme: SchemeSHA256, Value: hex.EncodeToString(hash.Sum(nil))},
	}, nil
}

// extractTarGz unpacks a gzip-compressed tar stream below destPath
func extractTarGz(r io.Reader, destPath string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "open gzip stream")
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read tar entry")
		}

		target, err := safeJoin(destPath, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			mode := os.FileMode(header.Mode).Perm() | 0600
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf("archive symlink %q points to absolute path %q", header.Name, header.Linkname)
			}
			resolved := filepath.Join(filepath.Dir(target), header.Linkname)
			if !within(destPath, resolved) {
				return fmt.Errorf("archive symlink %q escapes destination", header.Name)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			linked, err := safeJoin(destPath, header.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Link(linked, target); err != nil {
				return err
			}
		}
	}

	return nil
}

// safeJoin joins an archive entry name onto base, rejecting entries that escape it
func safeJoin(base, name string) (string, error) {
	target := filepath.Join(base, name)
	if !within(base, target) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// within reports whether the cleaned path lies inside base
func within(base, path string) bool {
	base = filepath.Clean(base)
	path = filepath.Clean(path)
	return path == base || strings.HasPrefix(path, base+string(filepath.Separator))
}

// singleTopLevelDir returns the one directory an archive unpacked into
func singleTopLevelDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}

	switch {
	case len(entries) == 0:
		return "", fmt.Errorf("archive is empty")
	case len(dirs) != 1 || len(entries) != 1:
		return "", fmt.Errorf("expected a single top-level directory, found %d entries", len(entries))
	}
	return filepath.Join(dir, dirs[0]), nil
}

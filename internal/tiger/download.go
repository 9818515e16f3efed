package tiger

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const downloadTimeout = 10 * time.Minute

// Download fetches the shapefile archive at url into destDir, unpacks it into
// a directory named after the archive, and returns the .shp path. A non-empty
// archive already in destDir is reused. A nil client gets a 10 minute timeout.
func Download(ctx context.Context, client *http.Client, url, destDir string) (string, error) {
	archive := path.Base(url)
	if !strings.EqualFold(path.Ext(archive), ".zip") {
		return "", eris.Errorf("tiger: url %q does not name a zip file", url)
	}
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}

	log := zap.L().With(zap.String("component", "tiger.download"), zap.String("archive", archive))

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "tiger: create dest dir")
	}

	zipPath := filepath.Join(destDir, archive)
	if cached(zipPath) {
		log.Debug("reusing downloaded archive", zap.String("path", zipPath))
	} else {
		log.Info("downloading county boundaries", zap.String("url", url))
		if err := fetchArchive(ctx, client, url, zipPath); err != nil {
			_ = os.Remove(zipPath)
			return "", eris.Wrap(err, "tiger: download shapefile")
		}
	}

	shp, err := unpack(zipPath, filepath.Join(destDir, strings.TrimSuffix(archive, path.Ext(archive))))
	if err != nil {
		return "", err
	}
	log.Info("shapefile ready", zap.String("path", shp))
	return shp, nil
}

func cached(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Size() > 0
}

func fetchArchive(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("census server returned status %d", resp.StatusCode)
	}
	return writeFile(dest, resp.Body)
}

// unpack extracts zipPath into dir and returns the shapefile inside it.
func unpack(zipPath, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrap(err, "tiger: create extract dir")
	}
	if err := unzipFlat(zipPath, dir); err != nil {
		return "", eris.Wrap(err, "tiger: extract archive")
	}
	shp, err := findByExt(dir, ".shp")
	if err != nil {
		return "", eris.Wrap(err, "tiger: locate shapefile")
	}
	return shp, nil
}

// unzipFlat writes every file entry of the archive directly into dir,
// dropping any directory prefix.
func unzipFlat(zipPath, dir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		err = writeFile(filepath.Join(dir, path.Base(f.Name)), rc)
		_ = rc.Close()
		if err != nil {
			return eris.Wrapf(err, "extract %s", f.Name)
		}
	}
	return nil
}

func writeFile(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "create %s", dest)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "write %s", dest)
	}
	return eris.Wrapf(f.Close(), "close %s", dest)
}

// findByExt returns the first regular file in dir whose extension matches ext
// case-insensitively.
func findByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}

// ABOUTME: Collectinfo archive extraction with tar/zip/magic-byte detection.
// ABOUTME: Locates the collectinfo file inside the extracted tree for the command runner.

package services

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// magic byte prefixes for content-based format detection.
var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZip  = []byte("PK")
)

// content keywords that mark a file as a plausible collectinfo report.
var reportKeywords = []string{"cluster", "namespace", "aerospike", "summary"}

// ArchiveExtractor unpacks uploaded collectinfo bundles into a working
// directory and locates the file the diagnostic runner should operate on.
type ArchiveExtractor struct {
	workDir string
}

// NewArchiveExtractor creates an extractor rooted at workDir.
func NewArchiveExtractor(workDir string) *ArchiveExtractor {
	return &ArchiveExtractor{workDir: workDir}
}

// Extract unpacks the archive and returns the path of the collectinfo file
// within it, plus a cleanup that removes the extraction directory. Tries
// tar (plain or gzip) first, then zip, then decides by magic bytes for
// extensionless files. Archives that cannot be unpacked in any of these
// ways are rejected.
func (e *ArchiveExtractor) Extract(ctx context.Context, archivePath string) (string, func(), error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	dest, err := os.MkdirTemp(e.workDir, "extract-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating extraction directory: %w", err)
	}

	if err := e.unpack(archivePath, dest); err != nil {
		os.RemoveAll(dest)
		return "", nil, err
	}

	found, err := findCollectinfoFile(dest)
	if err != nil {
		os.RemoveAll(dest)
		return "", nil, err
	}
	slog.Debug("Collectinfo located in archive", "archive", filepath.Base(archivePath), "file", filepath.Base(found))
	return found, func() { os.RemoveAll(dest) }, nil
}

func (e *ArchiveExtractor) unpack(archivePath, dest string) error {
	if err := extractTar(archivePath, dest); err == nil {
		return nil
	}
	if err := extractZip(archivePath, dest); err == nil {
		return nil
	}

	// Fall back to magic-byte detection for extensionless uploads.
	header := make([]byte, 4)
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	n, _ := io.ReadFull(f, header)
	f.Close()
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, magicGzip):
		return extractTar(archivePath, dest)
	case bytes.HasPrefix(header, magicZip):
		return extractZip(archivePath, dest)
	default:
		return fmt.Errorf("could not extract %s: not a tar or zip archive", filepath.Base(archivePath))
	}
}

// extractTar unpacks a tar archive, transparently handling gzip.
func extractTar(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	if gz, err := gzip.NewReader(f); err == nil {
		defer gz.Close()
		reader = gz
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	tr := tar.NewReader(reader)
	extracted := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if extracted == 0 {
				return fmt.Errorf("tar extraction failed: %w", err)
			}
			break
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return err
			}
			extracted++
		}
	}

	if extracted == 0 {
		return errors.New("tar archive contained no files")
	}
	return nil
}

func extractZip(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("zip extraction failed: %w", err)
	}
	defer zr.Close()

	extracted := 0
	for _, zf := range zr.File {
		target, err := safeJoin(dest, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc)
		rc.Close()
		if err != nil {
			return err
		}
		extracted++
	}

	if extracted == 0 {
		return errors.New("zip archive contained no files")
	}
	return nil
}

// safeJoin joins an archive member name onto dest, rejecting traversal.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.Clean("/"+name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive member escapes extraction directory: %s", sanitizeForLog(name))
	}
	return target, nil
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}

// findCollectinfoFile picks the file asadm should read: a name containing
// "collectinfo", then "health"/"report", then any .txt file, then any file
// whose leading content mentions a report keyword.
func findCollectinfoFile(root string) (string, error) {
	var byName, byReportName, byExt, byContent string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		lower := strings.ToLower(d.Name())

		switch {
		case byName == "" && strings.Contains(lower, "collectinfo"):
			byName = path
		case byReportName == "" && (strings.Contains(lower, "health") || strings.Contains(lower, "report")):
			byReportName = path
		case byExt == "" && strings.HasSuffix(lower, ".txt"):
			byExt = path
		case byContent == "" && containsReportKeyword(path):
			byContent = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	for _, candidate := range []string{byName, byReportName, byExt, byContent} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", errors.New("no collectinfo file found in archive")
}

func containsReportKeyword(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, _ := f.Read(head)
	content := strings.ToLower(string(head[:n]))
	for _, kw := range reportKeywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

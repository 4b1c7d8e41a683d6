package support

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
)

// DefaultMaxLogLines is the per-file line budget when optimizing.
const DefaultMaxLogLines = 1000

// Optimize shrinks a support bundle for transfer: log files keep only their
// last maxLines lines behind a truncation banner, nested compressed archives
// are dropped, and every other entry passes through byte-identical. When no
// rule fires, the input comes back untouched.
func Optimize(data []byte, maxLines int) ([]byte, error) {
	if maxLines <= 0 {
		maxLines = DefaultMaxLogLines
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errdefs.IOWrap(err, "support package is not gzip-compressed")
	}
	defer gz.Close()

	var out bytes.Buffer
	gw := gzip.NewWriter(&out)
	tw := tar.NewWriter(gw)
	tr := tar.NewReader(gz)

	changed := false
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errdefs.IOWrap(err, "reading bundle entry")
		}
		if hdr.Typeflag != tar.TypeReg {
			if err := tw.WriteHeader(hdr); err != nil {
				return nil, errdefs.IOWrap(err, "writing bundle entry %s", hdr.Name)
			}
			continue
		}
		if isNestedArchive(hdr.Name) {
			changed = true
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, errdefs.IOWrap(err, "reading bundle entry %s", hdr.Name)
		}
		if isLogFile(hdr.Name) {
			if truncated, ok := truncateLog(content, maxLines); ok {
				content = truncated
				hdr.Size = int64(len(content))
				changed = true
			}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, errdefs.IOWrap(err, "writing bundle entry %s", hdr.Name)
		}
		if _, err := tw.Write(content); err != nil {
			return nil, errdefs.IOWrap(err, "writing bundle entry %s", hdr.Name)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, errdefs.IOWrap(err, "finalizing optimized bundle")
	}
	if err := gw.Close(); err != nil {
		return nil, errdefs.IOWrap(err, "finalizing optimized bundle")
	}

	if !changed {
		return data, nil
	}
	return out.Bytes(), nil
}

// isNestedArchive matches compressed archives packed inside the bundle.
// They duplicate content the outer archive already carries.
func isNestedArchive(name string) bool {
	return strings.HasSuffix(name, ".gz") || strings.HasSuffix(name, ".tgz")
}

// isLogFile matches by extension or by living under a log directory.
func isLogFile(name string) bool {
	if strings.HasSuffix(name, ".log") {
		return true
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "log" || seg == "logs" {
			return true
		}
	}
	return false
}

// truncateLog keeps the last maxLines lines behind a banner. Files already
// within budget report ok=false and stay untouched.
func truncateLog(content []byte, maxLines int) ([]byte, bool) {
	trailingNL := bytes.HasSuffix(content, []byte("\n"))
	trimmed := content
	if trailingNL {
		trimmed = content[:len(content)-1]
	}
	if len(trimmed) == 0 {
		return content, false
	}
	lines := bytes.Split(trimmed, []byte("\n"))
	if len(lines) <= maxLines {
		return content, false
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "=== truncated to last %d of %d lines ===\n", maxLines, len(lines))
	buf.Write(bytes.Join(lines[len(lines)-maxLines:], []byte("\n")))
	if trailingNL {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), true
}

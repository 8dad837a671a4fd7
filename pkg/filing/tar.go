package filing

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Tar archives bundle bulk 10-K downloads (one archive may hold several
// filings, including stale or empty artifacts from the upstream batch
// job). SelectLatestTenK and ExtractMainDocument are Go ports of
// original_source/domain_status_graph/utils/{tar_selection,
// tar_extraction}.py, preserving their exact heuristics: skip exhibits,
// prefer the largest qualifying HTML file, and defend every extracted
// path against Tar Slip before it touches disk.

var (
	reDatedFilename  = regexp.MustCompile(`(?i)[a-z]+-(\d{8})\.(?:htm|html)$`)
	reAccessionFull  = regexp.MustCompile(`\d{10}(\d{8})`)
	reAccessionShort = regexp.MustCompile(`\d{10}(\d{2})\d{6}`)
	reISODate        = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

var skipSubstrings = []string{"xexx", "exhibit", "toc", "cover", "graphic", "img"}

func isSkippableMember(nameLower string) bool {
	for _, s := range skipSubstrings {
		if strings.Contains(nameLower, s) {
			return true
		}
	}
	return false
}

// ExtractFilingDateFromPath parses a filing date out of a tar member path,
// trying the same pattern cascade as tar_selection.py's
// extract_filing_date_from_html_path: dated filenames, full-date
// accession numbers, year-only accession numbers, then any YYYY-MM-DD
// substring.
func ExtractFilingDateFromPath(path string) (time.Time, bool) {
	if m := reDatedFilename.FindStringSubmatch(path); m != nil {
		if t, err := time.Parse("20060102", m[1]); err == nil {
			return t, true
		}
	}
	if m := reAccessionFull.FindStringSubmatch(path); m != nil {
		if t, err := time.Parse("20060102", m[1]); err == nil && isReasonableYear(t.Year()) {
			return t, true
		}
	}
	if m := reAccessionShort.FindStringSubmatch(path); m != nil {
		if year, err := strconv.Atoi("20" + m[1]); err == nil && isReasonableYear(year) {
			return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	if m := reISODate.FindStringSubmatch(path); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil && isReasonableYear(t.Year()) {
			return t, true
		}
	}
	return time.Time{}, false
}

func isReasonableYear(y int) bool {
	return y >= 1990 && y <= time.Now().Year()+1
}

func openTarReader(path string) (io.ReadCloser, *tar.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open tar %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("gunzip tar %s: %w", path, err)
		}
		return f, tar.NewReader(gz), nil
	}
	return f, tar.NewReader(f), nil
}

func isHTMLName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html")
}

// LatestTenKDate inspects tarPath's members and returns the most recent
// filing date found among its non-exhibit HTML files.
func LatestTenKDate(tarPath string) (time.Time, bool) {
	f, tr, err := openTarReader(tarPath)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	var latest time.Time
	found := false
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return time.Time{}, false
		}
		if !isHTMLName(hdr.Name) || isSkippableMember(strings.ToLower(hdr.Name)) {
			continue
		}
		if date, ok := ExtractFilingDateFromPath(hdr.Name); ok {
			if !found || date.After(latest) {
				latest, found = date, true
			}
		}
	}
	return latest, found
}

// IsTarEmpty reports whether tarPath has no HTML members — an artifact
// of the upstream batch-download process that should be filtered before
// selection.
func IsTarEmpty(tarPath string) bool {
	f, tr, err := openTarReader(tarPath)
	if err != nil {
		return true
	}
	defer f.Close()

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return true
		}
		if isHTMLName(hdr.Name) {
			return false
		}
	}
}

// SelectLatestTenK picks which tar archive (from tarPaths) contains the
// most recent 10-K, matching find_tar_with_latest_10k: drop empty
// archives, then rank the rest by the latest filing date found inside,
// falling back to the first non-empty archive if no date could be
// extracted from any of them.
func SelectLatestTenK(tarPaths []string) (string, bool) {
	var nonEmpty []string
	for _, p := range tarPaths {
		if !IsTarEmpty(p) {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return "", false
	}
	if len(nonEmpty) == 1 {
		return nonEmpty[0], true
	}

	type dated struct {
		path string
		date time.Time
		has  bool
	}
	candidates := make([]dated, len(nonEmpty))
	for i, p := range nonEmpty {
		date, ok := LatestTenKDate(p)
		candidates[i] = dated{path: p, date: date, has: ok}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].date, candidates[j].date
		if !candidates[i].has {
			di = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		if !candidates[j].has {
			dj = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		return di.After(dj)
	})
	return candidates[0].path, true
}

// memberPathUnsafe reports whether a raw tar member name must be
// rejected outright: a ".." path segment, a leading "/", or a bare
// volume/root reference. This check runs on the member's name as read
// from the archive, before any basename-stripping, since a name like
// "../../../etc/evil.htm" must never be honored even though it would
// flatten to a harmless basename afterward.
func memberPathUnsafe(name string) bool {
	if name == "" || strings.HasPrefix(filepath.ToSlash(name), "/") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// safeJoin resolves name against dir, rejecting any path that would
// escape dir (Tar Slip protection), mirroring tar_extraction.py's
// safe_name + relative_to(extract_dir) double-check.
func safeJoin(dir, name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("unsafe tar member name %q", name)
	}
	target := filepath.Join(dir, base)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	if absTarget != absDir && !strings.HasPrefix(absTarget, absDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected: %q", name)
	}
	return target, nil
}

type tarHTMLMember struct {
	name        string
	size        int64
	scratchPath string
}

// ExtractMainDocument extracts the main 10-K HTML document from tarPath
// into destDir, returning its path. It picks the largest non-exhibit
// HTML member (falling back to the largest HTML member overall),
// validating every candidate path with safeJoin before writing —
// the Go equivalent of tar_extraction.py's extract_from_tar.
func ExtractMainDocument(tarPath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}

	f, tr, err := openTarReader(tarPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// archive/tar is a forward-only stream; buffer each HTML member to a
	// scratch file so we can pick the winner after scanning every
	// header, then copy just that one file to its final destination.
	tmpDir, err := os.MkdirTemp("", "tenk-extract-*")
	if err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var members []tarHTMLMember
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read tar member: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isHTMLName(hdr.Name) {
			continue
		}
		if memberPathUnsafe(hdr.Name) {
			continue // tar slip attempt; reject the raw member name before it is ever basename-stripped
		}

		scratchPath, err := safeJoin(tmpDir, fmt.Sprintf("%d_%s", len(members), filepath.Base(hdr.Name)))
		if err != nil {
			continue // unsafe member name; skip rather than abort the whole archive
		}
		out, err := os.Create(scratchPath)
		if err != nil {
			return "", fmt.Errorf("buffer tar member: %w", err)
		}
		written, copyErr := io.Copy(out, tr)
		out.Close()
		if copyErr != nil {
			return "", fmt.Errorf("copy tar member %s: %w", hdr.Name, copyErr)
		}

		members = append(members, tarHTMLMember{name: hdr.Name, size: written, scratchPath: scratchPath})
	}

	if len(members) == 0 {
		return "", fmt.Errorf("no HTML files found in tar archive %s", tarPath)
	}

	chosen := pickMainDocument(members)

	year := "unknown"
	if date, ok := LatestTenKDate(tarPath); ok {
		year = strconv.Itoa(date.Year())
	}
	targetPath, err := safeJoin(destDir, fmt.Sprintf("10k_%s.html", year))
	if err != nil {
		return "", err
	}

	src, err := os.Open(chosen.scratchPath)
	if err != nil {
		return "", fmt.Errorf("reopen scratch extract: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return "", fmt.Errorf("create target file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write extracted document: %w", err)
	}

	return targetPath, nil
}

// pickMainDocument picks the largest non-exhibit HTML member, falling
// back to the largest HTML member overall if every candidate looked
// like an exhibit.
func pickMainDocument(members []tarHTMLMember) tarHTMLMember {
	best, bestSize := -1, int64(-1)
	for i, m := range members {
		if isSkippableMember(strings.ToLower(m.name)) {
			continue
		}
		if m.size > bestSize {
			best, bestSize = i, m.size
		}
	}
	if best == -1 {
		for i, m := range members {
			if m.size > bestSize {
				best, bestSize = i, m.size
			}
		}
	}
	return members[best]
}

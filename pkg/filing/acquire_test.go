package filing

import (
	"archive/tar"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestIsRetryableErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"server error retryable", &httpStatusError{StatusCode: 503}, true},
		{"too many requests retryable", &httpStatusError{StatusCode: http.StatusTooManyRequests}, true},
		{"not found not retryable", &httpStatusError{StatusCode: 404}, false},
		{"bad request not retryable", &httpStatusError{StatusCode: 400}, false},
		{"deadline exceeded retryable", context.DeadlineExceeded, true},
		{"plain error not retryable", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableErr(tc.err); got != tc.want {
				t.Errorf("isRetryableErr(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsRetryableErr_NetTimeout(t *testing.T) {
	var err net.Error = timeoutError{}
	if !isRetryableErr(err) {
		t.Error("expected a net.Error with Timeout()==true to be retryable")
	}
}

func TestRetryWithBackoff_SucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), maxRetriesFreePath, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("retryWithBackoff: err=%v calls=%d, want nil/1", err, calls)
	}
}

func TestRetryWithBackoff_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), maxRetriesFreePath, func() error {
		calls++
		return &httpStatusError{StatusCode: 404}
	})
	if calls != 1 {
		t.Errorf("expected a single attempt for a non-retryable error, got %d", calls)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("retryWithBackoff returned %v, want the original 404 error", err)
	}
}

func TestRetryWithBackoff_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := retryWithBackoff(ctx, maxRetriesFreePath, func() error {
		calls++
		return &httpStatusError{StatusCode: 503}
	})
	if err == nil {
		t.Error("expected an error when the context is already cancelled")
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt before the backoff sleep hits ctx.Done, got %d", calls)
	}
}

func TestWriteSingleMemberTar_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "test.tar")
	body := []byte("<html><body>filing text</body></html>")

	if err := writeSingleMemberTar(archivePath, "doc.htm", body); err != nil {
		t.Fatalf("writeSingleMemberTar: %v", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	tr := tar.NewReader(f)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("read tar member: %v", err)
	}
	if hdr.Name != "doc.htm" {
		t.Errorf("member name = %q, want doc.htm", hdr.Name)
	}
}

func TestListArchives_FiltersBySuffix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tar", "b.tar.gz", "c.tgz", "notes.txt", "sub"} {
		if name == "sub" {
			if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	archives, err := listArchives(dir)
	if err != nil {
		t.Fatalf("listArchives: %v", err)
	}
	if len(archives) != 3 {
		t.Errorf("listArchives returned %d entries, want 3: %v", len(archives), archives)
	}
}

func TestCleanupOtherArchives_KeepsOnlySelected(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.tar")
	drop := filepath.Join(dir, "drop.tar")
	for _, p := range []string{keep, drop} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cleanupOtherArchives([]string{keep, drop}, keep)

	if _, err := os.Stat(keep); err != nil {
		t.Errorf("expected kept archive to survive: %v", err)
	}
	if _, err := os.Stat(drop); !os.IsNotExist(err) {
		t.Errorf("expected dropped archive to be removed, stat err = %v", err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.html")
	dst := filepath.Join(dir, "dst.html")
	want := []byte("hello filing")
	if err := os.WriteFile(src, want, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("copyFile content = %q, want %q", got, want)
	}
}


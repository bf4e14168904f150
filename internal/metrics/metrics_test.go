package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesRecordedMetrics(t *testing.T) {
	RecordCommand("ls", StatusOK)
	RecordMutation("mkdir")
	SetSubscribers(3)
	RecordFuseRequest("lookup", errors.New("boom"))

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("Failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}

	expected := []string{
		`deskfs_commands_total{command="ls",status="ok"}`,
		`deskfs_vfs_mutations_total{op="mkdir"}`,
		`deskfs_vfs_subscribers 3`,
		`deskfs_fuse_requests_total{op="lookup",status="error"}`,
	}
	for _, want := range expected {
		if !strings.Contains(string(body), want) {
			t.Errorf("Expected metrics output to contain %q", want)
		}
	}
}

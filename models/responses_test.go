package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUploadOutcome_SerializesWaitingStatus(t *testing.T) {
	out, err := json.Marshal(UploadOutcome{
		Filename:  "dump1.tgz",
		Accepted:  true,
		ResultKey: "k",
		Status:    StatusWaiting,
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"status":"waiting"`) {
		t.Errorf("Accepted upload must report its waiting status, got %s", out)
	}
}

func TestRetryResponse_SerializesStatus(t *testing.T) {
	out, err := json.Marshal(RetryResponse{ResultKey: "k", Status: StatusProcessing})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), `"status":"processing"`) {
		t.Errorf("Retry response must carry the new status, got %s", out)
	}
}

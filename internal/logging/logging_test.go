package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup("debug", "json", &buf); err != nil {
		t.Fatalf("Failed to set up logging: %v", err)
	}
	defer Setup("info", "text", nil)

	log.WithField("scene", "battle").Debug("Troll appeared!")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", buf.String(), err)
	}
	if entry["scene"] != "battle" || entry["msg"] != "Troll appeared!" {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestSetupRejectsBadInput(t *testing.T) {
	if err := Setup("loud", "text", nil); err == nil {
		t.Error("Expected unknown level to fail")
	}
	if err := Setup("info", "xml", nil); err == nil {
		t.Error("Expected unknown format to fail")
	}
}

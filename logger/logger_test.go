package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestTraceOffByDefault(t *testing.T) {
	buf := captureOutput(t)
	Trace(SubsystemSmallTier, "should not appear")
	if buf.Len() != 0 {
		t.Fatalf("disabled subsystem produced output: %q", buf.String())
	}
}

func TestEnableDisable(t *testing.T) {
	buf := captureOutput(t)
	Enable(SubsystemReclaim)
	defer Disable(SubsystemReclaim)

	Trace(SubsystemReclaim, "reclaimed %d shards", 4)
	if !strings.Contains(buf.String(), "[reclaim] reclaimed 4 shards") {
		t.Fatalf("enabled subsystem output missing or malformed: %q", buf.String())
	}

	Trace(SubsystemLargeTier, "still disabled")
	if strings.Contains(buf.String(), "still disabled") {
		t.Fatal("a subsystem that was never enabled produced output")
	}

	Disable(SubsystemReclaim)
	before := buf.Len()
	Trace(SubsystemReclaim, "after disable")
	if buf.Len() != before {
		t.Fatal("Disable did not stop trace output")
	}
}

func TestAllWildcard(t *testing.T) {
	buf := captureOutput(t)
	Enable("all")
	defer Disable("all")

	Trace(SubsystemSmallTier, "wildcard")
	if !strings.Contains(buf.String(), "[smalltier] wildcard") {
		t.Fatalf("\"all\" did not enable an unnamed subsystem: %q", buf.String())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Setenv("STRPOOL_TRACE", " reclaim , largetier")
	Configure()
	defer Disable(SubsystemReclaim, SubsystemLargeTier)

	if !Enabled(SubsystemReclaim) || !Enabled(SubsystemLargeTier) {
		t.Fatal("Configure did not enable the subsystems named in STRPOOL_TRACE")
	}
	if Enabled(SubsystemSmallTier) {
		t.Fatal("Configure enabled a subsystem STRPOOL_TRACE did not name")
	}
}

package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := G(context.Background())
	if entry.Logger != L.Logger {
		t.Error("G() without attached logger should use the global logger")
	}
}

func TestWithLogger(t *testing.T) {
	custom := logrus.NewEntry(logrus.New()).WithField("op", "install")
	ctx := WithLogger(context.Background(), custom)

	got := G(ctx)
	if got.Data["op"] != "install" {
		t.Errorf("G(ctx).Data[op] = %v, want install", got.Data["op"])
	}
}

func TestSetLogLevel(t *testing.T) {
	defer L.Logger.SetLevel(logrus.WarnLevel)

	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug) error: %v", err)
	}
	if L.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", L.Logger.GetLevel())
	}

	if err := SetLogLevel("loud"); err == nil {
		t.Error("SetLogLevel(loud) should fail")
	}
}

func TestSetLogFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogFormat("json")
	defer func() {
		SetLogFormat("text")
		SetLogOutput(os.Stderr)
	}()

	L.Warn("hello")

	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Errorf("json output = %q", buf.String())
	}
}

package log

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestInitFileOutput(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "service.log")

	Init(LogLevelInfo, path)
	defer Init(LogLevelInfo, "stderr")

	Infow("file output works", "key", "value")

	content, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(content), qt.Contains, "file output works")
	c.Assert(string(content), qt.Contains, "value")
}

func TestInitLevelFallback(t *testing.T) {
	c := qt.New(t)

	Init("not-a-level", "stderr")
	defer Init(LogLevelInfo, "stderr")
	c.Assert(Level(), qt.Equals, LogLevelInfo)
}

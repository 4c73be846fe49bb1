package log

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, DisableLevel, ParseLevel("off"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}

func TestPrinterWritesText(t *testing.T) {
	var buf bytes.Buffer
	n, err := newPrinter(&buf).Println("plain line")
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, "plain line\n", buf.String())
}

func TestEveryLevelWrites(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("debug")
	defer func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	}()

	Debug("d-line")
	Infof("i-%s", "line")
	Warn("w-line")
	Error("e-line")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "[DBUG] "))
	assert.True(t, strings.HasSuffix(lines[0], " d-line"))
	assert.True(t, strings.HasPrefix(lines[1], "[INFO] "))
	assert.True(t, strings.HasSuffix(lines[1], " i-line"))
	assert.True(t, strings.HasPrefix(lines[2], "[WARN] "))
	assert.True(t, strings.HasPrefix(lines[3], "[ERRO] "))
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	defer func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	}()

	Info("hidden line")
	Warnf("visible %d", 42)
	Errorf("broken %s", "pipe")

	out := buf.String()
	require.NotContains(t, out, "hidden line")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "visible 42")
	assert.Contains(t, out, "[ERRO]")
	assert.Contains(t, out, "broken pipe")
}

func TestDisable(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("disable")
	defer func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	}()

	Error("nothing")
	assert.Empty(t, buf.String())
}

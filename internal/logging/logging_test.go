package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	logger "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestConfigure_Levels(t *testing.T) {
	l := logger.New()
	var out bytes.Buffer

	require.NoError(t, configure(l, &out, Options{}).Close())
	require.Equal(t, logger.InfoLevel, l.GetLevel())

	require.NoError(t, configure(l, &out, Options{Verbose: true}).Close())
	require.Equal(t, logger.DebugLevel, l.GetLevel())
}

func TestConfigure_JSON(t *testing.T) {
	l := logger.New()
	var out bytes.Buffer
	closer := configure(l, &out, Options{JSON: true})
	defer closer.Close()

	l.WithField("branch", "main").Info("committing")
	require.Contains(t, out.String(), `"branch":"main"`)
	require.Contains(t, out.String(), `"msg":"committing"`)
}

func TestConfigure_File(t *testing.T) {
	l := logger.New()
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "ghcommit.log")

	closer := configure(l, &out, Options{File: path})
	l.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
	require.Contains(t, out.String(), "hello")
}

func TestConsole(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logger.DebugLevel)
	console := NewConsole(l)

	console.Group("committing files")
	console.Debugf("time taken: %d ms", 12)
	console.EndGroup()
	console.Debugf("after")

	entries := hook.AllEntries()
	require.Len(t, entries, 3)

	require.Equal(t, logger.InfoLevel, entries[0].Level)
	require.Equal(t, "committing files", entries[0].Message)

	require.Equal(t, "time taken: 12 ms", entries[1].Message)
	require.Equal(t, "committing files", entries[1].Data["stage"])

	require.Equal(t, "after", entries[2].Message)
	require.NotContains(t, entries[2].Data, "stage")
}

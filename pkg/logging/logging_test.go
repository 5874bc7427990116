package logging

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestError(t *testing.T) {
	for _, test := range []struct {
		name  string
		err   error
		level slog.Level
		msg   string
		trace bool
	}{
		{"standard", stderrors.New("standard error"), slog.LevelDebug, "standard error", false},
		{"pkg errors info", errors.New("pkg error"), slog.LevelInfo, "pkg error", false},
		{"pkg errors debug", errors.Wrap(errors.New("pkg error"), "wrapped"), slog.LevelDebug, "wrapped: pkg error", true},
	} {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewHandler(LoggerJSON, test.level, &buf))
			log.Error("Test error", slog.String("test", "attribute"), Error(test.err))

			line := buf.String()
			assert.Equal(t, "Test error", gjson.Get(line, "msg").String())
			assert.Equal(t, "attribute", gjson.Get(line, "test").String())
			assert.Equal(t, test.msg, gjson.Get(line, "error.message").String())
			assert.Equal(t, test.trace, gjson.Get(line, "error.trace").Exists())
		})
	}
}

func TestErrorNil(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(LoggerJSON, slog.LevelInfo, &buf))
	log.Info("no error", Error(nil))
	assert.False(t, gjson.Get(buf.String(), "error").Exists())
}

func TestNamedAndType(t *testing.T) {
	var buf bytes.Buffer
	log := Named(slog.New(NewHandler(LoggerText, slog.LevelInfo, &buf)), "compiler")
	log.Info("value", Type(&buf))
	assert.Contains(t, buf.String(), "namespace=compiler")
	assert.Contains(t, buf.String(), "type=*bytes.Buffer")

	slogt.New(t).Info("pretty handler smoke", Type(1))
	buf.Reset()
	slog.New(NewHandler(LoggerPrettyNoColor, slog.LevelInfo, &buf)).Info("pretty", "k", 1)
	assert.Contains(t, buf.String(), "pretty k=1")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(t.Context(), slog.LevelError))
}

func TestParameters(t *testing.T) {
	for _, test := range []struct {
		args  []string
		level slog.Level
		typ   LoggerType
		err   string
	}{
		{nil, slog.LevelInfo, LoggerPretty, ""},
		{[]string{"--log-level", "debug", "--log-type", "JSON"}, slog.LevelDebug, LoggerJSON, ""},
		{[]string{"--log-type", "prettynocolor"}, slog.LevelInfo, LoggerPrettyNoColor, ""},
		{[]string{"--log-level", "loud"}, 0, 0, "invalid log level"},
		{[]string{"--log-type", "xml"}, 0, 0, "invalid logger type"},
	} {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		var p Parameters
		p.Initialize(fs)
		require.NoError(t, fs.Parse(test.args))
		err := p.Parse()
		if test.err != "" {
			assert.ErrorContains(t, err, test.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.level, p.Level)
		assert.Equal(t, test.typ, p.Type)
	}
}

func TestLoggerTypeText(t *testing.T) {
	text, err := LoggerJSON.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "json", string(text))
	assert.Equal(t, "LoggerType(9)", LoggerType(9).String())
}

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerEnablement(t *testing.T) {
	t.Parallel()

	for _, min := range Levels() {
		t.Run(min.String(), func(t *testing.T) {
			t.Parallel()

			log := NewConsoleFactory(new(bytes.Buffer), min).CreateLogger("test")
			for _, level := range Levels() {
				want := level != None && level >= min
				assert.Equal(t, want, log.IsEnabled(level), "IsEnabled(%s) with minimum %s", level, min)
			}
		})
	}
}

func TestConsoleLoggerWritesEnabledRecords(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	factory := NewConsoleFactory(buffer, Debug)
	log := factory.CreateLogger("Data.ORM.SQL")

	log.Log(Trace, nil, "silenced line at %s", "trace")
	log.Log(Debug, nil, "new line at %s", "debug")
	log.Log(Information, nil, "plain line")
	log.Log(Critical, errors.New("boom"), "critical line")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[DEBUG]")
	assert.Contains(t, lines[0], "Data.ORM.SQL: new line at debug")
	assert.Contains(t, lines[1], "[INFO]")
	assert.Contains(t, lines[1], "Data.ORM.SQL: plain line")
	assert.Contains(t, lines[2], "[ERROR]")
	assert.Contains(t, lines[2], "critical line")
	assert.Contains(t, lines[2], "severity=Critical")
	assert.Contains(t, lines[2], "error=boom")
}

type countingStringer struct{ calls int }

func (c *countingStringer) String() string {
	c.calls++
	return "rendered"
}

func TestConsoleLoggerFormatsOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	log := NewConsoleFactory(buffer, Information).CreateLogger("test")
	arg := &countingStringer{}

	log.Log(Trace, nil, "value: %v", arg)
	assert.Equal(t, 0, arg.calls)
	assert.Empty(t, buffer.String())

	log.Log(Warning, nil, "value: %v", arg)
	assert.Equal(t, 1, arg.calls)
	assert.Contains(t, buffer.String(), "value: rendered")
}

func TestNullFactory(t *testing.T) {
	t.Parallel()

	log := NullFactory.CreateLogger("anything")
	for _, level := range Levels() {
		assert.False(t, log.IsEnabled(level))
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, level := range Levels() {
		got, err := ParseLevel(strings.ToUpper(level.String()))
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}

	got, err := ParseLevel("info")
	require.NoError(t, err)
	assert.Equal(t, Information, got)

	got, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, Warning, got)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Information", Information.String())
	assert.Equal(t, "Critical", Critical.String())
	assert.Equal(t, "Level(99)", Level(99).String())
}

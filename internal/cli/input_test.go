package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubTerminal(t *testing.T, terminal bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return terminal }
	t.Cleanup(func() { isTerminal = orig })
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetPassword_PipedInput(t *testing.T) {
	stubTerminal(t, false)

	var out bytes.Buffer
	pw, err := GetPassword(rdr("s3cret\n"), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))
	assert.Equal(t, "Password: ", out.String())
}

func TestGetPassword_PipedKeepsSurroundingSpaces(t *testing.T) {
	stubTerminal(t, false)

	pw, err := GetPassword(rdr("  pass word \r\n"), "Password", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "  pass word ", string(pw))

	pw, err = GetPassword(rdr(" last"), "Password", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, " last", string(pw))
}

func TestGetPassword_Terminal(t *testing.T) {
	stubTerminal(t, true)
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("hidden"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(rdr(""), "Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "hidden", string(pw))

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(rdr(""), "Password", &out)
	require.Error(t, err)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(rdr(tt.input), "Sure?", &out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)
		assert.Contains(t, out.String(), "Sure? (y/n)")
	}
}

func TestPickMonths(t *testing.T) {
	opts := []string{"March 2025", "April 2025", "May 2025", "June 2025"}

	got, err := pickMonths("1, 3 ,june 2025", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"March 2025", "May 2025", "june 2025"}, got)

	_, err = pickMonths("0,1,2", opts)
	require.Error(t, err)
	_, err = pickMonths("9", opts)
	require.Error(t, err)
}

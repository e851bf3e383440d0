package main

import (
	"bytes"
	"strings"
	"testing"

	"edconnect_backend/pkg/privacy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRedactArgs(t *testing.T) {
	var out bytes.Buffer
	r := privacy.NewRedactor(nil, nil)

	err := runRedact(strings.NewReader(""), &out, r, &privacy.Identity{FullName: "Jane Doe"}, []string{"I'm", "Jane", "Doe"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "I'm [STUDENT_NAME]", lines[0])
	assert.Contains(t, lines[1], "redacted 1")
}

func TestRunRedactStdin(t *testing.T) {
	var out bytes.Buffer
	r := privacy.NewRedactor(nil, nil)

	err := runRedact(strings.NewReader("call 555-123-4567\nsolve 2x = 4\n"), &out, r, &privacy.Identity{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "call [PHONE_REDACTED]\n  redacted 1: map[phone:1]\nsolve 2x = 4\n", out.String())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["seed"])
	assert.True(t, names["redact"])
}

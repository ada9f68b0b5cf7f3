package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore/internal/auth"
)

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	userID := uuid.NewString()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--user", userID, "--ttl", "5m"})
	require.NoError(t, cmd.Execute())

	tokens, err := auth.NewTokens("cli-secret", 0)
	require.NoError(t, err)
	got, err := tokens.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenCommandErrors(t *testing.T) {
	t.Run("missing user flag", func(t *testing.T) {
		cmd := newRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"token"})
		assert.Error(t, cmd.Execute())
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		cmd := newRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"token", "--user", uuid.NewString()})
		assert.ErrorIs(t, cmd.Execute(), auth.ErrMissingSecret)
	})

	t.Run("user is not a uuid", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "cli-secret")
		cmd := newRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"token", "--user", "alice"})
		assert.ErrorIs(t, cmd.Execute(), auth.ErrInvalidUser)
	})
}

func TestRetagRequiresArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"retag"})
	assert.Error(t, cmd.Execute())
}

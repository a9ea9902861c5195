package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectiveFull(t *testing.T) {
	t.Parallel()

	d, err := ParseDirective("#!profile-sync ssh://h/r.git branch=dev -- region=us-east-1", DefaultMagicStart)
	require.NoError(t, err)
	assert.Equal(t, "ssh://h/r.git", d.Location)
	assert.Equal(t, map[string]string{"branch": "dev"}, d.Params)
	assert.Equal(t, map[string]string{"region": "us-east-1"}, d.Overrides)
}

func TestParseDirectiveLocationOnly(t *testing.T) {
	t.Parallel()

	d, err := ParseDirective("#!profile-sync ssh://h/r.git", DefaultMagicStart)
	require.NoError(t, err)
	assert.Equal(t, "ssh://h/r.git", d.Location)
	assert.Empty(t, d.Params)
	assert.Empty(t, d.Overrides)
}

func TestParseDirectiveMultipleParamsAndOverrides(t *testing.T) {
	t.Parallel()

	d, err := ParseDirective(
		"#!profile-sync ssh://h/r.git branch=dev filename=creds -- region=eu-west-1 output=json",
		DefaultMagicStart,
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"branch": "dev", "filename": "creds"}, d.Params)
	assert.Equal(t, map[string]string{"region": "eu-west-1", "output": "json"}, d.Overrides)
}

func TestParseDirectiveEmptyOverrideValue(t *testing.T) {
	t.Parallel()

	d, err := ParseDirective("#!profile-sync ssh://h/r.git -- token=", DefaultMagicStart)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": ""}, d.Overrides)
}

func TestParseDirectiveEmptyBody(t *testing.T) {
	t.Parallel()

	_, err := ParseDirective("#!profile-sync ", DefaultMagicStart)
	require.ErrorIs(t, err, ErrMalformedDirective)
}

func TestParseDirectiveOverridesWithoutLocation(t *testing.T) {
	t.Parallel()

	_, err := ParseDirective("#!profile-sync -- region=us-east-1", DefaultMagicStart)
	require.ErrorIs(t, err, ErrMalformedDirective)
}

func TestParseDirectiveBadParamToken(t *testing.T) {
	t.Parallel()

	_, err := ParseDirective("#!profile-sync ssh://h/r.git branch", DefaultMagicStart)
	require.ErrorIs(t, err, ErrMalformedDirective)
	assert.ErrorContains(t, err, "branch")
}

func TestParseDirectiveBadOverrideToken(t *testing.T) {
	t.Parallel()

	_, err := ParseDirective("#!profile-sync ssh://h/r.git -- a=b=c", DefaultMagicStart)
	require.ErrorIs(t, err, ErrMalformedDirective)
	assert.ErrorContains(t, err, "a=b=c")
}

func TestParseDirectiveWrongSentinel(t *testing.T) {
	t.Parallel()

	_, err := ParseDirective("# not a directive", DefaultMagicStart)
	require.ErrorIs(t, err, ErrMalformedDirective)
}

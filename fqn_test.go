package toolcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullyQualifiedName(t *testing.T) {
	fqn, err := ParseFullyQualifiedName("Slack.SendMessage")
	require.NoError(t, err)
	assert.Equal(t, "Slack", fqn.ToolkitName)
	assert.Equal(t, "SendMessage", fqn.Name)
	assert.Empty(t, fqn.ToolkitVersion)

	fqn, err = ParseFullyQualifiedName("Slack.SendMessage@0.2.0")
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", fqn.ToolkitVersion)
	assert.Equal(t, "Slack.SendMessage@0.2.0", fqn.String())
}

func TestParseFullyQualifiedName_Malformed(t *testing.T) {
	for _, s := range []string{"", "NoSeparator", ".Tool", "Toolkit.", "Toolkit.Tool@"} {
		_, err := ParseFullyQualifiedName(s)
		require.Error(t, err, "input %q", s)
	}
}

func TestFullyQualifiedName_Equal_CaseInsensitive(t *testing.T) {
	a := NewFullyQualifiedName("SendMessage", "Slack", "1.0.0")
	b := NewFullyQualifiedName("sendmessage", "SLACK", "1.0.0")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.key(), b.key())

	// Version compares exactly.
	c := NewFullyQualifiedName("SendMessage", "Slack", "1.0.1")
	assert.False(t, a.Equal(c))
	assert.True(t, a.EqualsIgnoringVersion(c))
}

func TestFullyQualifiedName_KeySet(t *testing.T) {
	// Two FQNs differing only in case collapse to one key; a different
	// version stays distinct.
	set := map[fqnKey]struct{}{
		NewFullyQualifiedName("SendMessage", "Slack", "1.0.0").key():  {},
		NewFullyQualifiedName("sendmessage", "slack", "1.0.0").key():  {},
		NewFullyQualifiedName("SendMessage", "Slack", "2.0.0").key():  {},
		NewFullyQualifiedName("SendMessage", "Github", "1.0.0").key(): {},
	}
	assert.Len(t, set, 3)
}

func TestCompareVersions(t *testing.T) {
	assert.Zero(t, compareVersions("1.0.0", "1.0.0"))
	assert.Negative(t, compareVersions("", "0.0.1"))
	assert.Positive(t, compareVersions("0.0.1", ""))
	assert.Positive(t, compareVersions("0.10.0", "0.9.0"))
	assert.Negative(t, compareVersions("1.0.0-alpha", "1.0.0"))
	// Non-semver versions fall back to string ordering.
	assert.Positive(t, compareVersions("beta", "alpha"))
}

package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		tag     string
		want    Scope
		wantErr bool
	}{
		{"tweets", ScopeTweets, false},
		{"replies", ScopeReplies, false},
		{"likes", ScopeLikes, false},
		{"bookmarks", ScopeBookmarks, false},
		{"  Tweets ", ScopeTweets, false},
		{"LIKES", ScopeLikes, false},
		{"media", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		scope, err := ParseScope(tt.tag)
		if tt.wantErr {
			assert.Error(t, err, "tag %q", tt.tag)
			continue
		}
		require.NoError(t, err, "tag %q", tt.tag)
		assert.Equal(t, tt.want, scope)
	}
}

func TestParseScopesPreservesOrder(t *testing.T) {
	scopes, err := ParseScopes([]string{"likes", "tweets", "bookmarks"})
	require.NoError(t, err)
	assert.Equal(t, []Scope{ScopeLikes, ScopeTweets, ScopeBookmarks}, scopes)

	_, err = ParseScopes([]string{"tweets", "nope"})
	assert.Error(t, err)
}

func TestDestinationPath(t *testing.T) {
	tests := []struct {
		scope    Scope
		identity string
		want     string
		wantErr  bool
	}{
		{ScopeTweets, "alice", "/alice", false},
		{ScopeReplies, "alice", "/alice/with_replies", false},
		{ScopeLikes, "alice", "/alice/likes", false},
		{ScopeBookmarks, "alice", "/i/bookmarks", false},
		{ScopeBookmarks, "", "/i/bookmarks", false},
		{ScopeTweets, "", "", true},
		{ScopeReplies, "", "", true},
		{ScopeLikes, "", "", true},
	}

	for _, tt := range tests {
		path, err := tt.scope.destinationPath(tt.identity)
		if tt.wantErr {
			assert.Error(t, err, "scope %s identity %q", tt.scope, tt.identity)
			continue
		}
		require.NoError(t, err, "scope %s identity %q", tt.scope, tt.identity)
		assert.Equal(t, tt.want, path)
	}
}

func TestIdentityFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"https://x.com/alice", "alice"},
		{"https://x.com/alice/", "alice"},
		{"https://x.com/alice/with_replies", "alice"},
		{"https://x.com/alice/likes?src=nav", "alice"},
		{"https://x.com/home", ""},
		{"https://x.com/i/bookmarks", ""},
		{"https://x.com/search?q=test", ""},
		{"https://x.com/Explore", ""},
		{"https://x.com/", ""},
		{"https://x.com", ""},
		{"://bad url", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, identityFromLocation(tt.location), "location %s", tt.location)
	}
}

package capture

import (
	"fmt"
	"net/url"
	"strings"

	errs "xscraper/pkg/errors"
)

// Scope is one logical view of an account, processed as one independent
// capture phase.
type Scope string

const (
	ScopeTweets    Scope = "tweets"
	ScopeReplies   Scope = "replies"
	ScopeLikes     Scope = "likes"
	ScopeBookmarks Scope = "bookmarks"
)

// ParseScope converts a scope tag into a Scope.
func ParseScope(tag string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(tag))) {
	case ScopeTweets:
		return ScopeTweets, nil
	case ScopeReplies:
		return ScopeReplies, nil
	case ScopeLikes:
		return ScopeLikes, nil
	case ScopeBookmarks:
		return ScopeBookmarks, nil
	default:
		return "", fmt.Errorf("unknown scope %q", tag)
	}
}

// ParseScopes converts a list of scope tags, preserving order.
func ParseScopes(tags []string) ([]Scope, error) {
	scopes := make([]Scope, 0, len(tags))
	for _, tag := range tags {
		scope, err := ParseScope(tag)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// identityIndependent reports whether the scope's destination can be resolved
// without knowing the account identity.
func (s Scope) identityIndependent() bool {
	return s == ScopeBookmarks
}

// destinationPath resolves the scope to a site path. Scopes other than
// bookmarks require the account identity.
func (s Scope) destinationPath(identity string) (string, error) {
	if !s.identityIndependent() && identity == "" {
		return "", errs.New(errs.ErrorTypeNavigation,
			fmt.Sprintf("scope %s requires a resolved account identity", s))
	}

	switch s {
	case ScopeTweets:
		return "/" + identity, nil
	case ScopeReplies:
		return "/" + identity + "/with_replies", nil
	case ScopeLikes:
		return "/" + identity + "/likes", nil
	case ScopeBookmarks:
		return "/i/bookmarks", nil
	default:
		return "", errs.New(errs.ErrorTypeNavigation, fmt.Sprintf("unknown scope %q", s))
	}
}

// reservedSegments are leading path segments that never denote an account
// handle. A location starting with one of these cannot seed the cached
// identity.
var reservedSegments = map[string]bool{
	"home":          true,
	"explore":       true,
	"notifications": true,
	"messages":      true,
	"i":             true,
	"search":        true,
	"settings":      true,
	"compose":       true,
	"login":         true,
	"logout":        true,
	"intent":        true,
}

// identityFromLocation extracts the account handle from a location when its
// leading path segment is not reserved. Returns "" when the location carries
// no identity.
func identityFromLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}

	segment := strings.SplitN(path, "/", 2)[0]
	if reservedSegments[strings.ToLower(segment)] {
		return ""
	}
	return segment
}

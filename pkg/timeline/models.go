package timeline

import "encoding/json"

// Instruction kinds that appear in paginated timeline updates. Anything not
// listed here is treated as unrecognized and skipped without touching the
// collector.
const (
	KindAddEntries        = "TimelineAddEntries"
	KindReplaceEntry      = "TimelineReplaceEntry"
	KindAddToModule       = "TimelineAddToModule"
	KindClearCache        = "TimelineClearCache"
	KindTerminateTimeline = "TimelineTerminateTimeline"
	KindPinEntry          = "TimelinePinEntry"
)

// itemTypeTweet marks the only entry item type that flattens to a Record.
// Cursors, user suggestions and other structural items carry different types
// and are dropped.
const itemTypeTweet = "TimelineTweet"

// Record is a flattened tweet extracted from a timeline entity node.
//
// Engagement counts are exposed under both short and descriptive JSON names;
// both reflect the same source values. ParentIDs holds the ids of records
// this one depends on contextually (reply parent, quoted tweet, retweet
// source), in extraction order, duplicates preserved, never including the
// record's own id. The JSON field names match what downstream consumers of
// the captured .jsonl files expect.
type Record struct {
	ID        string `json:"tweet_id"`
	CreatedAt string `json:"created_at,omitempty"`
	Text      string `json:"text"`
	Lang      string `json:"lang,omitempty"`

	Favorite int `json:"favorite"`
	Retweet  int `json:"retweet"`
	Reply    int `json:"reply"`
	Quote    int `json:"quote"`

	FavoriteCount int `json:"favorite_count"`
	RetweetCount  int `json:"retweet_count"`
	ReplyCount    int `json:"reply_count"`
	QuoteCount    int `json:"quote_count"`

	AuthorHandle string   `json:"screen_name,omitempty"`
	ParentIDs    []string `json:"parent_ids,omitempty"`

	// Raw preserves the original entity node so downstream tooling can
	// reach fields the flattener does not surface.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Collector receives flattened records during extraction. The dedup store
// satisfies this interface; Add reports whether the record was actually
// inserted (false for duplicates), and Clear is invoked when an in-stream
// TimelineClearCache instruction arrives.
type Collector interface {
	Add(rec Record) bool
	Clear()
}

package timeline

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Flatten converts a raw tweet entity node into a Record. It is pure and
// never fails: absent nested objects behave as empty, so a node with no
// optional fields yields zero values and an empty ParentIDs list.
func Flatten(node gjson.Result) Record {
	legacy := node.Get("legacy")

	id := node.Get("rest_id").String()
	if id == "" {
		id = legacy.Get("id_str").String()
	}

	// Text resolution order: longform note tweet first, then the legacy
	// full text, then the truncated legacy text.
	text := node.Get("note_tweet.note_tweet_results.result.text").String()
	if text == "" {
		text = legacy.Get("full_text").String()
	}
	if text == "" {
		text = legacy.Get("text").String()
	}

	handle := node.Get("core.user_results.result.core.screen_name").String()
	if handle == "" {
		handle = node.Get("core.user_results.result.legacy.screen_name").String()
	}

	rec := Record{
		ID:           id,
		CreatedAt:    legacy.Get("created_at").String(),
		Text:         text,
		Lang:         legacy.Get("lang").String(),
		Favorite:     int(legacy.Get("favorite_count").Int()),
		Retweet:      int(legacy.Get("retweet_count").Int()),
		Reply:        int(legacy.Get("reply_count").Int()),
		Quote:        int(legacy.Get("quote_count").Int()),
		AuthorHandle: handle,
	}
	rec.FavoriteCount = rec.Favorite
	rec.RetweetCount = rec.Retweet
	rec.ReplyCount = rec.Reply
	rec.QuoteCount = rec.Quote

	rec.ParentIDs = parentIDs(node, legacy, id)

	if node.Exists() {
		rec.Raw = json.RawMessage(node.Raw)
	}
	return rec
}

// parentIDs gathers relationship ids in a fixed order: referenced-tweet ids,
// the reply-to id, the quoted-status id, the nested quoted record's own id
// and the retweeted original's id. Each is included only when present and not
// equal to the record's own id; duplicates between sources are kept.
func parentIDs(node, legacy gjson.Result, own string) []string {
	var ids []string
	add := func(v string) {
		if v != "" && v != own {
			ids = append(ids, v)
		}
	}

	legacy.Get("referenced_tweets").ForEach(func(_, ref gjson.Result) bool {
		add(ref.Get("id").String())
		return true
	})
	add(legacy.Get("in_reply_to_status_id_str").String())
	add(legacy.Get("quoted_status_id_str").String())
	add(nodeID(unwrapResult(node.Get("quoted_status_result.result"))))
	add(nodeID(unwrapResult(legacy.Get("retweeted_status_result.result"))))

	return ids
}

// nodeID extracts the id of a nested tweet result, if any.
func nodeID(node gjson.Result) string {
	if id := node.Get("rest_id").String(); id != "" {
		return id
	}
	return node.Get("legacy.id_str").String()
}

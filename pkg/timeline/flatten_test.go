package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestFlattenFullNode(t *testing.T) {
	node := gjson.Parse(`{
		"rest_id": "100",
		"core": {"user_results": {"result": {"core": {"screen_name": "alice"}}}},
		"legacy": {
			"created_at": "Mon Jan 01 00:00:00 +0000 2024",
			"full_text": "hello world",
			"lang": "en",
			"favorite_count": 3,
			"retweet_count": 2,
			"reply_count": 1,
			"quote_count": 4
		}
	}`)

	rec := Flatten(node)

	assert.Equal(t, "100", rec.ID)
	assert.Equal(t, "Mon Jan 01 00:00:00 +0000 2024", rec.CreatedAt)
	assert.Equal(t, "hello world", rec.Text)
	assert.Equal(t, "en", rec.Lang)
	assert.Equal(t, "alice", rec.AuthorHandle)
	assert.Equal(t, 3, rec.Favorite)
	assert.Equal(t, 2, rec.Retweet)
	assert.Equal(t, 1, rec.Reply)
	assert.Equal(t, 4, rec.Quote)
	assert.Equal(t, rec.Favorite, rec.FavoriteCount)
	assert.Equal(t, rec.Retweet, rec.RetweetCount)
	assert.Equal(t, rec.Reply, rec.ReplyCount)
	assert.Equal(t, rec.Quote, rec.QuoteCount)
	assert.Empty(t, rec.ParentIDs)
	assert.JSONEq(t, node.Raw, string(rec.Raw))
}

func TestFlattenIDFallsBackToLegacy(t *testing.T) {
	rec := Flatten(gjson.Parse(`{"legacy": {"id_str": "200", "full_text": "x"}}`))
	assert.Equal(t, "200", rec.ID)
}

func TestFlattenTextPrecedence(t *testing.T) {
	// Longform note text beats the legacy full text, which beats the
	// truncated legacy text.
	note := gjson.Parse(`{
		"rest_id": "1",
		"note_tweet": {"note_tweet_results": {"result": {"text": "the long version"}}},
		"legacy": {"full_text": "the short version", "text": "the shorter version"}
	}`)
	assert.Equal(t, "the long version", Flatten(note).Text)

	full := gjson.Parse(`{"rest_id": "1", "legacy": {"full_text": "full", "text": "short"}}`)
	assert.Equal(t, "full", Flatten(full).Text)

	short := gjson.Parse(`{"rest_id": "1", "legacy": {"text": "short"}}`)
	assert.Equal(t, "short", Flatten(short).Text)
}

func TestFlattenHandleFallsBackToLegacy(t *testing.T) {
	node := gjson.Parse(`{
		"rest_id": "1",
		"core": {"user_results": {"result": {"legacy": {"screen_name": "bob"}}}}
	}`)
	assert.Equal(t, "bob", Flatten(node).AuthorHandle)
}

func TestFlattenParentIDOrder(t *testing.T) {
	// Relationship ids come out in source order: referenced tweets first,
	// then reply parent, quoted id, nested quoted result, retweet source.
	// Duplicates between sources are kept.
	node := gjson.Parse(`{
		"rest_id": "1",
		"legacy": {
			"referenced_tweets": [{"id": "2"}, {"id": "3"}],
			"in_reply_to_status_id_str": "2",
			"quoted_status_id_str": "4"
		},
		"quoted_status_result": {"result": {"rest_id": "4"}}
	}`)

	rec := Flatten(node)
	assert.Equal(t, []string{"2", "3", "2", "4", "4"}, rec.ParentIDs)
}

func TestFlattenParentIDsExcludeOwnID(t *testing.T) {
	node := gjson.Parse(`{
		"rest_id": "1",
		"legacy": {
			"referenced_tweets": [{"id": "1"}, {"id": "5"}],
			"in_reply_to_status_id_str": "1"
		}
	}`)

	rec := Flatten(node)
	assert.Equal(t, []string{"5"}, rec.ParentIDs)
}

func TestFlattenRetweetSource(t *testing.T) {
	node := gjson.Parse(`{
		"rest_id": "1",
		"legacy": {
			"full_text": "RT @alice: original",
			"retweeted_status_result": {"result": {
				"__typename": "TweetWithVisibilityResults",
				"tweet": {"rest_id": "9"}
			}}
		}
	}`)

	rec := Flatten(node)
	assert.Equal(t, []string{"9"}, rec.ParentIDs)
}

func TestFlattenQuotedResultLegacyID(t *testing.T) {
	node := gjson.Parse(`{
		"rest_id": "1",
		"quoted_status_result": {"result": {"legacy": {"id_str": "8"}}}
	}`)

	rec := Flatten(node)
	assert.Equal(t, []string{"8"}, rec.ParentIDs)
}

func TestFlattenEmptyNode(t *testing.T) {
	rec := Flatten(gjson.Parse(`{}`))

	assert.Empty(t, rec.ID)
	assert.Empty(t, rec.Text)
	assert.Zero(t, rec.Favorite)
	assert.Nil(t, rec.ParentIDs)
	require.NotNil(t, rec.Raw)
	assert.JSONEq(t, `{}`, string(rec.Raw))
}

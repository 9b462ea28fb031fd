package timeline

import (
	"github.com/tidwall/gjson"

	"xscraper/pkg/logger"
)

// Extract walks every instruction of a timeline container, flattens the tweet
// entities it finds and hands them to the collector. It returns the number of
// records the collector actually inserted.
//
// TimelineClearCache clears the collector the moment it is encountered;
// entities from later instructions in the same container are still added
// afterwards. Unrecognized instruction kinds are skipped without side
// effects.
func Extract(container gjson.Result, c Collector, log logger.Logger) int {
	added := 0
	container.Get("instructions").ForEach(func(_, ins gjson.Result) bool {
		kind := ins.Get("type").String()
		switch kind {
		case KindClearCache:
			log.Debug("clear cache instruction, dropping accumulated records")
			c.Clear()
			return true
		case KindAddEntries, KindReplaceEntry, KindAddToModule,
			KindTerminateTimeline, KindPinEntry:
			added += walkEntries(entryList(ins), c, log)
		default:
			log.WithField("kind", kind).Debug("skipping unrecognized instruction")
		}
		return true
	})
	return added
}

// entryList resolves an instruction to its entry list. The three fallbacks
// are evaluated independently and in order: a non-null `entries` array wins,
// then a non-null single `entry`, then the module item list. Collapsing the
// first two into one boolean test silently discards module-sourced entries
// whenever both are absent, so each step stands on its own.
func entryList(ins gjson.Result) []gjson.Result {
	if entries := ins.Get("entries"); entries.Exists() && entries.Type != gjson.Null {
		return entries.Array()
	}
	if entry := ins.Get("entry"); entry.Exists() && entry.Type != gjson.Null {
		return []gjson.Result{entry}
	}
	if items := ins.Get("module.items"); items.Exists() && items.Type != gjson.Null {
		return items.Array()
	}
	if items := ins.Get("moduleItems"); items.Exists() && items.Type != gjson.Null {
		return items.Array()
	}
	return nil
}

// walkEntries expands grouping wrappers breadth-first and flattens each leaf
// entry that resolves to a tweet entity. Structural entries (cursors, pins,
// non-tweet items) are dropped silently.
func walkEntries(entries []gjson.Result, c Collector, log logger.Logger) int {
	added := 0
	queue := make([]gjson.Result, len(entries))
	copy(queue, entries)

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		if items := wrapperItems(entry); items != nil {
			queue = append(queue, items...)
			continue
		}

		node, ok := resolveEntity(entry)
		if !ok {
			continue
		}

		rec := Flatten(node)
		if rec.ID == "" {
			log.Debug("entity node without id, dropping")
			continue
		}
		if c.Add(rec) {
			added++
		}
	}
	return added
}

// wrapperItems returns the nested entry list when the entry is a grouping
// wrapper (a thread or media module delivered as one logical unit), or nil
// for leaf and structural entries.
func wrapperItems(entry gjson.Result) []gjson.Result {
	if items := entry.Get("content.items"); items.IsArray() {
		return items.Array()
	}
	if items := entry.Get("items"); items.IsArray() {
		return items.Array()
	}
	return nil
}

// resolveEntity locates the tweet entity node within a leaf entry. Both known
// nesting shapes are tried: top-level entries carry `content.itemContent`,
// module items carry `item.itemContent`. Entries whose item content is not
// tweet-typed are structural and yield no entity.
func resolveEntity(entry gjson.Result) (gjson.Result, bool) {
	ic := entry.Get("content.itemContent")
	if !ic.Exists() {
		ic = entry.Get("item.itemContent")
	}
	if !ic.Exists() {
		return gjson.Result{}, false
	}

	if t := ic.Get("itemType").String(); t != "" && t != itemTypeTweet {
		return gjson.Result{}, false
	}
	if t := ic.Get("__typename").String(); t != "" && t != itemTypeTweet {
		return gjson.Result{}, false
	}

	node := unwrapResult(ic.Get("tweet_results.result"))
	if !node.Exists() {
		return gjson.Result{}, false
	}
	return node, true
}

// unwrapResult peels the visibility wrapper some tweet results arrive in.
func unwrapResult(node gjson.Result) gjson.Result {
	if node.Get("__typename").String() == "TweetWithVisibilityResults" {
		return node.Get("tweet")
	}
	return node
}

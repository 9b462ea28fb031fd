package timeline

import "github.com/tidwall/gjson"

// Locate finds the paginated-update container inside an arbitrarily shaped
// payload. It performs a pre-order depth-first search over the value graph:
// if the current object exposes an `instructions` array it is returned
// immediately, so the outermost container wins when containers are nested.
// The second return value is false when no container exists anywhere in the
// payload; that is an expected outcome for unrelated responses, not an error.
func Locate(payload gjson.Result) (gjson.Result, bool) {
	if payload.IsObject() {
		if payload.Get("instructions").IsArray() {
			return payload, true
		}
	}

	if !payload.IsObject() && !payload.IsArray() {
		return gjson.Result{}, false
	}

	var found gjson.Result
	ok := false
	payload.ForEach(func(_, value gjson.Result) bool {
		if container, hit := Locate(value); hit {
			found = container
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

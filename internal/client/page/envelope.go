package page

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeEnvelope decodes one page response body. The backend uses two
// envelope shapes: a bare JSON array (termination signaled by page length),
// and an object carrying the items under listKey plus an explicit has_more
// flag and a next-cursor pair. Both are supported here so every endpoint
// decodes through the same path.
func DecodeEnvelope[T any](body []byte, listKey string) (Result[T], error) {
	var res Result[T]

	root := gjson.ParseBytes(body)
	if root.IsArray() {
		if err := json.Unmarshal(body, &res.Items); err != nil {
			return res, fmt.Errorf("failed to decode page items: %w", err)
		}
		return res, nil
	}

	items := root.Get(listKey)
	if !items.Exists() {
		return res, fmt.Errorf("page envelope missing %q", listKey)
	}
	if err := json.Unmarshal([]byte(items.Raw), &res.Items); err != nil {
		return res, fmt.Errorf("failed to decode page items: %w", err)
	}

	if hm := firstOf(root, "has_more", "hasMore"); hm.Exists() {
		v := hm.Bool()
		res.HasMore = &v
	}
	if id := firstOf(root, "cursor_id", "cursorId"); id.Exists() && id.Type != gjson.Null {
		v := id.Int()
		res.NextID = &v
	}
	if ts := firstOf(root, "cursor_created_at", "cursorCreatedAt"); ts.Exists() && ts.Type != gjson.Null {
		v := ts.String()
		res.NextCreatedAt = &v
	}
	return res, nil
}

// firstOf returns the first existing field among the given keys. The backend
// is inconsistent between snake_case and camelCase across endpoints.
func firstOf(root gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

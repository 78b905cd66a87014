package sink

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"csvsink/internal/constants"
	"csvsink/internal/message"
)

// renderValue turns one record field into its cell text. Scalars go
// through cast; nested structures land in a single cell as their JSON
// rendering instead of being flattened into extra columns. Nil renders
// as the empty cell.
func renderValue(v interface{}) string {
	if v == nil {
		return ""
	}

	switch v.(type) {
	case *message.Fields, []interface{}, map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

// flattenFields rewrites nested objects into sibling columns joined by
// the flatten separator, depth first, preserving encounter order.
// Lists are left alone and render as single cells.
func flattenFields(fields *message.Fields) *message.Fields {
	out := orderedmap.New[string, interface{}]()
	flattenInto(out, "", fields)
	return out
}

func flattenInto(out *message.Fields, prefix string, fields *message.Fields) {
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		if prefix != "" {
			key = prefix + constants.FlattenSeparator + pair.Key
		}
		if nested, ok := pair.Value.(*message.Fields); ok {
			flattenInto(out, key, nested)
			continue
		}
		out.Set(key, pair.Value)
	}
}

package filters

import (
	"net/url"
	"strings"
)

// User columns usable in predicates.
const (
	ColumnName    = "name"
	ColumnBlocked = "blocked"
	ColumnType    = "type"
)

const BlockedMessage = "Blocked must be 0 or 1"

// UserSpec builds the spec of GET /users. name is a substring match and
// blocked must be exactly "0" or "1".
func UserSpec(q url.Values) (*Spec, error) {
	page, err := ParsePage(q)
	if err != nil {
		return nil, err
	}

	spec := &Spec{Page: page, Sort: Sort{Column: ColumnID, Direction: Asc}}

	if name := strings.TrimSpace(q.Get("name")); name != "" {
		spec.setParam("name", name)
		spec.Add(Substring{Field: ColumnName, Value: name})
	}

	if q.Has("blocked") {
		raw := q.Get("blocked")
		switch raw {
		case "0":
			spec.Add(Equality{Field: ColumnBlocked, Value: false})
		case "1":
			spec.Add(Equality{Field: ColumnBlocked, Value: true})
		default:
			return nil, &QueryError{Param: "blocked", Message: BlockedMessage}
		}
		spec.setParam("blocked", raw)
	}

	return spec, nil
}

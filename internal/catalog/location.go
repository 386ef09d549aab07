package catalog

// Location is where a parameter travels in an HTTP request.
type Location int

const (
	InQuery Location = iota
	InPath
	InHeader
	InCookie
)

// ParseLocation maps an OpenAPI "in" field to a Location. Unknown values
// degrade to InQuery, matching the builder's best-effort policy.
func ParseLocation(in string) Location {
	switch in {
	case "path":
		return InPath
	case "header":
		return InHeader
	case "cookie":
		return InCookie
	default:
		return InQuery
	}
}

func (l Location) String() string {
	switch l {
	case InPath:
		return "path"
	case InHeader:
		return "header"
	case InCookie:
		return "cookie"
	default:
		return "query"
	}
}

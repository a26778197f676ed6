package domain

// GroupType is the closed three-way category a target person belongs to.
// The set is fixed; stored documents carrying any other tag are filtered out
// at partition time rather than surfaced as errors.
type GroupType string

const (
	GroupMember    GroupType = "member"
	GroupActivist  GroupType = "activist"
	GroupSupporter GroupType = "supporter"
)

// GroupTypes returns the categories in their fixed display order.
func GroupTypes() [3]GroupType {
	return [3]GroupType{GroupMember, GroupActivist, GroupSupporter}
}

// ParseGroupType maps a raw tag to a known category.
func ParseGroupType(s string) (GroupType, bool) {
	switch g := GroupType(s); g {
	case GroupMember, GroupActivist, GroupSupporter:
		return g, true
	default:
		return "", false
	}
}

// Valid reports whether g is one of the three known categories.
func (g GroupType) Valid() bool {
	_, ok := ParseGroupType(string(g))
	return ok
}

func (g GroupType) String() string { return string(g) }

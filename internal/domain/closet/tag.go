package closet

import (
	"regexp"
	"strings"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// OtherTagGroupID is the reserved fallback tag group. Tags from deleted groups land here.
var OtherTagGroupID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

// OtherTagGroupName is the display name of the fallback tag group
const OtherTagGroupName = "Other"

// DefaultTagColor is used when a tag is created without a color
const DefaultTagColor = "#9E9E9E"

var tagColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TagGroup is a named set of tags such as "Season" or "Occasion"
type TagGroup struct {
	shared.BaseAggregateRoot
	Name      string
	NameKey   string
	SortOrder int
	Tags      []Tag
}

// NewTagGroup creates a new tag group
func NewTagGroup(name string, sortOrder int) (*TagGroup, error) {
	if err := validateLabel("tag group", name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	return &TagGroup{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NameKey:           FoldName(name),
		SortOrder:         sortOrder,
	}, nil
}

// NewOtherTagGroup builds the reserved fallback group
func NewOtherTagGroup() *TagGroup {
	return &TagGroup{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.NewBaseEntityWithID(OtherTagGroupID),
			Version:    1,
		},
		Name:      OtherTagGroupName,
		NameKey:   FoldName(OtherTagGroupName),
		SortOrder: 1 << 20,
	}
}

// IsReserved reports whether this is the fallback group
func (g *TagGroup) IsReserved() bool {
	return g.ID == OtherTagGroupID
}

// Update renames and reorders the group
func (g *TagGroup) Update(name string, sortOrder int) error {
	if g.IsReserved() {
		return shared.NewDomainError("RESERVED_TAG_GROUP", "The Other tag group cannot be modified")
	}
	if err := validateLabel("tag group", name); err != nil {
		return err
	}
	g.Name = strings.TrimSpace(name)
	g.NameKey = FoldName(name)
	g.SortOrder = sortOrder
	g.Modified()
	return nil
}

// CanDelete checks that the group may be removed
func (g *TagGroup) CanDelete() error {
	if g.IsReserved() {
		return shared.NewDomainError("RESERVED_TAG_GROUP", "The Other tag group cannot be deleted")
	}
	return nil
}

// Tag labels items, e.g. "Summer" in the "Season" group
type Tag struct {
	shared.BaseAggregateRoot
	GroupID uuid.UUID
	Name    string
	NameKey string
	Color   string
}

// NewTag creates a tag inside a group
func NewTag(groupID uuid.UUID, name, color string) (*Tag, error) {
	if groupID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_GROUP", "Tag group is required")
	}
	if err := validateLabel("tag", name); err != nil {
		return nil, err
	}
	color, err := normalizeColor(color)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	return &Tag{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		GroupID:           groupID,
		Name:              name,
		NameKey:           FoldName(name),
		Color:             color,
	}, nil
}

// Update changes the tag's name and color
func (t *Tag) Update(name, color string) error {
	if err := validateLabel("tag", name); err != nil {
		return err
	}
	color, err := normalizeColor(color)
	if err != nil {
		return err
	}
	t.Name = strings.TrimSpace(name)
	t.NameKey = FoldName(name)
	t.Color = color
	t.Modified()
	return nil
}

// MoveToGroup reassigns the tag to another group
func (t *Tag) MoveToGroup(groupID uuid.UUID) {
	t.GroupID = groupID
	t.Modified()
}

func normalizeColor(color string) (string, error) {
	if color == "" {
		return DefaultTagColor, nil
	}
	if !tagColorRegex.MatchString(color) {
		return "", shared.NewDomainError("INVALID_COLOR", "Color must be a hex value like #A1B2C3")
	}
	return strings.ToUpper(color), nil
}

package taxonomy

import (
	"github.com/google/uuid"
)

// Category -> Subcategory -> Group -> Item is a strict tree; every level has
// exactly one parent.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
}

type Subcategory struct {
	ID          uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
}

type Group struct {
	ID            uuid.UUID
	SubcategoryID uuid.UUID
	Name          string
	Description   string
}

type Item struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	Name        string
	Description string
	Keywords    []string
}

// Hierarchy carries the display names of an item's ancestors. A nil level
// means it could not be resolved.
type Hierarchy struct {
	Category    *string
	Subcategory *string
	Group       *string
}

// CategoryName returns the category label or fallback when unresolved.
func (h Hierarchy) CategoryName(fallback string) string {
	if h.Category == nil || *h.Category == "" {
		return fallback
	}
	return *h.Category
}

package dto

import (
	"skillgap/internal/usecase"

	"github.com/google/uuid"
)

type TaxonomyItemResponse struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	Category    *string   `json:"category"`
	Subcategory *string   `json:"subcategory"`
	Group       *string   `json:"group"`
}

func NewTaxonomyItemResponse(d usecase.TaxonomyItemDetail) TaxonomyItemResponse {
	keywords := d.Item.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return TaxonomyItemResponse{
		ID:          d.Item.ID,
		GroupID:     d.Item.GroupID,
		Name:        d.Item.Name,
		Description: d.Item.Description,
		Keywords:    keywords,
		Category:    d.Hierarchy.Category,
		Subcategory: d.Hierarchy.Subcategory,
		Group:       d.Hierarchy.Group,
	}
}

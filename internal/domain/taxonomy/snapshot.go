package taxonomy

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// namespace seeds ids for snapshot nodes that do not carry one, so loading the
// same file twice always yields the same ids.
var namespace = uuid.MustParse("6f1c2a3e-6a52-4a55-9a43-3c1f0c7e2b10")

// Snapshot is the nested JSON form of the taxonomy tree used for seeding and
// for offline normalization.
type Snapshot struct {
	Categories []SnapshotCategory `json:"categories"`
}

type SnapshotCategory struct {
	ID            *uuid.UUID            `json:"id,omitempty"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Subcategories []SnapshotSubcategory `json:"subcategories"`
}

type SnapshotSubcategory struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Groups      []SnapshotGroup `json:"groups"`
}

type SnapshotGroup struct {
	ID          *uuid.UUID     `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Items       []SnapshotItem `json:"items"`
}

type SnapshotItem struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
}

// Tree is the flattened form of a Snapshot, parents always listed before
// their children.
type Tree struct {
	Categories    []Category
	Subcategories []Subcategory
	Groups        []Group
	Items         []Item
}

func ParseSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, errors.Wrap(err, "decode taxonomy snapshot")
	}
	return s, nil
}

// Flatten validates the snapshot and assigns ids. Names must be non-empty and
// ids unique across the whole tree.
func (s Snapshot) Flatten() (Tree, error) {
	var t Tree
	seen := make(map[uuid.UUID]string)

	assign := func(explicit *uuid.UUID, path string) (uuid.UUID, error) {
		id := uuid.NewSHA1(namespace, []byte(strings.ToLower(path)))
		if explicit != nil && *explicit != uuid.Nil {
			id = *explicit
		}
		if prev, dup := seen[id]; dup {
			return uuid.Nil, errors.Errorf("duplicate taxonomy id %s (%q and %q)", id, prev, path)
		}
		seen[id] = path
		return id, nil
	}

	for _, c := range s.Categories {
		cName := strings.TrimSpace(c.Name)
		if cName == "" {
			return Tree{}, errors.New("taxonomy category without name")
		}
		cID, err := assign(c.ID, cName)
		if err != nil {
			return Tree{}, err
		}
		t.Categories = append(t.Categories, Category{ID: cID, Name: cName, Description: c.Description})

		for _, sc := range c.Subcategories {
			scName := strings.TrimSpace(sc.Name)
			if scName == "" {
				return Tree{}, errors.Errorf("subcategory without name under %q", cName)
			}
			scPath := cName + "/" + scName
			scID, err := assign(sc.ID, scPath)
			if err != nil {
				return Tree{}, err
			}
			t.Subcategories = append(t.Subcategories, Subcategory{ID: scID, CategoryID: cID, Name: scName, Description: sc.Description})

			for _, g := range sc.Groups {
				gName := strings.TrimSpace(g.Name)
				if gName == "" {
					return Tree{}, errors.Errorf("group without name under %q", scPath)
				}
				gPath := scPath + "/" + gName
				gID, err := assign(g.ID, gPath)
				if err != nil {
					return Tree{}, err
				}
				t.Groups = append(t.Groups, Group{ID: gID, SubcategoryID: scID, Name: gName, Description: g.Description})

				for _, it := range g.Items {
					iName := strings.TrimSpace(it.Name)
					if iName == "" {
						return Tree{}, errors.Errorf("item without name under %q", gPath)
					}
					iID, err := assign(it.ID, gPath+"/"+iName)
					if err != nil {
						return Tree{}, err
					}
					keywords := it.Keywords
					if keywords == nil {
						keywords = []string{}
					}
					t.Items = append(t.Items, Item{ID: iID, GroupID: gID, Name: iName, Description: it.Description, Keywords: keywords})
				}
			}
		}
	}
	return t, nil
}

// Package domain contains the catalog record type and the pure text
// transforms applied to it.
package domain

// =============================================================================
// Pokemon
// =============================================================================

// Pokemon is one catalog entry (a species or one of its alternate forms).
//
// ID is the 1-based position in the load order of the current catalog
// generation. It is reassigned wholesale on every reload and is not a stable
// external key. Number is the domain identifier and may be shared by several
// forms of the same species.
type Pokemon struct {
	ID             int     `json:"id" yaml:"-" db:"-"`
	Number         int     `json:"number" yaml:"number" db:"number"`
	Name           string  `json:"name" yaml:"name" db:"name"`
	TypeOne        string  `json:"type_one" yaml:"type_one" db:"type_one"`
	TypeTwo        *string `json:"type_two" yaml:"type_two,omitempty" db:"type_two"`
	Total          int     `json:"total" yaml:"total" db:"total"`
	HitPoints      int     `json:"hit_points" yaml:"hit_points" db:"hit_points"`
	Attack         int     `json:"attack" yaml:"attack" db:"attack"`
	Defense        int     `json:"defense" yaml:"defense" db:"defense"`
	SpecialAttack  int     `json:"special_attack" yaml:"special_attack" db:"special_attack"`
	SpecialDefense int     `json:"special_defense" yaml:"special_defense" db:"special_defense"`
	Speed          int     `json:"speed" yaml:"speed" db:"speed"`
	Generation     int     `json:"generation" yaml:"generation" db:"generation"`
	Legendary      bool    `json:"legendary" yaml:"legendary" db:"legendary"`
	ImageURL       *string `json:"imageUrl,omitempty" yaml:"image_url,omitempty" db:"image_url"`

	// Captured is only meaningful on enriched copies returned to clients.
	Captured bool `json:"captured" yaml:"-" db:"-"`
}

// HasType reports whether either of the record's types equals t.
// An empty t never matches.
func (p Pokemon) HasType(t string) bool {
	if t == "" {
		return false
	}
	if p.TypeOne == t {
		return true
	}
	return p.TypeTwo != nil && *p.TypeTwo == t
}

// Types returns the non-empty types of the record, primary first.
func (p Pokemon) Types() []string {
	types := make([]string, 0, 2)
	if p.TypeOne != "" {
		types = append(types, p.TypeOne)
	}
	if p.TypeTwo != nil && *p.TypeTwo != "" {
		types = append(types, *p.TypeTwo)
	}
	return types
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

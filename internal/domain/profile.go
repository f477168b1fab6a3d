package domain

import "fmt"

// UserProfile es la seleccion del usuario expresada como vector de flags.
// Solo NewUserProfile garantiza una seleccion por categoria; el valor cero
// (todo en 0) es valido y puntua 0 contra cualquier raza.
type UserProfile struct {
	Flags FlagVector
}

// NewUserProfile construye el perfil a partir de una seleccion por categoria.
func NewUserProfile(selections map[Category]Flag) (UserProfile, error) {
	var p UserProfile
	for _, c := range AllCategories() {
		f, ok := selections[c]
		if !ok {
			return UserProfile{}, fmt.Errorf("%w: %s", ErrMissingCategory, c.Key())
		}
		if !f.Valid() || f.Category() != c {
			return UserProfile{}, fmt.Errorf("%w: %s is not a %s option", ErrInvalidSelection, f, c.Key())
		}
		p.Flags.Set(f)
	}
	for c := range selections {
		if !c.Valid() {
			return UserProfile{}, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
		}
	}
	return p, nil
}

// ParseSelections traduce el mapa categoria->opcion recibido por la API.
func ParseSelections(raw map[string]string) (map[Category]Flag, error) {
	out := make(map[Category]Flag, len(raw))
	for ck, fk := range raw {
		c, err := ParseCategory(ck)
		if err != nil {
			return nil, err
		}
		f, err := ParseFlag(fk)
		if err != nil {
			return nil, err
		}
		if _, dup := out[c]; dup {
			return nil, fmt.Errorf("%w: duplicate selection for %s", ErrInvalidSelection, c.Key())
		}
		out[c] = f
	}
	return out, nil
}

// Selections devuelve el flag elegido por categoria (si hay uno).
func (p UserProfile) Selections() map[Category]Flag {
	out := make(map[Category]Flag, NumCategories)
	for _, f := range AllFlags() {
		if p.Flags.Has(f) {
			out[f.Category()] = f
		}
	}
	return out
}

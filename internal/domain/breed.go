package domain

// BreedRecord es una fila del catalogo de razas. Name es la clave unica.
type BreedRecord struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Flags       FlagVector `json:"-"`
}

// MatchScore cuenta los flags que la raza comparte con el perfil.
func (b BreedRecord) MatchScore(p UserProfile) int {
	return b.Flags.Dot(p.Flags)
}

// Recommendation es una raza recomendada, en orden de ranking.
type Recommendation struct {
	BreedName   string  `json:"breed"`
	Description string  `json:"description"`
	MatchScore  int     `json:"match_score"`
	ImagePath   *string `json:"image_path"`
}

// Prediction es la salida del clasificador de imagenes.
type Prediction struct {
	Label         string             `json:"label"`
	Probabilities map[string]float64 `json:"probabilities"`
	Labels        []string           `json:"labels"`
}

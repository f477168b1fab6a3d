package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"catmatch/internal/domain"
)

// BreedRepository entrega el catalogo de razas ya unido y normalizado.
type BreedRepository interface {
	ListBreeds(ctx context.Context) ([]domain.BreedRecord, error)
}

// BreedRepositoryFunc adapta una funcion a BreedRepository.
type BreedRepositoryFunc func(ctx context.Context) ([]domain.BreedRecord, error)

func (f BreedRepositoryFunc) ListBreeds(ctx context.Context) ([]domain.BreedRecord, error) {
	return f(ctx)
}

type PgBreedRepository struct {
	pool *pgxpool.Pool
}

func NewPgBreedRepository(pool *pgxpool.Pool) *PgBreedRepository {
	return &PgBreedRepository{pool: pool}
}

// ListBreeds conserva todas las filas de breed_traits aunque no tengan descripcion.
func (r *PgBreedRepository) ListBreeds(ctx context.Context) ([]domain.BreedRecord, error) {
	const query = `
		SELECT
			t.cat_id,
			COALESCE(NULLIF(b.name, ''), t.name, t.cat_id) AS name,
			COALESCE(b.description, '') AS description,
			(COALESCE(t.clingy, 0) <> 0)::int,
			(COALESCE(t.independent, 0) <> 0)::int,
			(COALESCE(t.active, 0) <> 0)::int,
			(COALESCE(t.calm, 0) <> 0)::int,
			(COALESCE(t.curious, 0) <> 0)::int,
			(COALESCE(t.incurious, 0) <> 0)::int,
			(COALESCE(t.easy_to_train, 0) <> 0)::int,
			(COALESCE(t.hard_to_train, 0) <> 0)::int,
			(COALESCE(t.high_grooming, 0) <> 0)::int,
			(COALESCE(t.low_grooming, 0) <> 0)::int,
			(COALESCE(t.long_hair, 0) <> 0)::int,
			(COALESCE(t.short_hair, 0) <> 0)::int,
			(COALESCE(t.hairless, 0) <> 0)::int,
			(COALESCE(t.affectionate, 0) <> 0)::int,
			(COALESCE(t.reserved, 0) <> 0)::int
		FROM breed_traits t
		LEFT JOIN breeds b ON b.cat_id = t.cat_id
		ORDER BY t.position, t.cat_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalog := newBreedCollector()
	for rows.Next() {
		var (
			b     domain.BreedRecord
			flags [domain.NumFlags]int32
		)
		dest := []any{&b.ID, &b.Name, &b.Description}
		for i := range flags {
			dest = append(dest, &flags[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		b.Flags = flagsFromColumns(flags)
		catalog.add(b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return catalog.breeds(), nil
}

// flagsFromColumns lleva las columnas de rasgos a 0/1.
func flagsFromColumns(cols [domain.NumFlags]int32) domain.FlagVector {
	var v domain.FlagVector
	for i, c := range cols {
		if c != 0 {
			v[i] = 1
		}
	}
	return v
}

// breedCollector conserva el orden del catalogo y descarta nombres repetidos:
// gana la primera fila con cada nombre.
type breedCollector struct {
	seen map[string]struct{}
	out  []domain.BreedRecord
}

func newBreedCollector() *breedCollector {
	return &breedCollector{seen: make(map[string]struct{})}
}

func (c *breedCollector) add(b domain.BreedRecord) bool {
	if b.Name == "" {
		return false
	}
	if _, dup := c.seen[b.Name]; dup {
		return false
	}
	c.seen[b.Name] = struct{}{}
	c.out = append(c.out, b)
	return true
}

func (c *breedCollector) breeds() []domain.BreedRecord {
	return c.out
}

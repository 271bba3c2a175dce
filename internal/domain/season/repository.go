package season

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Season, bool, error)
	GetByYear(ctx context.Context, year int) (Season, bool, error)
	GetOrCreate(ctx context.Context, year int) (Season, error)
}

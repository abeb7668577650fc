package birthdays

import "context"

type Repository interface {
	Create(ctx context.Context, b Birthday) error
	Update(ctx context.Context, b Birthday) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Birthday, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Birthday, error)
}

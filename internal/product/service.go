package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mohirdev/delivery-api/internal/errs"
	"github.com/mohirdev/delivery-api/internal/product/entity"
	productrepo "github.com/mohirdev/delivery-api/internal/product/repo"
)

// Repository is the data access surface the service needs.
type Repository interface {
	Create(ctx context.Context, p *entity.Product) error
	List(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, p *entity.Product) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Update carries the allow-listed optional fields of a product update; only
// fields the caller explicitly set are applied.
type Update struct {
	Name  *string `json:"name"`
	Price *int64  `json:"price"`
}

// Service encapsulates product CRUD.
type Service struct {
	repo Repository
}

func NewService(db *sqlx.DB, r Repository) *Service {
	if r == nil {
		r = productrepo.NewProductRepo(db)
	}
	return &Service{repo: r}
}

func (s *Service) Create(ctx context.Context, name string, price int64) (*entity.Product, error) {
	p := &entity.Product{Name: name, Price: price}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]entity.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ApplyUpdate loads the product and applies only the fields set in upd.
func (s *Service) ApplyUpdate(ctx context.Context, id int64, upd Update) (*entity.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	rows, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// deleted between load and update
		return nil, errs.ErrNotFound
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.ErrNotFound
	}
	return nil
}

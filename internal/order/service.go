package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mohirdev/delivery-api/internal/errs"
	"github.com/mohirdev/delivery-api/internal/order/entity"
	orderrepo "github.com/mohirdev/delivery-api/internal/order/repo"
	productentity "github.com/mohirdev/delivery-api/internal/product/entity"
	"github.com/mohirdev/delivery-api/pkg/utilities"
)

// Repository is the data access surface the service needs.
type Repository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetDetail(ctx context.Context, id int64) (*entity.Detail, error)
	ListDetails(ctx context.Context) ([]entity.Detail, error)
	ListDetailsByUser(ctx context.Context, userID int64) ([]entity.Detail, error)
}

// ProductFinder checks that the referenced product exists; satisfied by the
// product service.
type ProductFinder interface {
	Get(ctx context.Context, id int64) (*productentity.Product, error)
}

// Service encapsulates order placement and listing. Orders always reference
// an existing user and product.
type Service struct {
	repo     Repository
	products ProductFinder
}

func NewService(db *sqlx.DB, r Repository, products ProductFinder) *Service {
	if r == nil {
		r = orderrepo.NewOrderRepo(db)
	}
	return &Service{repo: r, products: products}
}

// Place creates a PENDING order for the user. The product must exist;
// errs.ErrNotFound is returned otherwise.
func (s *Service) Place(ctx context.Context, userID, productID, quantity int64) (*entity.Detail, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	o := &entity.Order{
		Number:    utilities.NewOrderNumber(),
		Quantity:  quantity,
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.GetDetail(ctx, o.ID)
}

// ListAll returns every order with user and product embedded.
func (s *Service) ListAll(ctx context.Context) ([]entity.Detail, error) {
	return s.repo.ListDetails(ctx)
}

// Get returns one order or errs.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByUser returns the orders owned by one user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]entity.Detail, error) {
	return s.repo.ListDetailsByUser(ctx, userID)
}

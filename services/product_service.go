package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
)

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	CategoryID  string   `json:"category_id" binding:"required"`
	Price       int64    `json:"price" binding:"required,gte=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Images      []string `json:"images"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

// ProductService handles catalog reads and admin catalog writes.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo}
}

func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	categoryID, err := primitive.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		return nil, apperrors.ErrValidation
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	product := &models.Product{
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		Brand:       req.Brand,
		CategoryID:  categoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		IsActive:    true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.New(409, "Product slug already exists", nil)
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return product, nil
}

func (s *ProductService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter, page, limit int) (*ProductListResponse, error) {
	products, total, err := s.productRepo.FindAll(ctx, filter, page, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductListResponse{
		Products: products,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	if err := s.productRepo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *ProductService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// CreateCategory creates an active category with a unique slug.
func (s *ProductService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	category := &models.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
		IsActive:    true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.New(409, "Category slug already exists", nil)
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return category, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *ProductService) DeactivateCategory(ctx context.Context, id primitive.ObjectID) error {
	if err := s.categoryRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// Slugify lowercases a name and replaces whitespace runs with dashes.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

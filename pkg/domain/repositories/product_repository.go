package repositories

import "github.com/vsinha/prodplan/pkg/domain/entities"

// ProductRepository provides access to products and their compositions
type ProductRepository interface {
	GetProduct(id entities.ProductID) (*entities.Product, error)
	GetAllProducts() ([]*entities.Product, error)
	LoadProducts(products []*entities.Product) error
}

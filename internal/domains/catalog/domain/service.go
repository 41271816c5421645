package domain

import (
	"errors"
	"strings"
)

var (
	ErrNegativePrice   = errors.New("service price cannot be negative")
	ErrEmptyBundle     = errors.New("service must bundle at least one product")
	ErrDuplicateBundle = errors.New("service bundles the same product twice")
)

// ServiceProduct is one line of a service bundle: what a single execution consumes.
type ServiceProduct struct {
	ProductID             int64
	ProductBusinessAreaID int64
	Quantity              int64
	UnitType              UnitType
}

// ProductKey returns the key of the bundled product.
func (l ServiceProduct) ProductKey() ProductKey {
	return ProductKey{ID: l.ProductID, BusinessAreaID: l.ProductBusinessAreaID}
}

// Service is a priced, bookable bundle of products.
type Service struct {
	ID        int64
	Name      string
	Price     int64
	IsDefault bool
	IsActive  bool
	Products  []ServiceProduct
}

// Clone returns a deep copy.
func (s Service) Clone() Service {
	s.Products = append([]ServiceProduct(nil), s.Products...)
	return s
}

// Validate normalizes and checks the service and its bundle lines.
func (s *Service) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return ErrEmptyName
	}
	if s.Price < 0 {
		return ErrNegativePrice
	}
	if len(s.Products) == 0 {
		return ErrEmptyBundle
	}
	seen := make(map[ProductKey]struct{}, len(s.Products))
	for i := range s.Products {
		line := &s.Products[i]
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		unit, err := ParseUnitType(string(line.UnitType))
		if err != nil {
			return err
		}
		line.UnitType = unit
		if line.ProductBusinessAreaID <= 0 {
			return ErrInvalidBusinessArea
		}
		if _, dup := seen[line.ProductKey()]; dup {
			return ErrDuplicateBundle
		}
		seen[line.ProductKey()] = struct{}{}
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ProductType distinguishes physical goods from bookable services.
type ProductType string

const (
	ProductTypeGood    ProductType = "GOOD"
	ProductTypeService ProductType = "SERVICE"
)

// UnitType selects the large or small sale unit of a product.
type UnitType string

const (
	UnitLarge UnitType = "LARGE"
	UnitSmall UnitType = "SMALL"
)

var (
	ErrEmptyName             = errors.New("name is required")
	ErrInvalidProductType    = errors.New("product type must be GOOD or SERVICE")
	ErrInvalidUnitType       = errors.New("unit type must be LARGE or SMALL")
	ErrInvalidUnitConversion = errors.New("unit conversion must be at least 1")
	ErrNegativeTariff        = errors.New("tariff cannot be negative")
	ErrInvalidBusinessArea   = errors.New("business area is required")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
)

// ParseUnitType validates a raw unit type.
func ParseUnitType(raw string) (UnitType, error) {
	switch u := UnitType(strings.ToUpper(strings.TrimSpace(raw))); u {
	case UnitLarge, UnitSmall:
		return u, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnitType, raw)
	}
}

// ProductKey is the composite identity of a product.
type ProductKey struct {
	ID             int64
	BusinessAreaID int64
}

func (k ProductKey) String() string {
	return fmt.Sprintf("%d@%d", k.ID, k.BusinessAreaID)
}

// Product is a sellable good or service offered at one business area.
type Product struct {
	ID               int64
	BusinessAreaID   int64
	Name             string
	Type             ProductType
	LargeUnit        string
	SmallUnit        string
	Tariff           int64
	SmallUnitTariff  int64
	UnitConversion   int64
	DefaultServiceID *int64
	IsActive         bool
	IsSale           bool
}

// Key returns the composite key.
func (p Product) Key() ProductKey {
	return ProductKey{ID: p.ID, BusinessAreaID: p.BusinessAreaID}
}

// IsGood reports whether the product is stocked.
func (p Product) IsGood() bool { return p.Type == ProductTypeGood }

// TariffFor returns the price of one unit of the given size.
func (p Product) TariffFor(unit UnitType) int64 {
	if unit == UnitSmall {
		return p.SmallUnitTariff
	}
	return p.Tariff
}

// ToSmallUnits converts a quantity of the given unit into stock units.
func (p Product) ToSmallUnits(unit UnitType, quantity int64) int64 {
	if unit == UnitLarge {
		return quantity * p.conversion()
	}
	return quantity
}

func (p Product) conversion() int64 {
	if p.UnitConversion < 1 {
		return 1
	}
	return p.UnitConversion
}

// Validate normalizes and checks the product.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.LargeUnit = strings.TrimSpace(p.LargeUnit)
	p.SmallUnit = strings.TrimSpace(p.SmallUnit)
	p.Type = ProductType(strings.ToUpper(strings.TrimSpace(string(p.Type))))
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.BusinessAreaID <= 0 {
		return ErrInvalidBusinessArea
	}
	if p.Type != ProductTypeGood && p.Type != ProductTypeService {
		return ErrInvalidProductType
	}
	if p.Tariff < 0 || p.SmallUnitTariff < 0 {
		return ErrNegativeTariff
	}
	if p.UnitConversion == 0 {
		p.UnitConversion = 1
	}
	if p.UnitConversion < 1 {
		return ErrInvalidUnitConversion
	}
	return nil
}

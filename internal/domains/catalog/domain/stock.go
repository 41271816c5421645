package domain

// Stock is the on-hand quantity of a GOOD product at a business area, in small units.
type Stock struct {
	ProductID             int64
	ProductBusinessAreaID int64
	Quantity              int64
}

// ProductKey returns the key of the stocked product.
func (s Stock) ProductKey() ProductKey {
	return ProductKey{ID: s.ProductID, BusinessAreaID: s.ProductBusinessAreaID}
}

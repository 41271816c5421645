package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_ToSmallUnits(t *testing.T) {
	p := Product{UnitConversion: 10}
	assert.Equal(t, int64(30), p.ToSmallUnits(UnitLarge, 3))
	assert.Equal(t, int64(3), p.ToSmallUnits(UnitSmall, 3))

	unset := Product{}
	assert.Equal(t, int64(3), unset.ToSmallUnits(UnitLarge, 3))
}

func TestProduct_TariffFor(t *testing.T) {
	p := Product{Tariff: 150000, SmallUnitTariff: 16000}
	assert.Equal(t, int64(150000), p.TariffFor(UnitLarge))
	assert.Equal(t, int64(16000), p.TariffFor(UnitSmall))
}

func TestProduct_Validate(t *testing.T) {
	p := Product{Name: " Oksigen ", BusinessAreaID: 1, Type: "good"}
	require.NoError(t, p.Validate())
	assert.Equal(t, ProductTypeGood, p.Type)
	assert.Equal(t, int64(1), p.UnitConversion)

	bad := Product{Name: "X", BusinessAreaID: 1, Type: "FOOD"}
	require.ErrorIs(t, bad.Validate(), ErrInvalidProductType)
}

func TestService_ValidateRejectsDuplicateLines(t *testing.T) {
	s := Service{
		Name:  "Terapi Oksigen",
		Price: 50000,
		Products: []ServiceProduct{
			{ProductID: 1, ProductBusinessAreaID: 1, Quantity: 1, UnitType: UnitSmall},
			{ProductID: 1, ProductBusinessAreaID: 1, Quantity: 2, UnitType: UnitLarge},
		},
	}
	require.ErrorIs(t, s.Validate(), ErrDuplicateBundle)
}

func TestParseUnitType(t *testing.T) {
	u, err := ParseUnitType(" small ")
	require.NoError(t, err)
	assert.Equal(t, UnitSmall, u)

	_, err = ParseUnitType("box")
	require.ErrorIs(t, err, ErrInvalidUnitType)
}

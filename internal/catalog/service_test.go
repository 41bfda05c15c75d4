package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootzsu/orderbot/internal/domain"
)

func TestParseServiceInput(t *testing.T) {
	svc, err := ParseServiceInput("VPN setup\nOne device, one month\n16.00\n0.00042\n150\n-\n650")
	require.NoError(t, err)

	assert.Equal(t, "VPN setup", svc.Name)
	assert.Equal(t, "One device, one month", svc.Description)
	assert.True(t, svc.Active)

	require.NotNil(t, svc.PriceUSD)
	assert.Equal(t, 16.0, *svc.PriceUSD)
	require.NotNil(t, svc.PriceBTC)
	assert.Equal(t, 0.00042, *svc.PriceBTC)
	require.NotNil(t, svc.PriceStars)
	assert.Equal(t, int64(150), *svc.PriceStars)
	assert.Nil(t, svc.PriceEUR)
	require.NotNil(t, svc.PriceUAH)
	assert.Equal(t, 650.0, *svc.PriceUAH)
}

func TestParseServiceInputSkipsAllPrices(t *testing.T) {
	svc, err := ParseServiceInput("Consulting\nAsk anything\n-\n-\n-\n-\n-")
	require.NoError(t, err)

	assert.Nil(t, svc.PriceUSD)
	assert.Nil(t, svc.PriceBTC)
	assert.Nil(t, svc.PriceStars)
	assert.Nil(t, svc.PriceEUR)
	assert.Nil(t, svc.PriceUAH)
	// Only the operator-settled method remains usable.
	assert.Equal(t, []domain.PaymentMethod{domain.CurrencyStars}, svc.PaymentMethods())
}

func TestParseServiceInputErrors(t *testing.T) {
	cases := map[string]string{
		"too few lines":    "name\ndesc\n10\n-\n-",
		"empty name":       "\ndesc\n10\n-\n-\n-\n-",
		"negative price":   "name\ndesc\n-5\n-\n-\n-\n-",
		"non-numeric":      "name\ndesc\nten\n-\n-\n-\n-",
		"fractional stars": "name\ndesc\n-\n-\n1.5\n-\n-",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseServiceInput(input)
			assert.ErrorIs(t, err, ErrBadServiceInput)
		})
	}
}

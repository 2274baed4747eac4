package benefits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpected(t *testing.T) {
	testCases := []struct {
		dependants int
		cost       string
		net        string
	}{
		{0, "38.46", "1961.54"},
		{1, "57.69", "1942.31"},
		{2, "76.92", "1923.08"},
		{3, "96.15", "1903.85"},
	}

	for _, tc := range testCases {
		b := Expected(tc.dependants)
		assert.Equal(t, "52000.00", b.Salary.String())
		assert.Equal(t, "2000.00", b.Gross.String())
		assert.Equal(t, tc.cost, b.BenefitsCost.String(), "cost for %d dependants", tc.dependants)
		assert.Equal(t, tc.net, b.Net.String(), "net for %d dependants", tc.dependants)
		assert.Equal(t, b.Gross, b.BenefitsCost+b.Net)
	}
}

func TestParseMoney(t *testing.T) {
	testCases := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{in: "1961.54", want: 196154},
		{in: "1,961.54", want: 196154},
		{in: "$38.46", want: 3846},
		{in: " 52000 ", want: 5200000},
		{in: "2000.5", want: 200050},
		{in: "-3.10", want: -310},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.234", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := ParseMoney(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCheck(t *testing.T) {
	b := Expected(2)

	assert.NoError(t, b.Check("52,000.00", "2000.00", "76.92", "1923.08"))
	assert.NoError(t, b.Check("52000.00", "2000.00", "76.93", "1923.07"), "one cent tolerance")

	err := b.Check("52000.00", "2000.00", "38.46", "1961.54")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "benefits cost: got 38.46 want 76.92")
	assert.Contains(t, err.Error(), "net")

	assert.Error(t, b.Check("n/a", "2000.00", "76.92", "1923.08"))
}

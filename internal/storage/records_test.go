package storage

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumber_CoercesMixedRepresentations(t *testing.T) {
	cases := []struct {
		name string
		attr types.AttributeValue
		want float64
	}{
		{"number", &types.AttributeValueMemberN{Value: "12.5"}, 12.5},
		{"numeric string", &types.AttributeValueMemberS{Value: "7"}, 7},
		{"padded string", &types.AttributeValueMemberS{Value: " 3.25 "}, 3.25},
		{"garbage string", &types.AttributeValueMemberS{Value: "n/a"}, 0},
		{"empty string", &types.AttributeValueMemberS{Value: ""}, 0},
		{"null", &types.AttributeValueMemberNULL{Value: true}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n Number
			// a bad cell must coerce, never error out the batch
			assert.NoError(t, n.UnmarshalDynamoDBAttributeValue(tc.attr))
			assert.Equal(t, tc.want, float64(n))
		})
	}
}

func TestDecimal_KeepsExactValue(t *testing.T) {
	var d Decimal
	assert.NoError(t, d.UnmarshalDynamoDBAttributeValue(&types.AttributeValueMemberN{Value: "2.5"}))
	assert.True(t, d.Equal(decimal.RequireFromString("2.5")))

	// exactness survives values float64 cannot hold
	assert.NoError(t, d.UnmarshalDynamoDBAttributeValue(&types.AttributeValueMemberN{Value: "0.1"}))
	assert.Equal(t, "0.1", d.String())
}

func TestDecimal_CoercionFailureBecomesZero(t *testing.T) {
	d := Decimal{Decimal: decimal.RequireFromString("9")}
	assert.NoError(t, d.UnmarshalDynamoDBAttributeValue(&types.AttributeValueMemberS{Value: "??"}))
	assert.True(t, d.IsZero())
}

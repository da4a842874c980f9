package storage

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Item is one work order (pv) as stored in the item table. Field names match
// the stored attributes; everything under Data was written by the shop-floor
// capture app.
type Item struct {
	PV        string   `dynamodbav:"pv" json:"pv"`
	Timestamp string   `dynamodbav:"timestamp" json:"timestamp"`
	Posicion  int      `dynamodbav:"posicion" json:"posicion"`
	Data      ItemData `dynamodbav:"data" json:"data"`
}

type ItemData struct {
	CreatedAt                   string         `dynamodbav:"createdAt" json:"createdAt"`
	CantidadPerforacionesTotal  Number         `dynamodbav:"cantidadPerforacionesTotal" json:"cantidadPerforacionesTotal"`
	CantidadPerforacionesPlacas Number         `dynamodbav:"cantidadPerforacionesPlacas" json:"cantidadPerforacionesPlacas"`
	Kg                          Number         `dynamodbav:"kg" json:"kg"`
	TipoMecanizado              string         `dynamodbav:"tipoMecanizado" json:"tipoMecanizado"`
	Espesor                     Decimal        `dynamodbav:"espesor" json:"espesor"`
	Cliente                     string         `dynamodbav:"cliente" json:"cliente"`
	Negocio                     string         `dynamodbav:"negocio" json:"negocio"`
	Progress                    []ProgressItem `dynamodbav:"progress" json:"progress"`
}

// ProgressItem is one production report against a work order. All fields are
// optional in the source; absent values come through as zero values.
type ProgressItem struct {
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	Origen      string `dynamodbav:"origen" json:"origen"`
	Maquina     string `dynamodbav:"maquina" json:"maquina"`
	Placas      Number `dynamodbav:"placas" json:"placas"`
	HoraReporte string `dynamodbav:"hora_reporte" json:"hora_reporte"`
	Tiempo      Number `dynamodbav:"tiempo" json:"tiempo"`
	TiempoSeteo Number `dynamodbav:"tiempo_seteo" json:"tiempo_seteo"`
}

// Number is a float64 that accepts both numeric and string attribute values.
// A cell that cannot be coerced becomes 0; a single bad cell must never abort
// the whole scan.
type Number float64

func (n *Number) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	*n = 0
	raw, ok := rawNumeric(av)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	*n = Number(f)
	return nil
}

// Decimal is an exact-precision quantity (espesor feeds billing math, so it
// never goes through float64 on the way in). Same coercion policy as Number.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	d.Decimal = decimal.Zero
	raw, ok := rawNumeric(av)
	if !ok {
		return nil
	}
	dec, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	d.Decimal = dec
	return nil
}

func rawNumeric(av types.AttributeValue) (string, bool) {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		return v.Value, true
	case *types.AttributeValueMemberS:
		s := strings.TrimSpace(v.Value)
		if s == "" {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}

package qr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vcorp-pe/boleta-engine/constants"
)

func TestParsePayload(t *testing.T) {
	t.Run("standard emitter payload", func(t *testing.T) {
		p := ParsePayload("20100041953|01|F001|123|0|450.00|15/03/2024")

		assert.Equal(t, "20100041953", p.TaxID)
		assert.Equal(t, constants.DocTypeFacturaElectronica, p.DocumentType)
		assert.Equal(t, "F001-00000123", p.DocumentNumber)
		assert.Equal(t, "450.00", p.Total)
		assert.Equal(t, "2024-03-15", p.IssueDate)
	})

	t.Run("igv before total picks the larger", func(t *testing.T) {
		p := ParsePayload("20100041953|03|B012|00004567|81.00|531.00|2024-01-09")

		assert.Equal(t, constants.DocTypeBoletaElectronica, p.DocumentType)
		assert.Equal(t, "B012-00004567", p.DocumentNumber)
		assert.Equal(t, "531.00", p.Total)
		assert.Equal(t, "2024-01-09", p.IssueDate)
	})

	t.Run("too few segments yields empty payload", func(t *testing.T) {
		for _, raw := range []string{"", "hola", "20100041953|01|F001", "a|b"} {
			p := ParsePayload(raw)
			assert.True(t, p.Empty(), "payload %q", raw)
		}
	})

	t.Run("identifier-shaped segments are not amounts", func(t *testing.T) {
		p := ParsePayload("20100041953|01|F001|9|20100041953|45678912|89.90|15/03/2024")
		assert.Equal(t, "89.90", p.Total)
	})

	t.Run("impossible dates are dropped", func(t *testing.T) {
		p := ParsePayload("20100041953|01|F001|123|0|450.00|99/99/2024")
		assert.Empty(t, p.IssueDate)
		assert.Equal(t, "450.00", p.Total)
	})

	t.Run("garbled date segment does not shadow a later valid one", func(t *testing.T) {
		p := ParsePayload("20100041953|01|F001|123|31/02/2024|450.00|15/03/2024")
		assert.Equal(t, "2024-03-15", p.IssueDate)
	})

	t.Run("unknown type code keeps fields without a type", func(t *testing.T) {
		p := ParsePayload("20100041953|99|F001|9|10.00|02/02/2024")
		assert.Equal(t, constants.DocumentType(""), p.DocumentType)
		assert.Equal(t, "20100041953", p.TaxID)
		assert.Equal(t, "10.00", p.Total)
	})

	t.Run("invalid tax id dropped, rest kept", func(t *testing.T) {
		p := ParsePayload("99999999999|01|F001|55|25.50|01/04/2024")
		assert.Empty(t, p.TaxID)
		assert.Equal(t, "F001-00000055", p.DocumentNumber)
		assert.Equal(t, "25.50", p.Total)
	})
}

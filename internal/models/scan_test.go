package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScanPayload(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		kind       ScanPayloadKind
		customerID string
		tenantID   string
		points     int
	}{
		{
			name:       "structured with spanish keys",
			raw:        `{"idUsuario":"abc123","cantidadPuntos":3,"empresaId":"t1"}`,
			kind:       ScanPayloadStructured,
			customerID: "abc123",
			tenantID:   "t1",
			points:     3,
		},
		{
			name:       "structured with english keys",
			raw:        `{"userId":"abc123","points":"2","tenantId":"t2"}`,
			kind:       ScanPayloadStructured,
			customerID: "abc123",
			tenantID:   "t2",
			points:     2,
		},
		{
			name:       "fallback keys are ordered",
			raw:        `{"idUsuario":"","userId":"u9","puntos":4,"points":7,"empresaUid":"t3"}`,
			kind:       ScanPayloadStructured,
			customerID: "u9",
			tenantID:   "t3",
			points:     4,
		},
		{
			name:       "invalid points use default",
			raw:        `{"idUsuario":"abc","cantidadPuntos":"lots"}`,
			kind:       ScanPayloadStructured,
			customerID: "abc",
			points:     1,
		},
		{
			name:       "fractional points use default",
			raw:        `{"idUsuario":"abc","cantidadPuntos":1.5}`,
			kind:       ScanPayloadStructured,
			customerID: "abc",
			points:     1,
		},
		{
			name:       "numeric id",
			raw:        `{"idUsuario":42}`,
			kind:       ScanPayloadStructured,
			customerID: "42",
			points:     1,
		},
		{
			name:       "raw identifier",
			raw:        "  65f1c0ffee0000000000abcd \n",
			kind:       ScanPayloadRaw,
			customerID: "65f1c0ffee0000000000abcd",
			points:     1,
		},
		{
			name:       "bare json number is raw",
			raw:        "12345",
			kind:       ScanPayloadRaw,
			customerID: "12345",
			points:     1,
		},
		{
			name:       "broken json is raw",
			raw:        `{"idUsuario":`,
			kind:       ScanPayloadRaw,
			customerID: `{"idUsuario":`,
			points:     1,
		},
		{
			name:   "structured without id",
			raw:    `{"cantidadPuntos":2}`,
			kind:   ScanPayloadStructured,
			points: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseScanPayload(tt.raw)
			require.Equal(t, tt.kind, parsed.Kind)
			assert.Equal(t, tt.customerID, parsed.Payload.CustomerID)
			assert.Equal(t, tt.tenantID, parsed.Payload.TenantID)
			assert.Equal(t, tt.points, parsed.Payload.Points())
		})
	}
}

func TestPointsIsNonNegative(t *testing.T) {
	v := -5
	p := ScanPayload{CustomerID: "x", PointsHint: &v}
	assert.Equal(t, 5, p.Points())
}

func TestScanModeValid(t *testing.T) {
	assert.True(t, ScanModeVisit.Valid())
	assert.True(t, ScanModeRedemption.Valid())
	assert.False(t, ScanMode("refund").Valid())
}

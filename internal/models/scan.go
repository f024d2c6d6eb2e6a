package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ScanMode string

const (
	ScanModeVisit      ScanMode = "visit"
	ScanModeRedemption ScanMode = "redemption"
)

func (m ScanMode) Valid() bool {
	return m == ScanModeVisit || m == ScanModeRedemption
}

// DefaultPointsHint is used when the QR code carries no usable point value.
const DefaultPointsHint = 1

// ScanPayload is what an operator's scanner read from a customer's pass.
type ScanPayload struct {
	CustomerID string `json:"customer_id"`
	PointsHint *int   `json:"points_hint,omitempty"`
	TenantID   string `json:"tenant_id,omitempty"`
}

// Points returns the point basis for a wallet points adjustment, always
// non-negative. The sign is decided by the scan mode.
func (p *ScanPayload) Points() int {
	if p.PointsHint == nil {
		return DefaultPointsHint
	}
	v := *p.PointsHint
	if v < 0 {
		return -v
	}
	return v
}

type ScanPayloadKind int

const (
	// ScanPayloadStructured means the QR code held a JSON object.
	ScanPayloadStructured ScanPayloadKind = iota + 1
	// ScanPayloadRaw means the whole scanned text is the customer ID.
	ScanPayloadRaw
)

func (k ScanPayloadKind) String() string {
	switch k {
	case ScanPayloadStructured:
		return "structured"
	case ScanPayloadRaw:
		return "raw"
	default:
		return "unknown"
	}
}

type ParsedScan struct {
	Kind    ScanPayloadKind
	Payload ScanPayload
}

var (
	customerIDKeys = []string{"idUsuario", "userId", "customerId", "customer_id"}
	pointsKeys     = []string{"cantidadPuntos", "puntos", "points", "points_hint"}
	tenantIDKeys   = []string{"empresaId", "empresaUid", "tenantId", "tenant_id"}
)

// ParseScanPayload decodes the text of a scanned QR code. Only a JSON object
// counts as structured; any other text (including bare JSON numbers or
// strings) is taken verbatim as the customer ID with the default point value.
func ParseScanPayload(raw string) ParsedScan {
	trimmed := strings.TrimSpace(raw)

	var fields map[string]json.RawMessage
	if strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), &fields) == nil {
		payload := ScanPayload{
			CustomerID: firstString(fields, customerIDKeys),
			TenantID:   firstString(fields, tenantIDKeys),
			PointsHint: firstInt(fields, pointsKeys),
		}
		return ParsedScan{Kind: ScanPayloadStructured, Payload: payload}
	}

	hint := DefaultPointsHint
	return ParsedScan{
		Kind:    ScanPayloadRaw,
		Payload: ScanPayload{CustomerID: trimmed, PointsHint: &hint},
	}
}

// firstString returns the first non-empty string (or number rendered as
// text) found under keys.
func firstString(fields map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(value))
		dec.UseNumber()
		if err := dec.Decode(&n); err == nil && n.String() != "" {
			return n.String()
		}
	}
	return ""
}

// firstInt returns the first present key's value when it is an integral
// number or numeric string. A present but unusable value yields nil so the
// caller falls back to the default.
func firstInt(fields map[string]json.RawMessage, keys []string) *int {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || string(value) == "null" {
			continue
		}

		var f float64
		if err := json.Unmarshal(value, &f); err != nil {
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return nil
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil
			}
			f = parsed
		}

		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil
		}
		v := int(f)
		return &v
	}
	return nil
}

package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEventPayloadShape(t *testing.T) {
	ev := AuditEvent{
		EventID:    "6f1c",
		CompanyID:  3,
		Actor:      "12345678901",
		Action:     "sale.finalized",
		TargetType: "sale",
		TargetID:   "42",
		Metadata:   map[string]string{"grand_total": "54.00"},
		OccurredAt: "2026-03-01T18:00:00Z",
	}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "sale.finalized", got["action"])
	assert.Equal(t, float64(3), got["company_id"])
	assert.Equal(t, "sale", got["target_type"])
	assert.Equal(t, "42", got["target_id"])
	assert.Equal(t, "2026-03-01T18:00:00Z", got["occurred_at"])
}

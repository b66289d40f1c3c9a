package consent

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLedger_RoundTripPreservesOrderAndFields(t *testing.T) {
	exp := grantedAt.Add(365 * 24 * time.Hour)
	in := []Record{
		NewRecord("b", Request{DataType: "demographic", Purpose: "Clinical Research", Organization: "Org A", ExpirationDate: &exp}, grantedAt),
		NewRecord("a", Request{DataType: "genetic", Purpose: "Clinical Research", Organization: "Org B"}, grantedAt.Add(time.Nanosecond)),
	}
	in[1].Status = StatusRevoked

	b, err := MarshalLedger(in)
	require.NoError(t, err)

	out, err := UnmarshalLedger(b)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("ledger changed after round trip (-want +got):\n%s", diff)
	}
}

func TestMarshalLedger_Format(t *testing.T) {
	r := NewRecord("id-1", Request{DataType: "genetic", Purpose: "P", Organization: "O"}, grantedAt)

	b, err := MarshalLedger([]Record{r})
	require.NoError(t, err)
	require.JSONEq(t, `[{
		"id": "id-1",
		"dataType": "genetic",
		"purpose": "P",
		"organization": "O",
		"dateGranted": "2026-10-14T09:30:00Z",
		"status": "granted"
	}]`, string(b))

	empty, err := MarshalLedger(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(empty))
}

func TestUnmarshalLedger_AcceptsJavaScriptDates(t *testing.T) {
	in := `[{"id":"1760434200000","dataType":"medical_history","purpose":"Clinical Research",
		"organization":"MedSecure Clinical Partners","dateGranted":"2025-10-14T09:30:00.000Z",
		"expirationDate":"2026-10-14T09:30:00.000Z","status":"granted"}]`

	out, err := UnmarshalLedger([]byte(in))
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC), out[0].DateGranted)
	require.NotNil(t, out[0].ExpirationDate)
}

func TestUnmarshalLedger_Empty(t *testing.T) {
	out, err := UnmarshalLedger([]byte(`[]`))
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestUnmarshalLedger_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":       `{{{`,
		"object":         `{"id":"1"}`,
		"null":           `null`,
		"trailing":       `[] []`,
		"missing id":     `[{"dataType":"x","status":"granted","dateGranted":"2025-01-01T00:00:00Z"}]`,
		"unknown status": `[{"id":"1","status":"pending","dateGranted":"2025-01-01T00:00:00Z"}]`,
		"duplicate id":   `[{"id":"1","status":"granted","dateGranted":"2025-01-01T00:00:00Z"},{"id":"1","status":"revoked","dateGranted":"2025-01-01T00:00:00Z"}]`,
		"bad date":       `[{"id":"1","status":"granted","dateGranted":"yesterday"}]`,
		"unknown field":  `[{"id":"1","status":"granted","dateGranted":"2025-01-01T00:00:00Z","extra":1}]`,
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalLedger([]byte(in))
			require.ErrorIs(t, err, common.ErrParse)
		})
	}
}

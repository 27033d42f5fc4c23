package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"sindicatorest/internal/models/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-01-31", want: "2024-01-31"},
		{in: "31/01/2024", want: "2024-01-31"},
		{in: "2024-01-31T23:59:00Z", want: "2024-01-31"},
		{in: "2024-01-31 08:00:00", want: "2024-01-31"},
		{in: "", want: ""},
		{in: "31-01-2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := types.ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Vencimento types.Date  `json:"vencimento"`
		Pagamento  *types.Date `json:"pagamento"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"vencimento":"10/05/2025","pagamento":null}`), &payload))
	assert.Equal(t, types.NewDate(2025, time.May, 10), payload.Vencimento)
	assert.Nil(t, payload.Pagamento)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vencimento":"2025-05-10","pagamento":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"vencimento":20250510}`), &payload))
}

func TestDateScanValue(t *testing.T) {
	var d types.Date
	require.NoError(t, d.Scan(time.Date(2023, 7, 4, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2023-07-04", d.String())

	require.NoError(t, d.Scan([]byte("2023-07-05")))
	assert.Equal(t, "2023-07-05", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, d.Scan(42))
}

func TestStringList(t *testing.T) {
	l := types.StringList{"socios", "financeiro"}
	v, err := l.Value()
	require.NoError(t, err)
	assert.Equal(t, `["socios","financeiro"]`, v)

	var scanned types.StringList
	require.NoError(t, scanned.Scan(v))
	assert.True(t, scanned.Contains("financeiro"))
	assert.False(t, scanned.Contains("admin"))

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)

	assert.Error(t, scanned.Scan("not json"))
}

func TestAddDays(t *testing.T) {
	d := types.NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.True(t, d.AddDays(-1).Before(d))
}

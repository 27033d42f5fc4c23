package legacy

import (
	"context"
	"testing"
	"time"

	"github.com/godror/godror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlain(t *testing.T) {
	at := time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{name: "nil", in: nil, want: nil},
		{name: "integer number", in: godror.Number("1001"), want: float64(1001)},
		{name: "decimal number keeps the point", in: godror.Number("1.125"), want: 1.125},
		{name: "bytes", in: []byte("Maria"), want: "Maria"},
		{name: "date", in: at, want: at},
		{name: "zero date", in: time.Time{}, want: nil},
		{name: "string", in: "A", want: "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plain(tt.in))
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{{"NOME": "Maria"}, {"NOME": "João"}}

	var names []interface{}
	require.NoError(t, src.Each(context.Background(), func(r Row) error {
		names = append(names, r["NOME"])
		return nil
	}))
	assert.Equal(t, []interface{}{"Maria", "João"}, names)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := src.Each(ctx, func(Row) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

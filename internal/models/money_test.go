package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      Money
		wantError bool
	}{
		{name: "whole_amount", input: "10", want: 1000},
		{name: "two_decimals", input: "10.01", want: 1001},
		{name: "one_decimal", input: "10.5", want: 1050},
		{name: "leading_point", input: ".99", want: 99},
		{name: "trailing_point", input: "7.", want: 700},
		{name: "surrounding_spaces", input: "  15.00 ", want: 1500},
		{name: "negative", input: "-3.25", want: -325},
		{name: "explicit_plus", input: "+4", want: 400},
		{name: "maximum", input: "99999999.99", want: MaxMoney},
		{name: "empty", input: "", wantError: true},
		{name: "only_point", input: ".", wantError: true},
		{name: "letters", input: "ten", wantError: true},
		{name: "three_decimals", input: "1.234", wantError: true},
		{name: "exponent", input: "1e3", wantError: true},
		{name: "over_maximum", input: "100000000.00", wantError: true},
		{name: "huge_overflow", input: "99999999999999999999999", wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMoney(tc.input)
			if tc.wantError {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidMoney))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMoney_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.00", Money(0).String())
	require.Equal(t, "0.01", MinIncrement.String())
	require.Equal(t, "10.00", Money(1000).String())
	require.Equal(t, "-1.05", Money(-105).String())
}

func TestMoney_JSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(struct {
		Amount Money  `json:"amount"`
		Bid    *Money `json:"bid"`
	}{Amount: 1001})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":10.01,"bid":null}`, string(out))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.5,"b":"3.07"}`), &in))
	require.Equal(t, Money(1250), in.A)
	require.Equal(t, Money(307), in.B)
}

func TestMoney_Scan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       any
		want      Money
		wantError bool
	}{
		{name: "postgres_numeric_bytes", src: []byte("10.01"), want: 1001},
		{name: "text", src: "0.50", want: 50},
		{name: "sqlite_integer", src: int64(15), want: 1500},
		{name: "sqlite_real", src: 10.01, want: 1001},
		{name: "null", src: nil, wantError: true},
		{name: "unsupported", src: true, wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var m Money
			err := m.Scan(tc.src)
			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, m)
		})
	}

	v, err := Money(1001).Value()
	require.NoError(t, err)
	require.Equal(t, "10.01", v)
}

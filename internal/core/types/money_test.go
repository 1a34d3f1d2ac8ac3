package types

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no-op", "10.25", "10.25"},
		{"half up", "10.255", "10.26"},
		{"half away from zero negative", "-10.255", "-10.26"},
		{"truncates extra precision", "33.333333", "33.33"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Round2(MustMoney(tt.in))
			if got.String() != tt.want {
				t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMin2(t *testing.T) {
	a := MustMoney("10.005")
	b := MustMoney("10.004")

	if got := Min2(a, b); got.String() != "10" {
		t.Errorf("Min2 = %s, want 10", got)
	}
	if got := Min2(b, a); got.String() != "10" {
		t.Errorf("Min2 = %s, want 10", got)
	}
}

package schema_test

import (
	"testing"

	"claimstats/internal/schema"
	"claimstats/pkg/claims"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Charge Amount", "charge_amount"},
		{"  Charge   Amount  ", "charge_amount"},
		{"LOC", "loc"},
		{"Payer-Name", "payername"},
		{"Revenue Code #", "revenue_code"},
		{"Úhrada žádost", "uhrada_zadost"},
		{"", ""},
		{"$$$", ""},
	}
	for _, c := range cases {
		if got := schema.NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeHeaderIdempotent(t *testing.T) {
	inputs := []string{"Charge Amount", "LOC", "Revenue Code", "płatność 2023", "a  b\tc"}
	for _, in := range inputs {
		once := schema.NormalizeHeader(in)
		if twice := schema.NormalizeHeader(once); twice != once {
			t.Errorf("normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestFieldFor(t *testing.T) {
	if f, ok := schema.FieldFor("Charge Amount"); !ok || f != claims.ChargeAmount {
		t.Fatalf("Charge Amount -> %v, %v", f, ok)
	}
	if f, ok := schema.FieldFor("LOC"); !ok || f != claims.LevelOfCare {
		t.Fatalf("LOC -> %v, %v", f, ok)
	}
	if _, ok := schema.FieldFor("Favorite Color"); ok {
		t.Fatal("unmapped header should miss")
	}
}

func TestAddAlias(t *testing.T) {
	if _, ok := schema.FieldFor("Chg Amt"); ok {
		t.Fatal("alias should not exist yet")
	}
	schema.AddAlias("Chg Amt", claims.ChargeAmount)
	if f, ok := schema.FieldFor("chg amt"); !ok || f != claims.ChargeAmount {
		t.Fatalf("Chg Amt alias -> %v, %v", f, ok)
	}
}

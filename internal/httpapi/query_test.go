package httpapi

import "testing"

func TestURLDecode(t *testing.T) {
	cases := map[string]string{
		"Game+%28USA%2C+Europe%29": "Game (USA, Europe)",
		"%2c%2C":                   ",,",
		"%%28%2G%g2%29%":           "%(%2G%g2)%",
		"Game.iso":                 "Game.iso",
		"":                         "",
		"%4":                       "%4",
	}
	for in, want := range cases {
		if got := urldecode(in); got != want {
			t.Fatalf("urldecode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeQuery(t *testing.T) {
	got := decodeQuery("imageName=a+b.iso&&flag&x=1&x=2")
	if got["imageName"] != "a b.iso" {
		t.Fatalf("imageName=%q", got["imageName"])
	}
	if v, ok := got["flag"]; !ok || v != "" {
		t.Fatalf("flag=%q ok=%v", v, ok)
	}
	if got["x"] != "2" {
		t.Fatalf("x=%q", got["x"])
	}
	if len(decodeQuery("")) != 0 {
		t.Fatalf("empty query produced params")
	}
}

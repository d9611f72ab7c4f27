package langtag

import "testing"

func TestNormalize_E4(t *testing.T) {
	cases := map[string]string{
		"en":     "en",
		"jp":     "ja",
		"en-US":  "en",
		"Angika": "anp",
		"":       "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{"en", "EN-us", "jp", "Angika", "zh-Hant", "und", "pt-BR"}
	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", s, once, twice)
		}
	}
}

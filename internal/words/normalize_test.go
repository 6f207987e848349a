package words

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Damn!", "damn"},
		{"DON'T", "don't"},
		{"don’t", "don't"},
		{"'cause", "cause"},
		{"runnin'", "runnin"},
		{"rock'n'roll", "rock'n'roll"},
		{"  Hello,   World!  ", "hello world"},
		{"f*ck", "fck"},
		{"fück", "fuck"},
		{"ﬁre", "fire"},
		{"mother-fucker", "motherfucker"},
		{"Line 1\nLine 2", "line 1 line 2"},
		{"...", ""},
		{"''", ""},
		{"aŉb", "a'nb"},
		{"ŉ", "n"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Damn it!",
		"'''a'''",
		"a '' b",
		"İstanbul",
		"ℌello",
		"Ünïcödé  wörds",
		"rock'n'roll — it's ‘fine’",
		"tab\tand\nnewline",
		"日本語 テキスト",
		"x' 'y",
		"ſhit",
		"12 o'clock",
		"ŉ",
		"aŉb",
		"ŉx",
		"ʼtis",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeIdempotentAcrossCodePoints(t *testing.T) {
	if testing.Short() {
		t.Skip("walks every code point")
	}
	for r := rune(0); r < 0x30000; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			continue
		}
		c := string(r)
		for _, in := range []string{c, "a" + c + "b", c + "x"} {
			once := Normalize(in)
			if twice := Normalize(once); once != twice {
				t.Fatalf("Normalize not idempotent for U+%04X in %q: %q then %q", r, in, once, twice)
			}
		}
	}
}

package normalize

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  Hello   WORLD  \n\t",
		"naïve café ﬁle",
		"Trí tuệ nhân tạo",
		"",
		"ALL CAPS with nbsp",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestNormalizeLigatures(t *testing.T) {
	got := Normalize("ﬁle ﬂow oﬃce")
	want := "file flow office" // "oﬃce" contains the ffi ligature
	if got != want {
		t.Errorf("Normalize(%q) = %q, want %q", "ﬁle ﬂow oﬃce", got, want)
	}
}

func TestNormalizeCaseFoldAndWhitespace(t *testing.T) {
	got := Normalize("  Hello\tWORLD\n\n")
	want := "hello world"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripTonesVietnamese(t *testing.T) {
	got := StripTones("Trí tuệ nhân tạo")
	want := "Tri tue nhan tao"
	if got != want {
		t.Errorf("StripTones(%q) = %q, want %q", "Trí tuệ nhân tạo", got, want)
	}
}

func TestStripTonesDStroke(t *testing.T) {
	got := StripTones("Đà Nẵng")
	want := "Da Nang"
	if got != want {
		t.Errorf("StripTones(%q) = %q, want %q", "Đà Nẵng", got, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize(\"\") = %q, want empty", got)
	}
}

package tokenizer

import (
	"errors"
	"reflect"
	"testing"
)

func TestWhitespaceSplit(t *testing.T) {
	got := WhitespaceSplit{}.Tokenize("  the   quick\tbrown\nfox  ")
	want := []string{"the", "quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWhitespaceSplitEmpty(t *testing.T) {
	got := WhitespaceSplit{}.Tokenize("")
	if len(got) != 0 {
		t.Errorf("expected empty sequence, got %v", got)
	}
}

func TestExternalSegmenterJoinsInternalSpaces(t *testing.T) {
	seg := NewExternalSegmenter(func(text string) ([]string, error) {
		return []string{"trí tuệ", "nhân tạo"}, nil
	})
	got := seg.Tokenize("trí tuệ nhân tạo")
	want := []string{"trí_tuệ", "nhân_tạo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExternalSegmenterFallsBackOnError(t *testing.T) {
	seg := NewExternalSegmenter(func(text string) ([]string, error) {
		return nil, errors.New("segmenter unavailable")
	})
	got := seg.Tokenize("hello world")
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExternalSegmenterNilFunc(t *testing.T) {
	seg := NewExternalSegmenter(nil)
	got := seg.Tokenize("hello world")
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExternalSegmenterDropsEmptyPhrases(t *testing.T) {
	seg := NewExternalSegmenter(func(text string) ([]string, error) {
		return []string{"hello", "", "  ", "world"}, nil
	})
	got := seg.Tokenize("hello world")
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

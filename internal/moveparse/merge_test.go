package moveparse

import (
	"reflect"
	"testing"
)

func TestMergeTokens_FixedPoint(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{"N", "f", "6"},
		{"e", "2", "e", "4"},
		{"o", "o"},
		{"o", "o", "o"},
		{"0", "o", "o"},
		{"queenside"},
		{"R", "x", "d", "5", "+"},
		{"", "e", "8", "=Q"},
		{"weather", "nice"},
	}
	for _, tokens := range cases {
		once := mergeTokens(tokens)
		twice := mergeTokens(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("mergeTokens(%v) not a fixed point: once=%v twice=%v", tokens, once, twice)
		}
	}
}

func TestMergePasses_IndividuallyIdempotent(t *testing.T) {
	t.Parallel()

	// Each pass must also be a fixed point on its own output, not just the
	// composition of the two.
	cases := [][]string{
		{"N", "f", "6"},
		{"n", "f", "6"},
		{"e", "2", "e", "4"},
		{"o", "o"},
		{"o", "o", "o"},
		{"0", "o", "o"},
		{"o-o"},
		{"queenside"},
		{"kingside"},
		{"R", "x", "d", "5", "+"},
		{"", "e", "8", "=Q"},
		{"b", "4", "q"},
		{"weather", "nice"},
	}
	passes := []struct {
		name string
		fn   func([]string) []string
	}{
		{"fuseLetterDigits", fuseLetterDigits},
		{"mergeSquares", mergeSquares},
	}
	for _, pass := range passes {
		for _, tokens := range cases {
			once := pass.fn(tokens)
			twice := pass.fn(once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("%s(%v) not a fixed point: once=%v twice=%v", pass.name, tokens, once, twice)
			}
		}
	}
}

func TestMergeTokens_CastleRuns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{"o", "o"}, []string{"O-O"}},
		{[]string{"0", "o"}, []string{"O-O"}},
		{[]string{"o", "o", "o"}, []string{"O-O-O"}},
		{[]string{"0", "o", "o"}, []string{"O-O-O"}},
		{[]string{"kingside"}, []string{"O-O"}},
		{[]string{"longside"}, []string{"O-O-O"}},
	}
	for _, tc := range cases {
		got := mergeTokens(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("mergeTokens(%v)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMergeTokens_SecondPassFusesAfterPiece(t *testing.T) {
	t.Parallel()

	// The first pass sees "n" as a potential file-less piece and leaves it;
	// only after it is uppercased can "f" and "6" fuse behind it.
	got := mergeTokens([]string{"n", "f", "6"})
	want := []string{"N", "f6"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeTokens([n f 6])=%v, want %v", got, want)
	}
}

package scoring

import "testing"

func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{80, "Excellent"},
		{79, "Good"},
		{60, "Good"},
		{59, "Average"},
		{40, "Average"},
		{39, "Low"},
		{0, "Low"},
	}
	for _, tc := range cases {
		if got := Band(tc.score); got != tc.want {
			t.Fatalf("Band(%d): expected %q, got %q", tc.score, tc.want, got)
		}
	}
}

func TestExplanationLimitsToThreeReasons(t *testing.T) {
	got := Explanation(85, []string{"one", "two", "three", "four"})
	want := "Excellent match (85/100): one; two; three."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExplanationSkipsEmptyReasons(t *testing.T) {
	got := Explanation(62, []string{"", "solid reviews", "  "})
	want := "Good match (62/100): solid reviews."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExplanationWithoutReasons(t *testing.T) {
	got := Explanation(35, nil)
	want := "Low match (35/100)."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

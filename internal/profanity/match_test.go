package profanity

import (
	"strings"
	"testing"

	"musicclean/internal/words"
)

func stream(text string) []words.Token {
	var out []words.Token
	for i, field := range strings.Fields(text) {
		start := float64(i) * 0.5
		out = append(out, words.NewHypothesis(field, start, start+0.4, 0.9))
	}
	return out
}

func TestMatchWholeWords(t *testing.T) {
	tokens := stream("Damn, this shitty damn motherfucker said hello DAMN")
	result := Match(tokens, New("damn", "shit", "fuck"))

	var got []int
	for _, hit := range result.Matches {
		got = append(got, hit.Index)
	}
	want := []int{0, 3, 7}
	if len(got) != len(want) {
		t.Fatalf("indexes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indexes = %v, want %v", got, want)
		}
	}
	if len(result.Undetectable) != 0 {
		t.Fatalf("unexpected undetectable %v", result.Undetectable)
	}
}

func TestMatchIsOrderedSubsequence(t *testing.T) {
	tokens := stream("hell no damn yes hell hell crap fine damn")
	result := Match(tokens, Default())

	next := 0
	for _, hit := range result.Matches {
		found := false
		for ; next < len(tokens); next++ {
			if tokens[next] == hit.Token {
				found = true
				next++
				break
			}
		}
		if !found {
			t.Fatalf("match %v is not an ordered subsequence of the stream", hit.Token)
		}
	}
	if len(result.Matches) != 6 {
		t.Fatalf("expected 6 matches with multiplicity, got %d", len(result.Matches))
	}
}

func TestMatchEmptySet(t *testing.T) {
	tokens := stream("damn it all")
	for _, set := range []*Set{nil, New(), New("...")} {
		result := Match(tokens, set)
		if !result.Empty() {
			t.Fatalf("expected no matches, got %+v", result)
		}
	}
}

func TestMatchUntimedIsUndetectable(t *testing.T) {
	tokens := []words.Token{
		words.NewHypothesis("oh", 0, 0.3, 1),
		words.NewReference("damn"),
		words.NewHypothesis("damn", 1, 1.4, 1),
	}
	result := Match(tokens, New("damn"))
	if len(result.Matches) != 1 || result.Matches[0].Index != 2 {
		t.Fatalf("unexpected matches %+v", result.Matches)
	}
	if len(result.Undetectable) != 1 || result.Undetectable[0].Index != 1 {
		t.Fatalf("unexpected undetectable %+v", result.Undetectable)
	}
	if got := result.Tokens(); len(got) != 1 || got[0].Start != 1 {
		t.Fatalf("Tokens() = %v", got)
	}
}

func TestMatchContext(t *testing.T) {
	tokens := stream("one two three four damn six seven eight nine")
	result := Match(tokens, New("damn"))
	if len(result.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(result.Matches))
	}
	want := "two three four [damn] six seven eight"
	if got := result.Matches[0].Context; got != want {
		t.Fatalf("Context = %q, want %q", got, want)
	}

	edge := Match(stream("damn it"), New("damn"))
	if got := edge.Matches[0].Context; got != "[damn] it" {
		t.Fatalf("edge Context = %q", got)
	}
}

func TestReport(t *testing.T) {
	tokens := stream("well damn it")
	entries := Report(tokens, Match(tokens, New("damn")))
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Index != i || entry.Text != tokens[i].Text || !entry.Timed {
			t.Fatalf("entry %d = %+v", i, entry)
		}
		if entry.Matched != (i == 1) {
			t.Fatalf("entry %d matched = %v", i, entry.Matched)
		}
	}
}

package align

import (
	"fmt"
	"math"

	"github.com/antzucaro/matchr"

	"musicclean/internal/words"
)

const (
	gapCost       = 1000
	substituteMin = 1000
	substituteMax = 900

	defaultMinMatchRatio = 0.25
	defaultMaxCells      = 4_000_000
)

// Op is a single edit-script operation.
type Op int

const (
	// OpMatch pairs a reference word with an identical hypothesis word.
	OpMatch Op = iota
	// OpSubstitute pairs a reference word with a differing hypothesis word.
	OpSubstitute
	// OpInsert is a hypothesis word with no reference counterpart.
	OpInsert
	// OpDelete is a reference word the recognizer never produced.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpMatch:
		return "match"
	case OpSubstitute:
		return "substitute"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Pair is one step of the alignment. Reference is nil for inserts and
// Hypothesis is nil for deletes.
type Pair struct {
	Op         Op
	Reference  *words.Token
	Hypothesis *words.Token
}

// Stats counts operations in an alignment.
type Stats struct {
	Matches       int
	Substitutions int
	Insertions    int
	Deletions     int
}

// Result is the outcome of an alignment.
type Result struct {
	Pairs []Pair
	Stats Stats
	// Bypassed is set when no reference was supplied.
	Bypassed bool
	// Fallback is set when the reference could not be used; Note explains why.
	Fallback bool
	Note     string
}

// Usable reports whether the aligned stream should replace the raw hypothesis.
func (r Result) Usable() bool {
	return !r.Bypassed && !r.Fallback
}

// Words returns the reconciled word stream. Matched and substituted
// reference words carry the timing of their hypothesis partner, inserted
// hypothesis words are kept as heard, and deleted reference words stay
// untimed.
func (r Result) Words() []words.Token {
	out := make([]words.Token, 0, len(r.Pairs))
	for _, pair := range r.Pairs {
		switch pair.Op {
		case OpMatch, OpSubstitute:
			out = append(out, pair.Reference.WithTiming(*pair.Hypothesis))
		case OpInsert:
			out = append(out, *pair.Hypothesis)
		case OpDelete:
			out = append(out, *pair.Reference)
		}
	}
	return out
}

// Options tunes the aligner.
type Options struct {
	// MinMatchRatio is the minimum share of exact matches, relative to the
	// shorter sequence, below which the reference is rejected. Zero disables
	// the check.
	MinMatchRatio float64
	// MaxCells caps the dynamic-programming table size.
	MaxCells int
	// Phonetic treats words with overlapping Double Metaphone codes as fully
	// similar when pricing substitutions.
	Phonetic bool
}

// DefaultOptions returns the aligner defaults.
func DefaultOptions() Options {
	return Options{
		MinMatchRatio: defaultMinMatchRatio,
		MaxCells:      defaultMaxCells,
		Phonetic:      true,
	}
}

// Aligner aligns hypothesis words against reference words. It holds no
// per-call state and is safe for concurrent use.
type Aligner struct {
	opts Options
}

// New returns an Aligner. A non-positive MaxCells uses the default and a
// negative MinMatchRatio is treated as zero.
func New(opts Options) *Aligner {
	if opts.MaxCells <= 0 {
		opts.MaxCells = defaultMaxCells
	}
	if opts.MinMatchRatio < 0 {
		opts.MinMatchRatio = 0
	}
	return &Aligner{opts: opts}
}

// Align computes the alignment between reference and hypothesis.
func (a *Aligner) Align(reference, hypothesis []words.Token) Result {
	if len(reference) == 0 {
		return Result{Bypassed: true, Note: "no reference lyrics supplied"}
	}
	ref := words.DropEmpty(reference)
	if len(ref) == 0 {
		return Result{Fallback: true, Note: "reference lyrics contain no words"}
	}
	hyp := words.DropEmpty(hypothesis)
	if len(hyp) == 0 {
		return Result{}
	}

	n, m := len(ref), len(hyp)
	if cells := (n + 1) * (m + 1); cells > a.opts.MaxCells || cells <= 0 {
		return Result{
			Fallback: true,
			Note:     fmt.Sprintf("alignment table too large (%d reference x %d transcribed words)", n, m),
		}
	}

	table := newCostTable(ref, hyp, a.opts.Phonetic)
	table.fill()
	result := table.trace()

	if a.opts.MinMatchRatio > 0 {
		shorter := n
		if m < shorter {
			shorter = m
		}
		ratio := float64(result.Stats.Matches) / float64(shorter)
		if ratio < a.opts.MinMatchRatio {
			return Result{
				Fallback: true,
				Stats:    result.Stats,
				Note: fmt.Sprintf("reference lyrics matched %.0f%% of words (minimum %.0f%%); lyrics may belong to a different song",
					ratio*100, a.opts.MinMatchRatio*100),
			}
		}
	}
	return result
}

// costTable holds suffix costs: cost[i][j] is the cheapest alignment of
// ref[i:] against hyp[j:].
type costTable struct {
	ref    []words.Token
	hyp    []words.Token
	refIDs []int
	hypIDs []int
	scorer *substitutionScorer
	rows   int
	cols   int
	cost   []int32
}

func newCostTable(ref, hyp []words.Token, phonetic bool) *costTable {
	vocab := make(map[string]int)
	intern := func(tokens []words.Token) []int {
		ids := make([]int, len(tokens))
		for i, tok := range tokens {
			id, ok := vocab[tok.Normalized]
			if !ok {
				id = len(vocab)
				vocab[tok.Normalized] = id
			}
			ids[i] = id
		}
		return ids
	}
	refIDs := intern(ref)
	hypIDs := intern(hyp)

	terms := make([]string, len(vocab))
	for term, id := range vocab {
		terms[id] = term
	}

	rows, cols := len(ref)+1, len(hyp)+1
	return &costTable{
		ref:    ref,
		hyp:    hyp,
		refIDs: refIDs,
		hypIDs: hypIDs,
		scorer: newSubstitutionScorer(terms, phonetic),
		rows:   rows,
		cols:   cols,
		cost:   make([]int32, rows*cols),
	}
}

func (t *costTable) at(i, j int) int32 {
	return t.cost[i*t.cols+j]
}

func (t *costTable) set(i, j int, v int32) {
	t.cost[i*t.cols+j] = v
}

func (t *costTable) pairCost(i, j int) int32 {
	return int32(t.scorer.cost(t.refIDs[i], t.hypIDs[j]))
}

func (t *costTable) fill() {
	n, m := len(t.ref), len(t.hyp)
	for i := n; i >= 0; i-- {
		t.set(i, m, int32((n-i)*gapCost))
	}
	for j := m; j >= 0; j-- {
		t.set(n, j, int32((m-j)*gapCost))
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			best := t.pairCost(i, j) + t.at(i+1, j+1)
			if del := gapCost + t.at(i+1, j); del < best {
				best = del
			}
			if ins := gapCost + t.at(i, j+1); ins < best {
				best = ins
			}
			t.set(i, j, best)
		}
	}
}

// trace walks the table forward from the start, preferring match, then
// substitute, then delete, then insert whenever several steps are optimal.
func (t *costTable) trace() Result {
	n, m := len(t.ref), len(t.hyp)
	result := Result{Pairs: make([]Pair, 0, n+m)}
	i, j := 0, 0
	for i < n || j < m {
		here := t.at(i, j)
		if i < n && j < m {
			step := t.pairCost(i, j)
			if here == step+t.at(i+1, j+1) {
				op := OpSubstitute
				if t.refIDs[i] == t.hypIDs[j] {
					op = OpMatch
					result.Stats.Matches++
				} else {
					result.Stats.Substitutions++
				}
				result.Pairs = append(result.Pairs, Pair{Op: op, Reference: &t.ref[i], Hypothesis: &t.hyp[j]})
				i++
				j++
				continue
			}
		}
		if i < n && (j == m || here == gapCost+t.at(i+1, j)) {
			result.Pairs = append(result.Pairs, Pair{Op: OpDelete, Reference: &t.ref[i]})
			result.Stats.Deletions++
			i++
			continue
		}
		result.Pairs = append(result.Pairs, Pair{Op: OpInsert, Hypothesis: &t.hyp[j]})
		result.Stats.Insertions++
		j++
	}
	return result
}

// substitutionScorer prices replacing one vocabulary word with another and
// memoizes the result, since lyric vocabularies are small and repetitive.
type substitutionScorer struct {
	terms    []string
	codes    [][2]string
	phonetic bool
	memo     map[[2]int]int
}

func newSubstitutionScorer(terms []string, phonetic bool) *substitutionScorer {
	s := &substitutionScorer{
		terms:    terms,
		phonetic: phonetic,
		memo:     make(map[[2]int]int),
	}
	if phonetic {
		s.codes = make([][2]string, len(terms))
		for i, term := range terms {
			primary, secondary := matchr.DoubleMetaphone(term)
			s.codes[i] = [2]string{primary, secondary}
		}
	}
	return s
}

func (s *substitutionScorer) cost(a, b int) int {
	if a == b {
		return 0
	}
	key := [2]int{a, b}
	if v, ok := s.memo[key]; ok {
		return v
	}
	sim := s.similarity(a, b)
	v := substituteMin + int(math.Round(substituteMax*(1-sim)))
	s.memo[key] = v
	return v
}

func (s *substitutionScorer) similarity(a, b int) float64 {
	if s.phonetic && codesOverlap(s.codes[a], s.codes[b]) {
		return 1
	}
	sim := matchr.JaroWinkler(s.terms[a], s.terms[b], false)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func codesOverlap(a, b [2]string) bool {
	for _, x := range a {
		if x == "" {
			continue
		}
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

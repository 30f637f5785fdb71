package toyenv

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/mdpplayground/utils/intutils"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// manySequences is the number of rewardable sequences above which
// synthesis warns that the environment may be slow and memory hungry
const manySequences = 1000

// sequenceCount returns the number of sequences of the given length
// over n states, either allowing repeated states or not
func sequenceCount(n, length int, repeats bool) (int, error) {
	if repeats {
		return intutils.Pow(n, length)
	}
	return intutils.FallingFactorial(n, length)
}

// decodePermutation returns the sequence of distinct elements of
// (0, 1, ... n-1) with the given rank in [0, n!/(n-length)!). Each
// rank decodes to a different sequence.
func decodePermutation(rank, n, length int) []int {
	candidates := make([]int, n)
	for i := range candidates {
		candidates[i] = i
	}

	seq := make([]int, 0, length)
	for radix := n; radix > n-length; radix-- {
		digit := rank % radix
		rank /= radix

		seq = append(seq, candidates[digit])
		candidates = append(candidates[:digit], candidates[digit+1:]...)
	}
	return seq
}

// decodeMixedRadix returns the sequence over (0, 1, ... base-1) with
// the given rank in [0, base^length). The first element is the least
// significant digit.
func decodeMixedRadix(rank, base, length int) []int {
	seq := make([]int, length)
	for i := range seq {
		seq[i] = rank % base
		rank /= base
	}
	return seq
}

// sampleSequences selects the rewardable sequences of a discrete
// environment: density * count distinct sequences of the given length
// over the states (0, 1, ... n-1), where count is the number of such
// sequences. Sequence ranks are drawn without replacement from src and
// decoded, so the full space of sequences is never materialized.
func sampleSequences(n, length int, density float64, repeats bool,
	src rand.Source) (seqs [][]int, count int, err error) {
	count, err = sequenceCount(n, length, repeats)
	if err != nil {
		return nil, 0, fmt.Errorf("sampleSequences: %w", err)
	}

	k := int(density * float64(count))
	if k > count {
		k = count
	}
	if k == 0 {
		return [][]int{}, count, nil
	}

	ranks := make([]int, k)
	sampleuv.WithoutReplacement(ranks, count, src)

	seqs = make([][]int, k)
	seen := make(map[string]struct{}, k)
	for i, rank := range ranks {
		if repeats {
			seqs[i] = decodeMixedRadix(rank, n, length)
		} else {
			seqs[i] = decodePermutation(rank, n, length)
		}

		key := sequenceKey(seqs[i])
		if _, ok := seen[key]; ok {
			return nil, 0, fmt.Errorf("sampleSequences: sequence %v "+
				"selected twice", seqs[i])
		}
		seen[key] = struct{}{}
	}
	return seqs, count, nil
}

// sequenceKey returns a key uniquely identifying seq
func sequenceKey(seq []int) string {
	var b strings.Builder
	for i, s := range seq {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s))
	}
	return b.String()
}

package analysis

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
)

// maxSharedKeywords caps the keyword list reported per similarity group.
const maxSharedKeywords = 10

// stopwords are never used as similarity bucket keys. They occur on
// nearly every page and would put every page into a single bucket.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "can": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "its": {},
	"more": {}, "not": {}, "of": {}, "on": {}, "or": {}, "our": {}, "that": {},
	"the": {}, "their": {}, "this": {}, "to": {}, "was": {}, "we": {}, "what": {},
	"when": {}, "which": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// IsStopword reports whether w is ignored for similarity bucketing.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// keywordSet returns the normalized keywords of p with a positive count.
func keywordSet(p model.Page) map[string]struct{} {
	set := make(map[string]struct{}, len(p.Keywords))
	for _, k := range p.Keywords {
		if k.Count <= 0 {
			continue
		}
		if w := normalize.Text(k.Word); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

// bucketKeys returns the n most frequent keywords of p that are neither
// stopwords nor in skip. Ties are broken alphabetically so that the
// choice is deterministic.
func bucketKeys(p model.Page, n int, skip map[string]struct{}) []string {
	counts := make(map[string]int, len(p.Keywords))
	for _, k := range p.Keywords {
		w := normalize.Text(k.Word)
		if w == "" || k.Count <= 0 || IsStopword(w) {
			continue
		}
		if _, ok := skip[w]; ok {
			continue
		}
		counts[w] += k.Count
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	slices.SortFunc(words, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// SimilarityScore returns the Jaccard index of two keyword sets scaled to
// 0-100 and rounded. It is symmetric and grows with the overlap. Two
// empty sets score 0.
func SimilarityScore(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for w := range small {
		if _, ok := large[w]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return int(math.Round(100 * float64(shared) / float64(union)))
}

// candidate is a page taking part in similarity detection. sig is the
// sorted keyword set; equal signatures mean identical sets.
type candidate struct {
	page model.Page
	set  map[string]struct{}
	sig  string
}

const (
	// siteWideKeywordShare is the share of pages above which a keyword is
	// treated as site-wide (navigation, brand name) and not used as a
	// bucket key.
	siteWideKeywordShare = 0.5
	// siteWideMinPages is the number of candidate pages below which no
	// keyword is considered site-wide.
	siteWideMinPages = 20
	// ctxCheckInterval is how many pair comparisons run between context
	// checks.
	ctxCheckInterval = 4096
)

func signature(set map[string]struct{}) string {
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	slices.Sort(words)
	return strings.Join(words, "\x00")
}

// siteWideKeywords returns the keywords found on more than
// siteWideKeywordShare of the candidates.
func siteWideKeywords(candidates []candidate) map[string]struct{} {
	common := make(map[string]struct{})
	if len(candidates) < siteWideMinPages {
		return common
	}
	df := make(map[string]int)
	for _, c := range candidates {
		for w := range c.set {
			df[w]++
		}
	}
	limit := int(math.Floor(siteWideKeywordShare * float64(len(candidates))))
	for w, n := range df {
		if n > limit {
			common[w] = struct{}{}
		}
	}
	return common
}

// SimilarContent groups pages whose keyword sets are similar.
//
// Pages are first bucketed by their most frequent keywords; only pages
// sharing a bucket are scored against each other. Keywords present on
// more than half of a site's pages are not used as bucket keys, and every
// page is also bucketed by its full keyword set so that pages with
// identical sets always meet. Pairs scoring at least threshold are merged
// with union-find, so groups are the connected components of the
// similarity graph and do not depend on input order. A group's similarity
// is the minimum pairwise score among its members.
//
// The context is checked while pairs are compared; a cancelled context
// aborts the computation and returns its error.
func SimilarContent(ctx context.Context, pages []model.Page, threshold, bucketSize int) ([]model.SimilarityGroup, error) {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if bucketSize <= 0 {
		bucketSize = DefaultSimilarityBucketKeywords
	}

	candidates := make([]candidate, 0, len(pages))
	for _, p := range pages {
		set := keywordSet(p)
		if len(set) == 0 {
			continue
		}
		candidates = append(candidates, candidate{page: p, set: set, sig: signature(set)})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(a.page.ID, b.page.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.page.URL, b.page.URL)
	})

	siteWide := siteWideKeywords(candidates)
	buckets := make(map[string][]int)
	keys := make([]string, 0)
	addToBucket := func(key string, i int) {
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], i)
	}
	for i, c := range candidates {
		for _, w := range bucketKeys(c.page, bucketSize, siteWide) {
			addToBucket(w, i)
		}
		addToBucket("\x00"+c.sig, i)
	}
	slices.Sort(keys)

	var compared int
	tick := func() error {
		compared++
		if compared%ctxCheckInterval == 0 {
			return ctx.Err()
		}
		return nil
	}

	uf := newUnionFind(len(candidates))
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		members := buckets[k]
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				if err := tick(); err != nil {
					return nil, err
				}
				i, j := members[a], members[b]
				if uf.find(i) == uf.find(j) {
					continue
				}
				if SimilarityScore(candidates[i].set, candidates[j].set) >= threshold {
					uf.union(i, j)
				}
			}
		}
	}

	groups := make([]model.SimilarityGroup, 0)
	for _, component := range uf.components(2) {
		minScore, err := groupSimilarity(candidates, component, tick)
		if err != nil {
			return nil, err
		}

		refs := make([]model.PageRef, len(component))
		for i, idx := range component {
			refs[i] = candidates[idx].page.Ref()
		}
		slices.SortStableFunc(refs, func(a, b model.PageRef) int {
			return cmp.Compare(a.URL, b.URL)
		})

		groups = append(groups, model.SimilarityGroup{
			Similarity:     minScore,
			Pages:          refs,
			SharedKeywords: sharedKeywords(candidates, component),
		})
	}

	slices.SortStableFunc(groups, func(a, b model.SimilarityGroup) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Pages[0].URL, b.Pages[0].URL)
	})
	return groups, nil
}

// groupSimilarity returns the minimum pairwise score among members.
// Members with identical keyword sets score 100 against each other, so
// only one member per distinct set is compared.
func groupSimilarity(candidates []candidate, members []int, tick func() error) (int, error) {
	distinct := make([]int, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[candidates[m].sig]; ok {
			continue
		}
		seen[candidates[m].sig] = struct{}{}
		distinct = append(distinct, m)
	}

	minScore := 100
	for a := 0; a < len(distinct); a++ {
		for b := a + 1; b < len(distinct); b++ {
			if err := tick(); err != nil {
				return 0, err
			}
			minScore = min(minScore, SimilarityScore(candidates[distinct[a]].set, candidates[distinct[b]].set))
		}
	}
	return minScore, nil
}

// sharedKeywords returns the keywords common to every member, sorted.
func sharedKeywords(candidates []candidate, members []int) []string {
	shared := make([]string, 0)
	for w := range candidates[members[0]].set {
		inAll := true
		for _, m := range members[1:] {
			if _, ok := candidates[m].set[w]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, w)
		}
	}
	slices.Sort(shared)
	if len(shared) > maxSharedKeywords {
		shared = shared[:maxSharedKeywords]
	}
	return shared
}

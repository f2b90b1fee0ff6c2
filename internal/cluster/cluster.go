// Package cluster groups near-duplicate claims by textual similarity
// and picks one representative per group. Pure and deterministic: no
// I/O, stable given a fixed input order.
package cluster

import (
	"strings"

	"github.com/buergerwerk/klartext/internal/model"
)

// DefaultThreshold is the similarity above which two claims count as
// near-duplicates.
const DefaultThreshold = 0.74

// Build partitions claims into disjoint clusters: each claim joins the
// first existing cluster whose representative it resembles above the
// threshold, else it opens a new cluster with itself as representative.
// The representative is fixed at cluster creation and never replaced.
func Build(claims []model.AtomicClaim, threshold float64) ([]model.Cluster, []model.Statement) {
	clusters := []model.Cluster{}

	for i, c := range claims {
		placed := false
		for ci := range clusters {
			rep := claims[clusters[ci].Representative]
			if Similarity(c.Text, rep.Text) > threshold {
				clusters[ci].Members = append(clusters[ci].Members, i)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, model.Cluster{
				Representative: i,
				Members:        []int{i},
			})
		}
	}

	statements := make([]model.Statement, 0, len(clusters))
	for _, cl := range clusters {
		members := make([]model.AtomicClaim, 0, len(cl.Members))
		for _, idx := range cl.Members {
			members = append(members, claims[idx])
		}
		statements = append(statements, model.Statement{
			Representative: claims[cl.Representative],
			Members:        members,
		})
	}

	return clusters, statements
}

// Similarity is token-set Jaccard over lowercased, punctuation-trimmed
// tokens. Order-independent and symmetric.
func Similarity(a, b string) float64 {
	sa := tokenSet(a)
	sb := tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	intersection := 0
	for t := range sa {
		if sb[t] {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()„“”-")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

package classify

import (
	"math"
	"math/rand"
	"sort"
)

// Hand-rolled scaler and decision tree ensemble. Record volume is small and
// bounded, so a compact CART implementation with a fixed seed beats pulling
// in a model runtime.

type scaler struct {
	mean []float64
	std  []float64
}

func fitScaler(vectors [][]float64) *scaler {
	nf := len(vectors[0])
	n := float64(len(vectors))

	mean := make([]float64, nf)
	for _, x := range vectors {
		for i, v := range x {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= n
	}

	std := make([]float64, nf)
	for _, x := range vectors {
		for i, v := range x {
			d := v - mean[i]
			std[i] += d * d
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / n)
		if std[i] == 0 {
			std[i] = 1
		}
	}

	return &scaler{mean: mean, std: std}
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.mean[i]) / s.std[i]
	}
	return out
}

type forestParams struct {
	trees     int
	maxDepth  int
	minSplit  int
	randSeed  int64
	bootstrap bool
}

func defaultForestParams() forestParams {
	return forestParams{trees: 10, maxDepth: 10, minSplit: 2, randSeed: 42, bootstrap: true}
}

type forest struct {
	trees    []*treeNode
	nClasses int
}

type treeNode struct {
	leaf  bool
	probs []float64

	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// fitForest grows p.trees CART trees on bootstrap resamples of the data.
// The rand source is seeded so repeated fits on identical data produce an
// identical ensemble.
func fitForest(vectors [][]float64, labels []int, nClasses int, p forestParams) *forest {
	rng := rand.New(rand.NewSource(p.randSeed))
	n := len(vectors)

	f := &forest{nClasses: nClasses}
	for t := 0; t < p.trees; t++ {
		bx := vectors
		by := labels
		if p.bootstrap {
			bx = make([][]float64, n)
			by = make([]int, n)
			for i := 0; i < n; i++ {
				j := rng.Intn(n)
				bx[i] = vectors[j]
				by[i] = labels[j]
			}
		}
		f.trees = append(f.trees, growTree(bx, by, 0, nClasses, p))
	}
	return f
}

// predictProba averages the leaf class distributions across all trees.
func (f *forest) predictProba(x []float64) []float64 {
	probs := make([]float64, f.nClasses)
	for _, t := range f.trees {
		leaf := t.descend(x)
		for i, p := range leaf.probs {
			probs[i] += p
		}
	}
	for i := range probs {
		probs[i] /= float64(len(f.trees))
	}
	return probs
}

func (n *treeNode) descend(x []float64) *treeNode {
	node := n
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

func growTree(vectors [][]float64, labels []int, depth, nClasses int, p forestParams) *treeNode {
	counts := classCounts(labels, nClasses)
	if depth >= p.maxDepth || len(vectors) < p.minSplit || isPure(counts) {
		return leafNode(counts, len(labels))
	}

	feature, threshold, ok := bestSplit(vectors, labels, nClasses)
	if !ok {
		return leafNode(counts, len(labels))
	}

	var lx, rx [][]float64
	var ly, ry []int
	for i, x := range vectors {
		if x[feature] <= threshold {
			lx = append(lx, x)
			ly = append(ly, labels[i])
		} else {
			rx = append(rx, x)
			ry = append(ry, labels[i])
		}
	}
	if len(lx) == 0 || len(rx) == 0 {
		return leafNode(counts, len(labels))
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(lx, ly, depth+1, nClasses, p),
		right:     growTree(rx, ry, depth+1, nClasses, p),
	}
}

// bestSplit scans every feature and every midpoint between adjacent
// distinct values, minimizing weighted gini impurity.
func bestSplit(vectors [][]float64, labels []int, nClasses int) (int, float64, bool) {
	n := len(vectors)
	nf := len(vectors[0])
	parent := gini(classCounts(labels, nClasses), n)

	bestGini := parent
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, n)
	for feature := 0; feature < nf; feature++ {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return vectors[order[a]][feature] < vectors[order[b]][feature]
		})

		leftCounts := make([]int, nClasses)
		rightCounts := classCounts(labels, nClasses)

		for i := 0; i < n-1; i++ {
			cls := labels[order[i]]
			leftCounts[cls]++
			rightCounts[cls]--

			cur := vectors[order[i]][feature]
			next := vectors[order[i+1]][feature]
			if cur == next {
				continue
			}

			weighted := (float64(i+1)*gini(leftCounts, i+1) +
				float64(n-i-1)*gini(rightCounts, n-i-1)) / float64(n)
			if weighted < bestGini {
				bestGini = weighted
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

func classCounts(labels []int, nClasses int) []int {
	counts := make([]int, nClasses)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func leafNode(counts []int, total int) *treeNode {
	probs := make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			probs[i] = float64(c) / float64(total)
		}
	}
	return &treeNode{leaf: true, probs: probs}
}

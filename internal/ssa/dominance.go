package ssa

// computeIdom runs the Cooper/Harvey/Kennedy iterative dominance
// algorithm over the CFG rooted at the artificial entry -1 (spec §4.2).
func computeIdom(succ, pred map[int][]int, n int) map[int]int {
	rpo := reversePostorder(succ, -1)
	rpoNum := make(map[int]int, len(rpo))
	for i, node := range rpo {
		rpoNum[node] = i
	}

	const undefined = -(1 << 30)
	idom := make(map[int]int, len(rpo))
	idom[-1] = -1
	for _, node := range rpo {
		if node != -1 {
			idom[node] = undefined
		}
	}

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == -1 {
				continue
			}
			newIdom := undefined
			for _, p := range pred[b] {
				if idom[p] == undefined {
					continue
				}
				if newIdom == undefined {
					newIdom = p
					continue
				}
				newIdom = intersect(idom, rpoNum, newIdom, p)
			}
			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	return idom
}

func intersect(idom, rpoNum map[int]int, a, b int) int {
	for a != b {
		for rpoNum[a] > rpoNum[b] {
			a = idom[a]
		}
		for rpoNum[b] > rpoNum[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(succ map[int][]int, entry int) []int {
	visited := map[int]bool{}
	var post []int
	var visit func(n int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range succ[n] {
			visit(s)
		}
		post = append(post, n)
	}
	visit(entry)
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// dominanceFrontier computes DF(n) for every node via the standard
// Cytron/Ferrante/Rosen/Zadeck algorithm (spec §4.2).
func dominanceFrontier(succ, pred map[int][]int, idom map[int]int) map[int]map[int]bool {
	df := map[int]map[int]bool{}
	for b, ps := range pred {
		if _, ok := idom[b]; !ok {
			continue // b unreachable from entry
		}
		if len(ps) < 2 {
			continue
		}
		for _, p := range ps {
			if _, ok := idom[p]; !ok {
				continue // p unreachable from entry
			}
			runner := p
			for runner != idom[b] {
				if df[runner] == nil {
					df[runner] = map[int]bool{}
				}
				df[runner][b] = true
				if runner == -1 {
					break
				}
				runner = idom[runner]
			}
		}
	}
	return df
}

// Package diff computes minimal edit scripts between line sequences using
// the Myers greedy shortest-edit-script algorithm, and renders them in a
// unified style.
package diff

// Op classifies a line in an edit script.
type Op int

const (
	Equal  Op = iota // line is unchanged between a and b
	Delete           // line was deleted (present in a only)
	Insert           // line was inserted (present in b only)
)

// Edit is a single operation in an edit script produced by EditScript.
type Edit struct {
	Op   Op
	Text string
}

// EditScript computes the shortest edit script transforming a into b,
// operating on whole lines. The script is minimal: its Insert+Delete
// count equals the edit distance of the two sequences.
//
// The search explores increasing edit distances d, tracking the furthest
// x reached on each diagonal k per frontier, then replays the recorded
// frontiers backward to emit the script in forward order. Ties between
// minimal scripts are broken deterministically: on equal frontiers the
// down (insert) branch wins, and diagonal runs are consumed greedily.
// O((N+M)*D) time, O(D^2) frontier storage.
func EditScript(a, b []string) []Edit {
	n := len(a)
	m := len(b)

	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]Edit, m)
		for i, line := range b {
			ops[i] = Edit{Op: Insert, Text: line}
		}
		return ops
	}
	if m == 0 {
		ops := make([]Edit, n)
		for i, line := range a {
			ops[i] = Edit{Op: Delete, Text: line}
		}
		return ops
	}

	max := n + m
	size := 2*max + 1

	// v[k+max] holds the furthest x reached on diagonal k = x - y.
	v := make([]int, size)

	// trace[d] is a snapshot of v after processing edit distance d.
	var trace [][]int

	for d := 0; d <= max; d++ {
		for k := -d; k <= d; k += 2 {
			idx := k + max
			var x int
			if k == -d || (k != d && v[idx-1] < v[idx+1]) {
				x = v[idx+1] // move down (insert)
			} else {
				x = v[idx-1] + 1 // move right (delete)
			}
			y := x - k

			// Follow the diagonal while lines match.
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}

			v[idx] = x

			if x >= n && y >= m {
				snap := make([]int, size)
				copy(snap, v)
				trace = append(trace, snap)
				return backtrack(trace, a, b, d)
			}
		}

		snap := make([]int, size)
		copy(snap, v)
		trace = append(trace, snap)
	}

	// Unreachable: d = n+m always transforms a into b.
	return nil
}

// backtrack reconstructs the edit script from the frontier snapshots.
func backtrack(trace [][]int, a, b []string, dFinal int) []Edit {
	n := len(a)
	m := len(b)
	max := n + m

	x := n
	y := m

	var ops []Edit

	for d := dFinal; d > 0; d-- {
		k := x - y
		idx := k + max

		vPrev := trace[d-1]

		var prevK int
		if k == -d || (k != d && vPrev[idx-1] < vPrev[idx+1]) {
			prevK = k + 1 // came from an insert (down move)
		} else {
			prevK = k - 1 // came from a delete (right move)
		}

		prevX := vPrev[prevK+max]
		prevY := prevX - prevK

		// Trace back along the diagonal.
		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, Edit{Op: Equal, Text: a[x]})
		}

		if k == prevK+1 {
			x--
			ops = append(ops, Edit{Op: Delete, Text: a[x]})
		} else {
			y--
			ops = append(ops, Edit{Op: Insert, Text: b[y]})
		}
	}

	// Remaining diagonal at d=0.
	for x > 0 && y > 0 {
		x--
		y--
		ops = append(ops, Edit{Op: Equal, Text: a[x]})
	}

	// Reverse into forward order.
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}

	return ops
}

// Distance computes the edit distance between a and b without recording a
// script: the forward half of the same search. Useful as an independent
// check that a script is minimal.
func Distance(a, b []string) int {
	n := len(a)
	m := len(b)
	if n == 0 || m == 0 {
		return n + m
	}

	max := n + m
	v := make([]int, 2*max+1)

	for d := 0; d <= max; d++ {
		for k := -d; k <= d; k += 2 {
			idx := k + max
			var x int
			if k == -d || (k != d && v[idx-1] < v[idx+1]) {
				x = v[idx+1]
			} else {
				x = v[idx-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[idx] = x
			if x >= n && y >= m {
				return d
			}
		}
	}
	return max
}

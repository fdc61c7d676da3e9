// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report builds and renders the hierarchical comparison table:
// a tree keyed by dotted benchmark paths with group rollups, natural
// sort at every level, and adaptive-precision duration/throughput
// formatting.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"divan/internal/stats"
)

// Node is one entry in the report tree, matching §3's Tree node record.
// Interior nodes are groups (Stats is nil unless the group itself was
// explicitly configured to report something); leaves are measurements.
type Node struct {
	Name     string
	Children []*Node
	Stats    *stats.Statistics // nil for an unmeasured group/ignored leaf
	Ignored  bool              // true for a registered-but-`ignore`d entry
}

// Tree is the root of a report; Insert adds one benchmark path's leaf.
type Tree struct {
	roots []*Node
}

// New returns an empty Tree.
func New() *Tree { return &Tree{} }

// Insert places a leaf at the dotted path, creating interior group nodes
// as needed. st is nil, and ignored is true, for an `ignore`d entry:
// §5's "ignored-benchmark accounting" marks it as a skipped row rather
// than omitting it, which is what happens to entries excluded entirely
// by a filter (those never reach Insert).
func (t *Tree) Insert(path []string, st *stats.Statistics, ignored bool) {
	if len(path) == 0 {
		return
	}
	children := &t.roots
	var node *Node
	for i, segment := range path {
		node = findOrCreate(children, segment)
		if i == len(path)-1 {
			node.Stats = st
			node.Ignored = ignored
		}
		children = &node.Children
	}
}

func findOrCreate(children *[]*Node, name string) *Node {
	for _, c := range *children {
		if c.Name == name {
			return c
		}
	}
	n := &Node{Name: name}
	*children = append(*children, n)
	return n
}

// Sorted returns the tree's root nodes in natural-sort order, with every
// level of children sorted the same way, per §4.8's "names are
// natural-sorted at each level".
func (t *Tree) Sorted() []*Node {
	sortNodes(t.roots)
	return t.roots
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return NaturalLess(nodes[i].Name, nodes[j].Name) })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// activeCounters lists which of the four counter kinds had non-zero
// throughput anywhere in the tree, so Render only emits columns that
// are actually in use.
func (t *Tree) activeCounters() [4]bool {
	var active [4]bool
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Stats != nil {
			for k, v := range n.Stats.Throughput {
				if v > 0 {
					active[k] = true
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.roots {
		walk(r)
	}
	return active
}

// Render writes the tree as a tab-aligned table to w, columns: name,
// fastest, slowest, median, mean, samples, iters, plus any active
// counter throughput columns, plus allocation columns when any node
// carries allocation data.
func Render(w io.Writer, t *Tree, bytesFormat BytesFormat) {
	active := t.activeCounters()
	haveAlloc := false
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Stats != nil && n.Stats.Alloc != nil {
			haveAlloc = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range t.roots {
		walk(r)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{"name", "fastest", "slowest", "median", "mean", "samples", "iters"}
	if active[0] {
		header = append(header, "items/s")
	}
	if active[1] {
		header = append(header, "throughput")
	}
	if active[2] {
		header = append(header, "chars/s")
	}
	if active[3] {
		header = append(header, "cycles/s")
	}
	if haveAlloc {
		header = append(header, "alloc", "alloc/op", "dealloc", "peak")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range t.roots {
		renderNode(tw, r, 0, active, haveAlloc, bytesFormat)
	}
	tw.Flush()
}

func renderNode(w io.Writer, n *Node, depth int, active [4]bool, haveAlloc bool, bytesFormat BytesFormat) {
	indent := strings.Repeat("  ", depth)
	cols := []string{indent + n.Name}

	switch {
	case n.Ignored:
		cols = append(cols, "(ignored)", "", "", "", "", "")
	case n.Stats != nil:
		s := n.Stats
		cols = append(cols,
			FormatDuration(s.Fastest, 4),
			FormatDuration(s.Slowest, 4),
			FormatDuration(s.Median, 4),
			FormatDuration(s.Mean, 4),
			fmt.Sprintf("%d", s.SampleCount),
			fmt.Sprintf("%d", s.Iterations),
		)
	default:
		cols = append(cols, "", "", "", "", "", "")
	}

	if active[0] || active[1] || active[2] || active[3] {
		for k := 0; k < 4; k++ {
			if !active[k] {
				continue
			}
			if n.Stats == nil {
				cols = append(cols, "")
				continue
			}
			v := n.Stats.Throughput[k]
			if k == 1 {
				cols = append(cols, FormatBytes(v, bytesFormat))
			} else {
				cols = append(cols, trimSigFigs(v, 4)+"/s")
			}
		}
	}

	if haveAlloc {
		if n.Stats != nil && n.Stats.Alloc != nil {
			a := n.Stats.Alloc
			perOp := uint64(0)
			if n.Stats.Iterations > 0 {
				perOp = a.AllocBytes / uint64(n.Stats.Iterations)
			}
			cols = append(cols,
				fmt.Sprintf("%d", a.AllocCount),
				fmt.Sprintf("%d B", perOp),
				fmt.Sprintf("%d", a.FreeCount),
				fmt.Sprintf("%d B", a.MaxInFlight),
			)
		} else {
			cols = append(cols, "", "", "", "")
		}
	}

	fmt.Fprintln(w, strings.Join(cols, "\t"))

	for _, c := range n.Children {
		renderNode(w, c, depth+1, active, haveAlloc, bytesFormat)
	}
}

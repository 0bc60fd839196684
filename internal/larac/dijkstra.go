package larac

import (
	"container/heap"

	"cqfsim/internal/domain"
)

// WeightFunc returns the weight of traversing edge (u,v). It is called
// only for pairs the network actually links.
type WeightFunc func(u, v int64) float64

// pqItem is a single entry in the shortest-path priority queue.
type pqItem struct {
	node     int64
	distance float64
	index    int
}

// priorityQueue is a min-heap on distance, tie-broken by node ID so that
// two runs over the same graph and weights always expand nodes in the
// same order.
type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].distance != pq[j].distance {
		return pq[i].distance < pq[j].distance
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// shortestPath runs Dijkstra's algorithm from source over network under
// weight, returning the distance map and a parent map suitable for path
// reconstruction. Edge weights must be non-negative; LARAC's Lagrangian
// weight w(u,v) = dualCost(u,v) + lambda*delay(u,v) always is, for
// lambda >= 0 and non-negative dual costs and delays.
func shortestPath(network *domain.Network, source int64, weight WeightFunc) (dist map[int64]float64, parent map[int64]int64) {
	nodes := network.Nodes()
	dist = make(map[int64]float64, len(nodes))
	parent = make(map[int64]int64, len(nodes))
	for _, n := range nodes {
		dist[n] = positiveInfinity
		parent[n] = -1
	}
	dist[source] = 0

	pq := make(priorityQueue, 0, len(nodes))
	heap.Init(&pq)
	heap.Push(&pq, &pqItem{node: source, distance: 0})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*pqItem)
		u := current.node
		if current.distance > dist[u]+domain.Epsilon {
			continue
		}

		for _, v := range network.Neighbors(u) {
			w := weight(u, v)
			newDist := dist[u] + w
			if newDist < dist[v]-domain.Epsilon {
				dist[v] = newDist
				parent[v] = u
				heap.Push(&pq, &pqItem{node: v, distance: newDist})
			}
		}
	}

	return dist, parent
}

const positiveInfinity = 1e18

// reconstructPath walks parent pointers from dest back to source. It
// returns nil if dest is unreachable from source.
func reconstructPath(parent map[int64]int64, source, dest int64) []int64 {
	if dest != source {
		if _, ok := parent[dest]; !ok {
			return nil
		}
		if parent[dest] == -1 {
			return nil
		}
	}

	path := []int64{dest}
	node := dest
	for node != source {
		prev, ok := parent[node]
		if !ok || prev == -1 {
			return nil
		}
		path = append(path, prev)
		node = prev
	}

	// Reverse into source->dest order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

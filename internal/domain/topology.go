package domain

// TopologyEntry — ребро графа зависимостей stages.
type TopologyEntry struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Weight — позиция ребра от начала сценария (1, 2, ...).
	Weight int `json:"weight"`
}

// Topology — граф зависимостей сценария.
type Topology struct {
	Entries []TopologyEntry `json:"entries"`
}

// BuildTopology строит граф зависимостей из списка stages.
//
// Stages выполняются строго последовательно, поэтому каждый stage
// зависит от предыдущего: граф — цепочка. Для одного stage рёбер нет.
func BuildTopology(stages []StageBoundary) Topology {
	if len(stages) < 2 {
		return Topology{Entries: []TopologyEntry{}}
	}

	entries := make([]TopologyEntry, 0, len(stages)-1)
	for i := 1; i < len(stages); i++ {
		entries = append(entries, TopologyEntry{
			From:   stages[i-1].Name,
			To:     stages[i].Name,
			Weight: i,
		})
	}
	return Topology{Entries: entries}
}

// Roots возвращает stages без входящих рёбер.
func (t Topology) Roots() []string {
	incoming := make(map[string]bool, len(t.Entries))
	for _, e := range t.Entries {
		incoming[e.To] = true
	}

	var roots []string
	seen := make(map[string]bool)
	for _, e := range t.Entries {
		if !incoming[e.From] && !seen[e.From] {
			roots = append(roots, e.From)
			seen[e.From] = true
		}
	}
	return roots
}

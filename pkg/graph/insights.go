package graph

import (
	"context"
)

// Insights is a structural summary of the loaded graph, served alongside
// analysis results so users can gauge how much the oracle recovered.
type Insights struct {
	Nodes         map[string]int64 `json:"nodes"`
	Relationships int64            `json:"relationships"`
	TopFeatures   []FeatureDegree  `json:"top_features"`
}

type FeatureDegree struct {
	Name   string `json:"name"`
	Degree int64  `json:"degree"`
}

func (p *Projector) Insights(ctx context.Context) (Insights, error) {
	insights := Insights{Nodes: make(map[string]int64)}

	rows, err := p.store.Run(ctx, `
		MATCH (n)
		UNWIND labels(n) AS label
		RETURN label, count(*) AS count`, nil)
	if err != nil {
		return insights, err
	}
	for _, row := range rows {
		label, _ := row["label"].(string)
		count, _ := row["count"].(int64)
		if label != "" {
			insights.Nodes[label] = count
		}
	}

	rows, err = p.store.Run(ctx, "MATCH ()-[r]->() RETURN count(r) AS count", nil)
	if err != nil {
		return insights, err
	}
	if len(rows) == 1 {
		insights.Relationships, _ = rows[0]["count"].(int64)
	}

	rows, err = p.store.Run(ctx, `
		MATCH (f:Feature)-[r]-()
		RETURN f.name AS name, count(r) AS degree
		ORDER BY degree DESC
		LIMIT 5`, nil)
	if err != nil {
		return insights, err
	}
	for _, row := range rows {
		name, _ := row["name"].(string)
		degree, _ := row["degree"].(int64)
		insights.TopFeatures = append(insights.TopFeatures, FeatureDegree{Name: name, Degree: degree})
	}

	return insights, nil
}

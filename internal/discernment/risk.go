package discernment

// RiskAggregator folds the four declared risk dimensions into riesgo_global.
type RiskAggregator struct {
	weights RiskWeights
}

// NewRiskAggregator builds an aggregator with the given dimension weights.
func NewRiskAggregator(w RiskWeights) *RiskAggregator {
	return &RiskAggregator{weights: w}
}

// Aggregate returns the dimensions with their weighted mean as Global.
func (a *RiskAggregator) Aggregate(d RiskDimensions) RiskProfile {
	global := weightedMean(
		[]float64{d.Time, d.Money, d.HealthRelationships, d.Peace},
		[]float64{a.weights.Time, a.weights.Money, a.weights.HealthRelationships, a.weights.Peace},
	)
	return RiskProfile{RiskDimensions: d, Global: Round3(global)}
}

package scoring

// Aggregator combines the four dimension subscores into one composite
// score with fixed weights. Inapplicable (nil) dimensions have their
// weight redistributed proportionally across the applicable ones, so a
// non-DeFi project is not structurally penalized for lacking an economic
// dimension.
type Aggregator struct {
	WeightCode       float64
	WeightDeps       float64
	WeightGovernance float64
	WeightEconomic   float64

	// ZeroProofFloor is the minimum composite granted to a project with
	// at least one applicable dimension, so new-but-legitimate projects
	// stay distinguishable from zero data.
	ZeroProofFloor float64
}

// Aggregate computes the composite score and its audit breakdown. With no
// applicable dimensions at all the composite is 0 and no floor applies:
// absence of evidence earns nothing.
func (a *Aggregator) Aggregate(sub Subscores) (float64, Breakdown) {
	dims := []struct {
		key      string
		subscore *float64
		weight   float64
	}{
		{"code_activity", sub.Code, a.WeightCode},
		{"dependency_health", sub.Deps, a.WeightDeps},
		{"governance", sub.Governance, a.WeightGovernance},
		{"economic", sub.Economic, a.WeightEconomic},
	}

	var applicableWeight float64
	for _, d := range dims {
		if d.subscore != nil {
			applicableWeight += d.weight
		}
	}

	bd := Breakdown{}
	if applicableWeight == 0 {
		for _, d := range dims {
			bd.Dimensions = append(bd.Dimensions, DimensionContribution{Key: d.key})
		}
		return 0, bd
	}

	var composite float64
	for _, d := range dims {
		dc := DimensionContribution{Key: d.key, Subscore: d.subscore}
		if d.subscore != nil {
			dc.EffectiveWeight = d.weight / applicableWeight
			dc.Contribution = dc.EffectiveWeight * *d.subscore
			composite += dc.Contribution
		}
		bd.Dimensions = append(bd.Dimensions, dc)
	}

	if composite < a.ZeroProofFloor {
		composite = a.ZeroProofFloor
		bd.FloorApplied = true
	}

	bd.Composite = composite
	return composite, bd
}

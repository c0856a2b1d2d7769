package scoring

import "github.com/dshills/cfrscore/internal/schema"

// WeightedSum returns Σ score·weight over the rubric sections present in
// sections. Present-but-unscored entries count at the floor score; sections
// missing from the map contribute nothing. The sum is not renormalized by the
// weight actually present, so incomplete input understates the total.
func WeightedSum(sections map[schema.Section]*schema.AdjustedSection) float64 {
	var sum float64
	for _, sec := range schema.Sections() {
		adj, ok := sections[sec]
		if !ok {
			continue
		}
		w, _ := schema.Weight(sec)
		score := MinScore
		if adj.Scored() {
			score = round(Clamp(float64(adj.Score)))
		}
		sum += float64(score) * w
	}
	return sum
}

// Aggregate combines adjusted section scores into the overall score and rating.
func Aggregate(sections map[schema.Section]*schema.AdjustedSection) (int, schema.Rating) {
	overall := round(WeightedSum(sections))
	return overall, Label(overall)
}

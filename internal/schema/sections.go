package schema

import "strings"

// Section names one of the eight rubric dimensions.
type Section string

const (
	SectionVision                      Section = "vision"
	SectionMission                     Section = "mission"
	SectionObjectives                  Section = "objectives"
	SectionInterSePriorities           Section = "inter_se_priorities"
	SectionTrendValues                 Section = "trend_values"
	SectionSuccessIndicators           Section = "success_indicators_description"
	SectionOtherDepartmentRequirements Section = "other_department_requirements"
	SectionOutcomeImpact               Section = "outcome_impact"
)

// sectionOrder is rubric order (Section 1A through Section 6).
var sectionOrder = []Section{
	SectionVision,
	SectionMission,
	SectionObjectives,
	SectionInterSePriorities,
	SectionTrendValues,
	SectionSuccessIndicators,
	SectionOtherDepartmentRequirements,
	SectionOutcomeImpact,
}

// weights is the relative weight of each section; the values sum to 1.0.
var weights = map[Section]float64{
	SectionVision:                      0.05,
	SectionMission:                     0.05,
	SectionObjectives:                  0.05,
	SectionInterSePriorities:           0.40,
	SectionTrendValues:                 0.15,
	SectionSuccessIndicators:           0.05,
	SectionOtherDepartmentRequirements: 0.05,
	SectionOutcomeImpact:               0.20,
}

// Sections returns the rubric sections in rubric order. The slice is a copy.
func Sections() []Section {
	out := make([]Section, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

// Weight returns the weight of s and whether s is a rubric section.
func Weight(s Section) (float64, bool) {
	w, ok := weights[s]
	return w, ok
}

// Valid reports whether s is one of the eight rubric sections.
func (s Section) Valid() bool {
	_, ok := weights[s]
	return ok
}

// ParseSection normalises a generator-supplied section name ("Inter Se
// Priorities", "inter-se-priorities") to a Section.
func ParseSection(name string) (Section, bool) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	s := Section(norm)
	return s, s.Valid()
}

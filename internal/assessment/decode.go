package assessment

import (
	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/cfrscore/internal/schema"
)

// record is the loose shape of one section as the generator writes it.
type record struct {
	Score         *float64 `mapstructure:"score"`
	Justification string   `mapstructure:"justification"`
}

// DecodeSections converts a loosely-typed section map, as decoded from JSON or
// YAML, into raw assessments. Section names are normalised; unknown names are
// dropped. A bare number is read as a score. Null and unrecognised values
// become absent records.
func DecodeSections(m map[string]any) map[schema.Section]*schema.SectionAssessment {
	out := make(map[schema.Section]*schema.SectionAssessment, len(m))
	for name, v := range m {
		sec, ok := schema.ParseSection(name)
		if !ok {
			continue
		}
		out[sec] = decodeRecord(v)
	}
	return out
}

func decodeRecord(v any) *schema.SectionAssessment {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return schema.NewAssessment(t, "")
	case int:
		return schema.NewAssessment(float64(t), "")
	case map[string]any:
		var rec record
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &rec,
		})
		if err != nil {
			return nil
		}
		if err := dec.Decode(t); err != nil {
			// Typically a non-numeric score: keep whatever justification
			// there is and treat the score as missing.
			just, _ := t["justification"].(string)
			return &schema.SectionAssessment{Justification: just}
		}
		return &schema.SectionAssessment{Score: rec.Score, Justification: rec.Justification}
	default:
		return nil
	}
}

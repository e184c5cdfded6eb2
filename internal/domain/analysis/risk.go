package analysis

// Level niveau de risque
type Level string

const (
	LevelCritique      Level = "critique"
	LevelAvertissement Level = "avertissement"
	LevelNormal        Level = "normal"
)

const (
	criticalThreshold = 70
	warningThreshold  = 40
)

// LevelFor classe un score de risque
func LevelFor(score int) Level {
	switch {
	case score >= criticalThreshold:
		return LevelCritique
	case score >= warningThreshold:
		return LevelAvertissement
	default:
		return LevelNormal
	}
}

// RiskLevels missions regroupées par niveau de risque
type RiskLevels struct {
	Critique      []Metrics `json:"critique"`
	Avertissement []Metrics `json:"avertissement"`
	Normal        []Metrics `json:"normal"`
}

func Classify(metrics []Metrics) RiskLevels {
	levels := RiskLevels{Critique: []Metrics{}, Avertissement: []Metrics{}, Normal: []Metrics{}}
	for _, m := range metrics {
		switch LevelFor(m.RiskScore) {
		case LevelCritique:
			levels.Critique = append(levels.Critique, m)
		case LevelAvertissement:
			levels.Avertissement = append(levels.Avertissement, m)
		default:
			levels.Normal = append(levels.Normal, m)
		}
	}
	return levels
}

package mood

import (
	"net/http"
	"time"

	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kernel"
)

// ============================================================================
// Mood Entities
// ============================================================================

// MoodType es uno de los estados de ánimo soportados
type MoodType string

const (
	MoodHappy    MoodType = "happy"
	MoodSad      MoodType = "sad"
	MoodAnxious  MoodType = "anxious"
	MoodCalm     MoodType = "calm"
	MoodExcited  MoodType = "excited"
	MoodTired    MoodType = "tired"
	MoodStressed MoodType = "stressed"
	MoodContent  MoodType = "content"
)

// AllMoods lista los estados soportados en orden estable
var AllMoods = []MoodType{
	MoodHappy, MoodSad, MoodAnxious, MoodCalm,
	MoodExcited, MoodTired, MoodStressed, MoodContent,
}

// ValidMood verifica que el estado sea uno de los soportados
func ValidMood(m MoodType) bool {
	for _, known := range AllMoods {
		if m == known {
			return true
		}
	}
	return false
}

// MoodLog es un registro puntual de estado de ánimo. Intensity va de 1 a 10.
type MoodLog struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   kernel.OwnerID `db:"owner_id" json:"owner_id"`
	Mood      MoodType       `db:"mood" json:"mood"`
	Intensity int            `db:"intensity" json:"intensity"`
	Note      *string        `db:"note" json:"note,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// ============================================================================
// Service DTOs
// ============================================================================

// LogMoodRequest registra un estado de ánimo
type LogMoodRequest struct {
	Mood      MoodType `json:"mood" validate:"required"`
	Intensity int      `json:"intensity" validate:"required,min=1,max=10"`
	Note      *string  `json:"note,omitempty"`
}

// Insights resume los registros de una ventana de días
type Insights struct {
	MostCommonMood   MoodType         `json:"most_common_mood"`
	AvgIntensity     float64          `json:"avg_intensity"`
	TotalLogs        int              `json:"total_logs"`
	MoodDistribution map[MoodType]int `json:"mood_distribution"`
}

// ComputeInsights agrega los registros: moda, intensidad promedio redondeada
// a un decimal y distribución completa. Sin registros retorna nil.
func ComputeInsights(logs []MoodLog) *Insights {
	if len(logs) == 0 {
		return nil
	}

	distribution := make(map[MoodType]int, len(AllMoods))
	for _, m := range AllMoods {
		distribution[m] = 0
	}

	var intensitySum int
	for _, log := range logs {
		distribution[log.Mood]++
		intensitySum += log.Intensity
	}

	mostCommon := AllMoods[0]
	for _, m := range AllMoods {
		if distribution[m] > distribution[mostCommon] {
			mostCommon = m
		}
	}

	avg := float64(intensitySum) / float64(len(logs))

	return &Insights{
		MostCommonMood:   mostCommon,
		AvgIntensity:     float64(int(avg*10+0.5)) / 10,
		TotalLogs:        len(logs),
		MoodDistribution: distribution,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("MOOD")

var (
	CodeInvalidMood      = ErrRegistry.Register("INVALID_MOOD", errx.TypeValidation, http.StatusBadRequest, "Estado de ánimo no soportado")
	CodeInvalidIntensity = ErrRegistry.Register("INVALID_INTENSITY", errx.TypeValidation, http.StatusBadRequest, "La intensidad debe estar entre 1 y 10")
)

func ErrInvalidMood() *errx.Error {
	return ErrRegistry.New(CodeInvalidMood)
}

func ErrInvalidIntensity() *errx.Error {
	return ErrRegistry.New(CodeInvalidIntensity)
}

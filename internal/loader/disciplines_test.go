package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/models"
)

func TestDisciplineLoaderReadsDistribution(t *testing.T) {
	input := strings.Join([]string{
		"Disciplina,Hora_aula,Encontros,Sigla,Horas",
		"Criminologia Aplicada,24,12,CRIM,20",
		"Legislação Penal Especial,36,18,LPE,30",
		"Totais,,,,",
	}, "\n")

	disciplines, err := NewDisciplineLoader(nil).Load(strings.NewReader(input), WeeklyPreset(), "P1", "C1")
	require.NoError(t, err)
	require.Len(t, disciplines, 2)

	crim := disciplines[0]
	assert.Equal(t, "CRIM", crim.ID)
	assert.Equal(t, "Criminologia Aplicada", crim.Name)
	assert.Equal(t, 24, crim.RequiredHours)
	assert.Equal(t, "P1", crim.InstructorID)
	assert.Equal(t, "C1", crim.CohortID)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, crim.AllowedWeekdays)
	assert.Len(t, crim.AllowedWindows, 2)
	assert.Equal(t, 100, crim.MaxSessionMinutes)

	assert.Equal(t, "LPE", disciplines[1].ID)
}

func TestDisciplineLoaderFallsBackToNameAsID(t *testing.T) {
	input := "Investigação Policial,40\n"

	disciplines, err := NewDisciplineLoader(nil).Load(strings.NewReader(input), WeeklyPreset(), "P1", "C1")
	require.NoError(t, err)
	require.Len(t, disciplines, 1)
	assert.Equal(t, "Investigação Policial", disciplines[0].ID)
}

func TestDisciplineLoaderSkipsShortAndNonNumericRows(t *testing.T) {
	input := strings.Join([]string{
		"Disciplina,Hora_aula",
		"Só um campo",
		"Sem carga,abc",
		"Carga zero,0",
		"Válida,12",
	}, "\n")

	disciplines, err := NewDisciplineLoader(nil).Load(strings.NewReader(input), WeeklyPreset(), "P1", "C1")
	require.NoError(t, err)
	require.Len(t, disciplines, 1)
	assert.Equal(t, "Válida", disciplines[0].Name)
}

func TestPresetByName(t *testing.T) {
	assert.Equal(t, "biweekly", PresetByName("biweekly").Name)
	assert.Equal(t, "weekly", PresetByName("weekly").Name)
	assert.Equal(t, "weekly", PresetByName("unknown").Name)

	biweekly := BiweeklyPreset()
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, biweekly.Weekdays)
	assert.Len(t, biweekly.Windows, 6)
}

func TestPresetApplyKeepsExplicitConstraints(t *testing.T) {
	custom := models.Discipline{
		ID:                "D1",
		RequiredHours:     10,
		AllowedWeekdays:   []time.Weekday{time.Tuesday},
		AllowedWindows:    []models.TimeWindow{{StartMinute: 8 * 60, EndMinute: 10 * 60}},
		MaxSessionMinutes: 120,
	}
	applied := WeeklyPreset().Apply(custom)
	assert.Equal(t, custom.AllowedWeekdays, applied.AllowedWeekdays)
	assert.Equal(t, custom.AllowedWindows, applied.AllowedWindows)
	assert.Equal(t, 120, applied.MaxSessionMinutes)
}

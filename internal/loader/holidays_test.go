package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/models"
)

func TestHolidayParserReadsOfficeList(t *testing.T) {
	input := strings.Join([]string{
		"Feriados Nacionais 2026",
		"21 de abril - terça-feira, Tiradentes (feriado nacional);",
		"20 de abril - segunda-feira, Ponto Facultativo (ponto facultativo);",
		"",
		"1 de maio - sexta-feira, Dia Mundial do Trabalho (feriado nacional);",
	}, "\n")

	records, err := NewHolidayParser(nil).Parse(strings.NewReader(input), 2026)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.True(t, records[0].Date.Equal(time.Date(2026, time.April, 21, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Tiradentes", records[0].Name)
	assert.Equal(t, models.HolidayKindNational, records[0].Kind)

	assert.True(t, records[1].Date.Equal(time.Date(2026, time.April, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.HolidayKindOptional, records[1].Kind)

	assert.True(t, records[2].Date.Equal(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Dia Mundial do Trabalho", records[2].Name)
}

func TestHolidayParserSkipsUnparseableLines(t *testing.T) {
	input := strings.Join([]string{
		"header",
		"observação: lista sujeita a alteração",
		"31 de abril - data inexistente, Erro (feriado nacional);",
		"12 de outubro - segunda-feira, Nossa Senhora Aparecida (feriado nacional);",
	}, "\n")

	records, err := NewHolidayParser(nil).Parse(strings.NewReader(input), 2026)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.Equal(time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC)))
}

func TestHolidayParserDefaultsNameWhenMissing(t *testing.T) {
	input := "header\n7 de setembro\n"

	records, err := NewHolidayParser(nil).Parse(strings.NewReader(input), 2026)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Feriado", records[0].Name)
	assert.Equal(t, models.HolidayKindNational, records[0].Kind)
}

func TestDefaultHolidays(t *testing.T) {
	records := DefaultHolidays(2026)

	national, optional := 0, 0
	for _, record := range records {
		assert.Equal(t, 2026, record.Date.Year())
		switch record.Kind {
		case models.HolidayKindNational:
			national++
		case models.HolidayKindOptional:
			optional++
		}
	}
	assert.Equal(t, 10, national)
	assert.Equal(t, 14, optional)
}

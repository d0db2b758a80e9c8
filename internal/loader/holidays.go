package loader

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
)

// Holiday lists arrive as plain text exported from the academic office, one
// entry per line in the form
//
//	21 de abril - terça-feira, Tiradentes (feriado nacional);
//
// Lines that do not match the pattern are skipped, matching the tolerant
// behaviour the office files require.

var (
	holidayDatePattern = regexp.MustCompile(`^(\d+)\s+de\s+(\p{L}+)`)
	holidayNamePattern = regexp.MustCompile(`,\s*([^(]+)\s*\(`)
)

var monthNames = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"marco":     time.March,
	"março":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

// HolidayParser reads office holiday lists into calendar records.
type HolidayParser struct {
	logger *zap.Logger
}

// NewHolidayParser constructs the parser.
func NewHolidayParser(logger *zap.Logger) *HolidayParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayParser{logger: logger}
}

// Parse reads the holiday list assigning every entry to the given year. The
// first line is a header and is skipped.
func (p *HolidayParser) Parse(r io.Reader, year int) ([]models.HolidayRecord, error) {
	scanner := bufio.NewScanner(r)
	var (
		records []models.HolidayRecord
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		record, ok := parseHolidayLine(line, year)
		if !ok {
			p.logger.Debug("skipping unparseable holiday line", zap.Int("line", lineNo), zap.String("text", line))
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read holiday list: %w", err)
	}
	return records, nil
}

func parseHolidayLine(line string, year int) (models.HolidayRecord, bool) {
	match := holidayDatePattern.FindStringSubmatch(line)
	if match == nil {
		return models.HolidayRecord{}, false
	}
	day, err := strconv.Atoi(match[1])
	if err != nil {
		return models.HolidayRecord{}, false
	}
	month, ok := monthNames[strings.ToLower(match[2])]
	if !ok {
		return models.HolidayRecord{}, false
	}

	kind := models.HolidayKindNational
	if strings.Contains(strings.ToLower(line), "ponto facultativo") {
		kind = models.HolidayKindOptional
	}

	name := "Feriado"
	if nameMatch := holidayNamePattern.FindStringSubmatch(line); nameMatch != nil {
		name = strings.TrimSpace(nameMatch[1])
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		// Date overflowed (e.g. 31 de abril); reject instead of shifting.
		return models.HolidayRecord{}, false
	}
	return models.HolidayRecord{Date: date, Name: name, Kind: kind}, true
}

// DefaultHolidays returns the national and optional holiday tables used when
// no office list is supplied. Dates follow the Brazilian 2026 calendar but
// are projected onto the requested year.
func DefaultHolidays(year int) []models.HolidayRecord {
	type entry struct {
		day   int
		month time.Month
		name  string
	}
	national := []entry{
		{1, time.January, "Confraternização Universal"},
		{3, time.April, "Sexta-feira Santa"},
		{21, time.April, "Tiradentes"},
		{1, time.May, "Dia Mundial do Trabalho"},
		{7, time.September, "Independência do Brasil"},
		{12, time.October, "Nossa Senhora Aparecida"},
		{2, time.November, "Finados"},
		{15, time.November, "Proclamação da República"},
		{20, time.November, "Dia da Consciência Negra"},
		{25, time.December, "Natal"},
	}
	optional := []entry{
		{2, time.January, "Ponto Facultativo"},
		{16, time.February, "Carnaval"},
		{17, time.February, "Carnaval"},
		{18, time.February, "Quarta-feira de Cinzas"},
		{2, time.April, "Quinta-feira Santa"},
		{20, time.April, "Ponto Facultativo"},
		{4, time.June, "Corpus Christi"},
		{5, time.June, "Ponto Facultativo"},
		{15, time.August, "Assunção de Nossa Senhora"},
		{30, time.October, "Dia do Servidor Público"},
		{7, time.December, "Imaculada Conceição"},
		{8, time.December, "Imaculada Conceição"},
		{24, time.December, "Ponto Facultativo"},
		{31, time.December, "Ponto Facultativo"},
	}

	records := make([]models.HolidayRecord, 0, len(national)+len(optional))
	for _, e := range national {
		records = append(records, models.HolidayRecord{
			Date: time.Date(year, e.month, e.day, 0, 0, 0, 0, time.UTC),
			Name: e.name,
			Kind: models.HolidayKindNational,
		})
	}
	for _, e := range optional {
		records = append(records, models.HolidayRecord{
			Date: time.Date(year, e.month, e.day, 0, 0, 0, 0, time.UTC),
			Name: e.name,
			Kind: models.HolidayKindOptional,
		})
	}
	return records
}

package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/acadepol/horarios-api/internal/models"
)

// Discipline distribution files are headerless CSVs from the course office:
// name, class hours, encounter count, short code, clock hours. Only the
// first five columns are meaningful.

// DisciplineLoader reads distribution CSVs into disciplines, filling the
// placement constraints from an institutional preset.
type DisciplineLoader struct {
	logger *zap.Logger
}

// NewDisciplineLoader constructs the loader.
func NewDisciplineLoader(logger *zap.Logger) *DisciplineLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplineLoader{logger: logger}
}

// Load parses the distribution file. Rows whose hour column is not numeric
// are skipped; a leading header row is detected by its first cell.
func (l *DisciplineLoader) Load(r io.Reader, preset SlotPreset, instructorID, cohortID string) ([]models.Discipline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var disciplines []models.Discipline
	rowNo := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read discipline distribution row %d: %w", rowNo+1, err)
		}
		rowNo++
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" || strings.EqualFold(name, "Disciplina") {
			continue
		}
		hours, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || hours <= 0 {
			l.logger.Debug("skipping discipline row without numeric hours",
				zap.Int("row", rowNo), zap.String("name", name))
			continue
		}

		id := name
		if len(row) >= 4 && strings.TrimSpace(row[3]) != "" {
			id = strings.TrimSpace(row[3])
		}

		disciplines = append(disciplines, preset.Apply(models.Discipline{
			ID:            id,
			Name:          name,
			RequiredHours: hours,
			InstructorID:  instructorID,
			CohortID:      cohortID,
		}))
	}

	l.logger.Debug("discipline distribution loaded",
		zap.Int("rows", rowNo), zap.Int("disciplines", len(disciplines)))
	return disciplines, nil
}

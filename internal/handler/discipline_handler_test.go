package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadepol/horarios-api/internal/dto"
	"github.com/acadepol/horarios-api/internal/loader"
)

func newDisciplineRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/disciplines/parse", NewDisciplineHandler(loader.NewDisciplineLoader(nil)).Parse)
	return router
}

func postDistributionFile(t *testing.T, router *gin.Engine, target, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "distribution.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, target, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDisciplineHandlerParse(t *testing.T) {
	router := newDisciplineRouter()
	content := "Disciplina,CH,Encontros,Sigla,Horas\n" +
		"Criminologia Aplicada,40,10,CRIM,33\n" +
		"Direitos Humanos,20,5,DH,17\n"

	w := postDistributionFile(t, router, "/disciplines/parse?preset=weekly&instructorId=P1&cohortId=C1", content)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.DisciplineRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)

	first := envelope.Data[0]
	assert.Equal(t, "CRIM", first.ID)
	assert.Equal(t, "Criminologia Aplicada", first.Name)
	assert.Equal(t, 40, first.RequiredHours)
	assert.Equal(t, "P1", first.InstructorID)
	assert.Equal(t, "C1", first.CohortID)
	assert.Equal(t, []string{"monday", "wednesday"}, first.Weekdays)
	require.Len(t, first.Windows, 2)
	assert.Equal(t, "19:00", first.Windows[0].Start)
	assert.Equal(t, 100, first.MaxSessionMinutes)
}

func TestDisciplineHandlerParseBiweeklyPreset(t *testing.T) {
	router := newDisciplineRouter()

	w := postDistributionFile(t, router, "/disciplines/parse?preset=biweekly&instructorId=P1&cohortId=C1", "Balistica,30,8,BAL,25\n")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.DisciplineRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, []string{"friday", "saturday"}, envelope.Data[0].Weekdays)
	assert.Len(t, envelope.Data[0].Windows, 6)
}

func TestDisciplineHandlerParseValidation(t *testing.T) {
	router := newDisciplineRouter()

	w := postDistributionFile(t, router, "/disciplines/parse?preset=weekly&cohortId=C1", "Balistica,30\n")
	require.Equal(t, http.StatusBadRequest, w.Code, "instructorId is required")

	w = postDistributionFile(t, router, "/disciplines/parse?preset=hourly&instructorId=P1&cohortId=C1", "Balistica,30\n")
	require.Equal(t, http.StatusBadRequest, w.Code, "unknown preset names are rejected")

	req, err := http.NewRequest(http.MethodPost, "/disciplines/parse?instructorId=P1&cohortId=C1", nil)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code, "missing upload is rejected")
}

package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/internal/repositories/memory"
	"gearguard/internal/services"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/validation"
)

type envelope struct {
	Status  bool            `json:"status"`
	Body    json.RawMessage `json:"body"`
	Message string          `json:"message"`
	Total   *int            `json:"total"`
}

// WorkflowTestSuite прогоняет HTTP API поверх хранилища в памяти.
type WorkflowTestSuite struct {
	suite.Suite
	Echo *echo.Echo
	Bus  *eventbus.Bus
}

func (s *WorkflowTestSuite) SetupTest() {
	nopLogger := zap.NewNop()

	e := echo.New()
	e.Validator = validation.New()

	s.Bus = eventbus.New(nopLogger)
	svc := services.NewServices(memory.NewSet(memory.NewStore()), repositories.NewLocalLockRepository(), s.Bus, nopLogger)
	InitRouter(e, svc, NewLoggers(nopLogger), time.UTC)
	s.Echo = e
}

func (s *WorkflowTestSuite) TearDownTest() {
	s.Bus.Wait()
}

func (s *WorkflowTestSuite) do(method, path string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	if payload != nil {
		s.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSON ||
		rec.Header().Get(echo.HeaderContentType) == echo.MIMEApplicationJSONCharsetUTF8 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *WorkflowTestSuite) decode(env envelope, out interface{}) {
	s.Require().NoError(json.Unmarshal(env.Body, out))
}

func (s *WorkflowTestSuite) createEquipment(serial, department string) entities.Equipment {
	rec, env := s.do(http.MethodPost, "/api/equipment", map[string]string{
		"name": "Станок " + serial, "serial_number": serial, "department": department,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var eq entities.Equipment
	s.decode(env, &eq)
	return eq
}

func (s *WorkflowTestSuite) createRequest(subject, equipmentID string) dto.RequestDTO {
	payload := map[string]string{"subject": subject, "type": "Corrective"}
	if equipmentID != "" {
		payload["equipment_id"] = equipmentID
	}
	rec, env := s.do(http.MethodPost, "/api/requests", payload)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var req dto.RequestDTO
	s.decode(env, &req)
	return req
}

func (s *WorkflowTestSuite) moveTo(id string, stage entities.Stage) dto.RequestDTO {
	rec, env := s.do(http.MethodPut, "/api/requests/"+id+"/stage", map[string]string{"stage": string(stage)})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var req dto.RequestDTO
	s.decode(env, &req)
	return req
}

func (s *WorkflowTestSuite) equipmentCard(id string) dto.EquipmentDTO {
	rec, env := s.do(http.MethodGet, "/api/equipment/"+id, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var card dto.EquipmentDTO
	s.decode(env, &card)
	return card
}

func (s *WorkflowTestSuite) TestScrapScenario() {
	eq := s.createEquipment("EQ-1", "")
	r1 := s.createRequest("Протечка", eq.ID)
	r2 := s.createRequest("Износ", eq.ID)
	s.moveTo(r2.ID, entities.StageInProgress)

	s.Equal(entities.StageScrap, s.moveTo(r1.ID, entities.StageScrap).Stage)
	s.False(s.equipmentCard(eq.ID).IsScrapped)

	s.moveTo(r2.ID, entities.StageScrap)
	card := s.equipmentCard(eq.ID)
	s.True(card.IsScrapped)
	s.NotNil(card.ScrapDate)
	s.Equal(0, card.OpenRequests)

	s.Equal(entities.StageRepaired, s.moveTo(r1.ID, entities.StageRepaired).Stage)
	card = s.equipmentCard(eq.ID)
	s.False(card.IsScrapped)
	s.Nil(card.ScrapDate)

	rec, env := s.do(http.MethodGet, "/api/requests/"+r2.ID+"/history", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NotNil(env.Total)
	s.Equal(4, *env.Total)
}

func (s *WorkflowTestSuite) TestErrorMapping() {
	rec, env := s.do(http.MethodGet, "/api/requests/missing", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.False(env.Status)

	rec, _ = s.do(http.MethodPut, "/api/requests/missing/stage", map[string]string{"stage": "Scrap"})
	s.Equal(http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/requests", map[string]string{"type": "Corrective"})
	s.Equal(http.StatusBadRequest, rec.Code, "нет темы")

	rec, _ = s.do(http.MethodPost, "/api/requests", map[string]string{"subject": "Тема", "type": "Emergency"})
	s.Equal(http.StatusBadRequest, rec.Code)

	req := s.createRequest("Тема", "")
	rec, _ = s.do(http.MethodPut, "/api/requests/"+req.ID+"/stage", map[string]string{"stage": "Archived"})
	s.Equal(http.StatusBadRequest, rec.Code)

	s.createEquipment("SN-1", "")
	rec, _ = s.do(http.MethodPost, "/api/equipment", map[string]string{"name": "Дубль", "serial_number": "SN-1"})
	s.Equal(http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/requests/calendar?from=2025-04-01&to=2025-03-01", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *WorkflowTestSuite) TestManualScrapAndRestore() {
	eq := s.createEquipment("SN-1", "")

	rec, _ := s.do(http.MethodPost, "/api/equipment/"+eq.ID+"/scrap", map[string]string{})
	s.Equal(http.StatusBadRequest, rec.Code, "причина обязательна")

	rec, env := s.do(http.MethodPost, "/api/equipment/"+eq.ID+"/scrap", map[string]string{"reason": "Решение комиссии"})
	s.Require().Equal(http.StatusOK, rec.Code)
	var scrapped entities.Equipment
	s.decode(env, &scrapped)
	s.True(scrapped.IsScrapped)
	s.Equal(entities.ScrapOriginManual, scrapped.ScrapOrigin)

	rec, _ = s.do(http.MethodPost, "/api/requests", map[string]string{"subject": "Тема", "type": "Corrective", "equipment_id": eq.ID})
	s.Equal(http.StatusBadRequest, rec.Code, "списанное оборудование не принимает заявки")

	rec, _ = s.do(http.MethodPost, "/api/equipment/"+eq.ID+"/restore", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.False(s.equipmentCard(eq.ID).IsScrapped)
}

func (s *WorkflowTestSuite) TestTeamAssignmentAndFilters() {
	rec, env := s.do(http.MethodPost, "/api/teams", map[string]string{"name": "Mechanics"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var team entities.MaintenanceTeam
	s.decode(env, &team)

	rec, _ = s.do(http.MethodPost, "/api/teams/"+team.ID+"/technicians", map[string]string{"name": "Иван"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	eq := s.createEquipment("SN-1", "mechanics")
	req := s.createRequest("Замена масла", eq.ID)
	s.Require().NotNil(req.TeamID)
	s.Equal(team.ID, *req.TeamID)
	s.createRequest("Без оборудования", "")

	rec, env = s.do(http.MethodGet, "/api/requests?stage=New&team_id="+team.ID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list []dto.RequestDTO
	s.decode(env, &list)
	s.Require().Len(list, 1)
	s.Equal(req.ID, list[0].ID)

	rec, _ = s.do(http.MethodGet, "/api/requests?stage=Done", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/teams", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var teams []entities.MaintenanceTeam
	s.decode(env, &teams)
	s.Require().Len(teams, 1)
	s.Len(teams[0].Technicians, 1)
}

func (s *WorkflowTestSuite) TestPatchRequest() {
	req := s.createRequest("Осмотр", "")

	rec, env := s.do(http.MethodPatch, "/api/requests/"+req.ID, map[string]interface{}{
		"duration": 1.5, "priority": "urgent", "stage": "In Progress",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.RequestDTO
	s.decode(env, &updated)
	s.Equal(entities.PriorityUrgent, updated.Priority)
	s.Equal(entities.StageInProgress, updated.Stage)
	s.Require().NotNil(updated.Duration)
	s.Equal(1.5, *updated.Duration)

	rec, _ = s.do(http.MethodPatch, "/api/requests/"+req.ID, map[string]interface{}{"duration": -1})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *WorkflowTestSuite) TestBoardAndCalendar() {
	req := s.createRequest("Первая", "")
	s.createRequest("Вторая", "")
	s.moveTo(req.ID, entities.StageRepaired)

	rec, env := s.do(http.MethodGet, "/api/requests/board", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var columns []dto.BoardColumnDTO
	s.decode(env, &columns)
	s.Require().Len(columns, 4)
	s.Equal(1, columns[0].Count)
	s.Equal(1, columns[2].Count)

	rec, _ = s.do(http.MethodPost, "/api/requests", map[string]string{
		"subject": "ТО", "type": "Preventive", "scheduled_date": "2025-04-02T08:00:00Z",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodGet, "/api/requests/calendar?date=2025-04-02", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(1, *env.Total)

	rec, env = s.do(http.MethodGet, "/api/requests/calendar?from=2025-04-01&to=2025-05-01", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(1, *env.Total)
}

func (s *WorkflowTestSuite) TestReportsAndSystem() {
	eq := s.createEquipment("SN-1", "")
	req := s.createRequest("Поломка", eq.ID)
	s.moveTo(req.ID, entities.StageInProgress)

	for _, path := range []string{
		"/api/reports/technician-workload",
		"/api/reports/request-volume-trend",
		"/api/reports/equipment-breakdowns",
		"/api/reports/maintenance-type-impact",
		"/api/reports/request-aging",
		"/api/reports/team-productivity",
	} {
		rec, env := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusOK, rec.Code, path)
		s.True(env.Status, path)
	}

	rec, _ := s.do(http.MethodGet, "/api/reports/export", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")
	s.NotZero(rec.Body.Len())

	rec, _ = s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "gearguard_stage_transitions_total")
}

func (s *WorkflowTestSuite) TestEquipmentReconcile() {
	eq := s.createEquipment("SN-1", "")
	rec, env := s.do(http.MethodPost, "/api/equipment/"+eq.ID+"/reconcile", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var got entities.Equipment
	s.decode(env, &got)
	s.False(got.IsScrapped)

	rec, _ = s.do(http.MethodPost, "/api/equipment/missing/reconcile", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func TestWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowTestSuite))
}

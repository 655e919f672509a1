package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillgap/internal/delivery/http/handler"
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/delivery/http/routes"
	v1 "skillgap/internal/delivery/http/routes/v1"
	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/metrics"
	"skillgap/internal/pkg/jwt"
	"skillgap/internal/repository/memory"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type server struct {
	app      *fiber.App
	metrics  *metrics.Metrics
	ids      map[string]uuid.UUID
	employee uuid.UUID
	other    uuid.UUID
	position uuid.UUID
}

func newServer(t *testing.T, opts ...routes.Option) server {
	t.Helper()
	logger, _ := test.NewNullLogger()

	tax := memory.NewTaxonomy()
	ids := make(map[string]uuid.UUID)
	add := func(category, subcategory, group string, items ...string) {
		c := taxonomy.Category{ID: uuid.New(), Name: category}
		sc := taxonomy.Subcategory{ID: uuid.New(), CategoryID: c.ID, Name: subcategory}
		g := taxonomy.Group{ID: uuid.New(), SubcategoryID: sc.ID, Name: group}
		tax.AddCategory(c)
		tax.AddSubcategory(sc)
		tax.AddGroup(g)
		for _, name := range items {
			it := taxonomy.Item{ID: uuid.New(), GroupID: g.ID, Name: name}
			tax.AddItem(it)
			ids[name] = it.ID
		}
	}
	add("Technology", "Programming", "Languages", "Python", "Java", "Go")
	add("Business", "Management", "Delivery", "Project Management")

	skills := memory.NewEmployeeSkills(tax)
	reqs := memory.NewPositionRequirements(tax)
	employee, other, position := uuid.New(), uuid.New(), uuid.New()
	skills.AddEmployee(employee)
	skills.AddEmployee(other)
	reqs.AddPosition(position)

	m := metrics.New()
	resolver := usecase.NewHierarchyResolver(tax, m, logger)
	normalizer := usecase.NewNormalizer(tax, nil, usecase.NormalizeOptions{}, m, logger)
	skillUC := usecase.NewEmployeeSkillUsecase(skills, tax, normalizer, logger)
	reqUC := usecase.NewPositionRequirementUsecase(reqs, tax, logger)

	handlers := v1.Handlers{
		Normalize:           handler.NewNormalizeHandler(normalizer),
		Taxonomy:            handler.NewTaxonomyHandler(usecase.NewTaxonomyUsecase(tax, resolver, logger)),
		EmployeeSkill:       handler.NewEmployeeSkillHandler(skillUC),
		PositionRequirement: handler.NewPositionRequirementHandler(reqUC),
		GapAnalysis:         handler.NewGapAnalysisHandler(usecase.NewGapAnalysisUsecase(skillUC, reqUC, m, logger)),
	}

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
	opts = append([]routes.Option{routes.WithMetrics("/metrics", m.Handler())}, opts...)
	routes.NewRegistry(handler.NewHealthHandler(fakePinger{}, fakePinger{}), handlers, opts...).Register(app)

	return server{app: app, metrics: m, ids: ids, employee: employee, other: other, position: position}
}

func (s server) do(t *testing.T, method, path string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type normalizeData struct {
	Results []struct {
		RawSkill          string     `json:"raw_skill"`
		TaxonomySkillID   *uuid.UUID `json:"taxonomy_skill_id"`
		TaxonomySkillName *string    `json:"taxonomy_skill_name"`
		Confidence        float64    `json:"confidence"`
		Outcome           string     `json:"outcome"`
		Matches           []struct {
			Name     string  `json:"name"`
			Category *string `json:"category"`
		} `json:"matches"`
	} `json:"results"`
	Summary struct {
		Total     int `json:"total"`
		Matched   int `json:"matched"`
		Unmatched int `json:"unmatched"`
	} `json:"summary"`
}

func TestNormalizeHandler_Normalize(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/skills/normalize", map[string]any{
		"raw_skills": []any{"python", 42, "  ", "Underwater basket weaving"},
	})
	require.Equal(t, http.StatusOK, status)

	data := decodeData[normalizeData](t, env)
	require.Len(t, data.Results, 4)

	py := data.Results[0]
	assert.Equal(t, "python", py.RawSkill)
	assert.Equal(t, "matched", py.Outcome)
	require.NotNil(t, py.TaxonomySkillID)
	assert.Equal(t, s.ids["Python"], *py.TaxonomySkillID)
	assert.Equal(t, 1.0, py.Confidence)
	require.NotEmpty(t, py.Matches)
	require.NotNil(t, py.Matches[0].Category)
	assert.Equal(t, "Technology", *py.Matches[0].Category)

	assert.Equal(t, "empty_input", data.Results[1].Outcome)
	assert.Equal(t, "empty_input", data.Results[2].Outcome)
	assert.Equal(t, "unmatched", data.Results[3].Outcome)
	assert.Nil(t, data.Results[3].TaxonomySkillID)

	assert.Equal(t, 4, data.Summary.Total)
	assert.Equal(t, 1, data.Summary.Matched)
	assert.Equal(t, 3, data.Summary.Unmatched)
}

func TestNormalizeHandler_ExplicitZeroThreshold(t *testing.T) {
	s := newServer(t)

	for _, tt := range []struct {
		options map[string]any
		want    string
	}{
		{map[string]any{"confidence_threshold": 0}, "matched"},
		{map[string]any{}, "unmatched"},
	} {
		status, env := s.do(t, http.MethodPost, "/api/v1/skills/normalize", map[string]any{
			"raw_skills": []string{"Pyth"},
			"options":    tt.options,
		})
		require.Equal(t, http.StatusOK, status)
		data := decodeData[normalizeData](t, env)
		require.Len(t, data.Results, 1)
		assert.Equal(t, tt.want, data.Results[0].Outcome, "options %v", tt.options)
	}
}

func TestNormalizeHandler_HierarchyOptOut(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/skills/normalize", map[string]any{
		"raw_skills": []string{"Java"},
		"options":    map[string]any{"include_hierarchy": false, "max_matches": 1},
	})
	require.Equal(t, http.StatusOK, status)

	data := decodeData[normalizeData](t, env)
	require.Len(t, data.Results, 1)
	require.Len(t, data.Results[0].Matches, 1)
	assert.Nil(t, data.Results[0].Matches[0].Category)
}

func TestNormalizeHandler_BadRequests(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing raw_skills", map[string]any{}},
		{"threshold above one", map[string]any{"raw_skills": []string{"Go"}, "options": map[string]any{"confidence_threshold": 1.5}}},
		{"negative threshold", map[string]any{"raw_skills": []string{"Go"}, "options": map[string]any{"confidence_threshold": -0.1}}},
		{"zero max matches", map[string]any{"raw_skills": []string{"Go"}, "options": map[string]any{"max_matches": 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, http.MethodPost, "/api/v1/skills/normalize", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestNormalizeHandler_Cluster(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/skills/cluster", map[string]any{
		"raw_skills": []string{"JavaScript", "Javascript", "Python", "  "},
	})
	require.Equal(t, http.StatusOK, status)

	data := decodeData[struct {
		Clusters [][]string `json:"clusters"`
	}](t, env)
	assert.Equal(t, [][]string{{"JavaScript", "Javascript"}, {"Python"}}, data.Clusters)

	status, _ = s.do(t, http.MethodPost, "/api/v1/skills/cluster", map[string]any{
		"raw_skills": []string{"Go"},
		"threshold":  2,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTaxonomyHandler_GetItem(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodGet, "/api/v1/taxonomy/items/"+s.ids["Go"].String(), nil)
	require.Equal(t, http.StatusOK, status)
	item := decodeData[struct {
		Name     string   `json:"name"`
		Category *string  `json:"category"`
		Group    *string  `json:"group"`
		Keywords []string `json:"keywords"`
	}](t, env)
	assert.Equal(t, "Go", item.Name)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Technology", *item.Category)
	require.NotNil(t, item.Group)
	assert.Equal(t, "Languages", *item.Group)
	assert.NotNil(t, item.Keywords)

	status, _ = s.do(t, http.MethodGet, "/api/v1/taxonomy/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/taxonomy/items/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Taxonomy skill not found", env.Message)
}

type employeeSkillData struct {
	ID              uuid.UUID  `json:"id"`
	TaxonomySkillID *uuid.UUID `json:"taxonomy_skill_id"`
	SkillName       string     `json:"skill_name"`
	CategoryName    *string    `json:"category_name"`
	Proficiency     int        `json:"proficiency"`
	Source          string     `json:"source"`
}

func TestEmployeeSkillHandler_Lifecycle(t *testing.T) {
	s := newServer(t)
	base := "/api/v1/employees/" + s.employee.String() + "/skills"

	status, env := s.do(t, http.MethodPost, base, map[string]any{
		"taxonomy_skill_id": s.ids["Python"],
		"proficiency":       4,
		"source":            "assessment",
	})
	require.Equal(t, http.StatusCreated, status)
	created := decodeData[employeeSkillData](t, env)
	assert.Equal(t, "Python", created.SkillName)
	assert.Equal(t, 4, created.Proficiency)
	require.NotNil(t, created.CategoryName)

	status, env = s.do(t, http.MethodPost, base, map[string]any{
		"id":                created.ID,
		"taxonomy_skill_id": s.ids["Python"],
		"proficiency":       5,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, decodeData[employeeSkillData](t, env).Proficiency)

	status, env = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]employeeSkillData](t, env), 1)

	status, _ = s.do(t, http.MethodPost, "/api/v1/employees/"+s.other.String()+"/skills", map[string]any{
		"id":          created.ID,
		"raw_skill":   "Go",
		"proficiency": 2,
	})
	assert.Equal(t, http.StatusForbidden, status)

	otherBase := "/api/v1/employees/" + s.other.String() + "/skills/" + created.ID.String()
	status, _ = s.do(t, http.MethodDelete, otherBase, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodDelete, base+"/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, base+"/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestEmployeeSkillHandler_Errors(t *testing.T) {
	s := newServer(t)
	base := "/api/v1/employees/" + s.employee.String() + "/skills"

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"bad proficiency", base, map[string]any{"raw_skill": "Go", "proficiency": 9}, http.StatusBadRequest},
		{"no skill", base, map[string]any{"proficiency": 3}, http.StatusBadRequest},
		{"bad source", base, map[string]any{"raw_skill": "Go", "proficiency": 3, "source": "rumour"}, http.StatusBadRequest},
		{"unknown taxonomy item", base, map[string]any{"taxonomy_skill_id": uuid.New(), "proficiency": 3}, http.StatusNotFound},
		{"unknown employee", "/api/v1/employees/" + uuid.NewString() + "/skills", map[string]any{"raw_skill": "Go", "proficiency": 3}, http.StatusNotFound},
		{"bad employee id", "/api/v1/employees/nope/skills", map[string]any{"raw_skill": "Go", "proficiency": 3}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestEmployeeSkillHandler_Import(t *testing.T) {
	s := newServer(t)
	base := "/api/v1/employees/" + s.employee.String() + "/skills/import"

	status, env := s.do(t, http.MethodPost, base, map[string]any{
		"raw_skills": []string{"python", "Knitting", "PYTHON"},
	})
	require.Equal(t, http.StatusOK, status)

	data := decodeData[struct {
		Created []employeeSkillData `json:"created"`
		Skipped []string            `json:"skipped"`
		Results []json.RawMessage   `json:"results"`
	}](t, env)
	require.Len(t, data.Created, 2)
	assert.Equal(t, "cv", data.Created[0].Source)
	require.NotNil(t, data.Created[0].TaxonomySkillID)
	assert.Equal(t, s.ids["Python"], *data.Created[0].TaxonomySkillID)
	assert.Nil(t, data.Created[1].TaxonomySkillID)
	assert.Equal(t, []string{"PYTHON"}, data.Skipped)
	assert.Len(t, data.Results, 3)

	status, _ = s.do(t, http.MethodPost, base, map[string]any{"raw_skills": []string{}})
	assert.Equal(t, http.StatusBadRequest, status)
}

type requirementData struct {
	ID                  uuid.UUID `json:"id"`
	SkillName           string    `json:"skill_name"`
	CategoryName        *string   `json:"category_name"`
	ImportanceLevel     int       `json:"importance_level"`
	RequiredProficiency int       `json:"required_proficiency"`
}

func TestPositionRequirementHandler_Lifecycle(t *testing.T) {
	s := newServer(t)
	base := "/api/v1/positions/" + s.position.String() + "/requirements"

	status, env := s.do(t, http.MethodPost, base, map[string]any{
		"taxonomy_skill_id":    s.ids["Go"],
		"importance_level":     5,
		"required_proficiency": 4,
	})
	require.Equal(t, http.StatusCreated, status)
	created := decodeData[requirementData](t, env)
	assert.Equal(t, "Go", created.SkillName)

	status, env = s.do(t, http.MethodPost, base, map[string]any{
		"taxonomy_skill_id":    s.ids["Go"],
		"importance_level":     1,
		"required_proficiency": 1,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Requirement already exists", env.Message)

	status, env = s.do(t, http.MethodPut, base+"/"+created.ID.String(), map[string]any{
		"importance_level":     3,
		"required_proficiency": 2,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, decodeData[requirementData](t, env).ImportanceLevel)

	status, env = s.do(t, http.MethodGet, base+"?include_hierarchy=false", nil)
	require.Equal(t, http.StatusOK, status)
	flat := decodeData[[]requirementData](t, env)
	require.Len(t, flat, 1)
	assert.Nil(t, flat[0].CategoryName)

	status, _ = s.do(t, http.MethodGet, base+"?include_hierarchy=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodPut, base, map[string]any{
		"requirements": []map[string]any{
			{"taxonomy_skill_id": s.ids["Python"], "importance_level": 3, "required_proficiency": 3},
			{"taxonomy_skill_id": s.ids["Java"], "importance_level": 2, "required_proficiency": 3},
		},
	})
	require.Equal(t, http.StatusOK, status)
	replaced := decodeData[[]requirementData](t, env)
	require.Len(t, replaced, 2)
	require.NotNil(t, replaced[0].CategoryName)

	status, _ = s.do(t, http.MethodPut, base, map[string]any{
		"requirements": []map[string]any{
			{"taxonomy_skill_id": s.ids["Go"], "importance_level": 7, "required_proficiency": 3},
		},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]requirementData](t, env), 2)

	status, _ = s.do(t, http.MethodDelete, base+"/"+replaced[0].ID.String(), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/positions/"+uuid.NewString()+"/requirements", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGapAnalysisHandler_Generate(t *testing.T) {
	s := newServer(t)
	skills := "/api/v1/employees/" + s.employee.String() + "/skills"
	reqs := "/api/v1/positions/" + s.position.String() + "/requirements"

	status, _ := s.do(t, http.MethodPost, skills, map[string]any{"taxonomy_skill_id": s.ids["Python"], "proficiency": 4})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(t, http.MethodPut, reqs, map[string]any{
		"requirements": []map[string]any{
			{"taxonomy_skill_id": s.ids["Python"], "importance_level": 3, "required_proficiency": 3},
			{"taxonomy_skill_id": s.ids["Go"], "importance_level": 5, "required_proficiency": 4},
		},
	})
	require.Equal(t, http.StatusOK, status)

	path := "/api/v1/gap-analysis?employee_id=" + s.employee.String() + "&position_id=" + s.position.String()
	status, env := s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)

	data := decodeData[struct {
		MatchPercentage     float64 `json:"match_percentage"`
		CriticalGapCount    int     `json:"critical_gap_count"`
		TotalRequirements   int     `json:"total_requirements"`
		MatchedRequirements int     `json:"matched_requirements"`
		PrioritizedGaps     []struct {
			SkillName string `json:"skill_name"`
			GapScore  int    `json:"gap_score"`
			Critical  bool   `json:"critical"`
		} `json:"prioritized_gaps"`
		GapsByCategory map[string][]json.RawMessage `json:"gaps_by_category"`
	}](t, env)
	assert.Equal(t, 50.0, data.MatchPercentage)
	assert.Equal(t, 2, data.TotalRequirements)
	assert.Equal(t, 1, data.MatchedRequirements)
	assert.Equal(t, 1, data.CriticalGapCount)
	require.Len(t, data.PrioritizedGaps, 1)
	assert.Equal(t, "Go", data.PrioritizedGaps[0].SkillName)
	assert.Equal(t, 20, data.PrioritizedGaps[0].GapScore)
	assert.True(t, data.PrioritizedGaps[0].Critical)
	assert.Len(t, data.GapsByCategory["Technology"], 1)

	status, _ = s.do(t, http.MethodGet, "/api/v1/gap-analysis?employee_id="+s.employee.String(), nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/gap-analysis?employee_id="+uuid.NewString()+"&position_id="+s.position.String(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Employee not found", env.Message)
}

func TestHealthHandler(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tests := []struct {
		name  string
		db    handler.Pinger
		cache handler.Pinger
		want  int
		state string
	}{
		{"all up", fakePinger{}, fakePinger{}, http.StatusOK, "up"},
		{"cache down is still healthy", fakePinger{}, fakePinger{err: errors.New("refused")}, http.StatusOK, "down"},
		{"database down", fakePinger{err: errors.New("refused")}, fakePinger{}, http.StatusServiceUnavailable, "up"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(middleware.NewErrorMiddleware(logger).Middleware())
			handler.NewHealthHandler(tt.db, tt.cache).RegisterRoutes(app)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			var env envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			health := decodeData[map[string]string](t, env)
			assert.Equal(t, tt.state, health["cache"])
		})
	}
}

func TestRoutes_MetricsEndpoint(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(t, http.MethodPost, "/api/v1/skills/normalize", map[string]any{"raw_skills": []string{"Go"}})
	require.Equal(t, http.StatusOK, status)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `skillgap_normalizations_total{outcome="matched"} 1`)
}

func TestRoutes_AuthGuardsAPIOnly(t *testing.T) {
	svc := jwt.NewHMACService("secret", time.Minute)
	s := newServer(t, routes.WithAuth(middleware.NewAuthMiddleware(svc).Middleware()))
	path := "/api/v1/taxonomy/items/" + s.ids["Go"].String()

	status, _ := s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := svc.GenerateAccessToken(uuid.New(), "hr@example.com", "hr")
	require.NoError(t, err)
	status, _ = s.do(t, http.MethodGet, path, nil, fiber.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

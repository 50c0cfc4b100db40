package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwillc/netposture/internal/core/domain"
	"github.com/uwillc/netposture/internal/core/ports"
	"github.com/uwillc/netposture/internal/core/services/scoring"
)

func f(v float64) *float64 { return &v }

var handlerNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// memProfiles is an in-memory ports.ProfileRepository.
type memProfiles struct {
	profiles []domain.DeviceProfile
	saved    []domain.DeviceProfile
	deleted  []string
}

func (m *memProfiles) List(context.Context) ([]domain.DeviceProfile, error) {
	return m.profiles, nil
}

func (m *memProfiles) Get(_ context.Context, name string) (*domain.DeviceProfile, error) {
	for i := range m.profiles {
		if m.profiles[i].Name == name {
			return &m.profiles[i], nil
		}
	}
	return nil, ports.ErrProfileNotFound
}

func (m *memProfiles) Save(_ context.Context, p domain.DeviceProfile) error {
	m.saved = append(m.saved, p)
	return nil
}

func (m *memProfiles) Delete(_ context.Context, name string) error {
	for _, p := range m.profiles {
		if p.Name == name {
			m.deleted = append(m.deleted, name)
			return nil
		}
	}
	return ports.ErrProfileNotFound
}

func (m *memProfiles) Close() error { return nil }

// memMatcher serves canned records per platform.
type memMatcher struct {
	byPlatform map[string][]domain.VulnerabilityRecord
}

func (m *memMatcher) Match(_ context.Context, profile domain.DeviceProfile) ([]domain.VulnerabilityRecord, error) {
	if profile.IsUnknown() {
		return []domain.VulnerabilityRecord{}, nil
	}
	recs := []domain.VulnerabilityRecord{}
	for _, rec := range m.byPlatform[profile.Platform] {
		if rec.MatchesVersion(profile.Version) {
			recs = append(recs, rec)
		}
	}
	domain.SortRecords(recs)
	return recs, nil
}

type captureEvents struct {
	batches []*domain.BatchScoreResult
}

func (c *captureEvents) BroadcastBatchScored(batch *domain.BatchScoreResult) {
	c.batches = append(c.batches, batch)
}

func newOrchestrator(matcher ports.Matcher) (*scoring.Orchestrator, *scoring.Aggregator) {
	agg := scoring.NewAggregator(nil)
	clock := ports.ClockFunc(func() time.Time { return handlerNow })
	return scoring.NewOrchestrator(matcher, nil, agg, clock), agg
}

func criticalExactRecord() domain.VulnerabilityRecord {
	return domain.VulnerabilityRecord{
		ID:            "CVE-2023-20198",
		Platform:      "IOS XE",
		VersionExact:  "17.9.3",
		CVSSScore:     f(10.0),
		Severity:      domain.SeverityCritical,
		FixedIn:       "17.9.4a",
		PublishedDate: handlerNow.AddDate(0, 0, -30),
	}
}

func TestHandleSecurityScores(t *testing.T) {
	profiles := &memProfiles{profiles: []domain.DeviceProfile{
		{Name: "edge", Platform: "IOS XE", Version: "17.9.3"},
		{Name: "mystery"},
	}}
	matcher := &memMatcher{byPlatform: map[string][]domain.VulnerabilityRecord{
		"IOS XE": {criticalExactRecord()},
	}}
	orch, _ := newOrchestrator(matcher)
	events := &captureEvents{}
	h := NewScoreHandler(profiles, orch, events)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/security-scores", nil)
	rr := httptest.NewRecorder()
	h.HandleSecurityScores(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var batch domain.BatchScoreResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &batch))

	require.Len(t, batch.Results, 2)
	// 25 * 0.7 (patch available) = 17.5 penalty -> 82.5 -> 83
	assert.Equal(t, 83, *batch.Results[0].Score)
	assert.Equal(t, domain.LabelGood, *batch.Results[0].Label)
	assert.Nil(t, batch.Results[1].Score)

	require.Len(t, events.batches, 1, "completed batch pushed to clients")
	assert.Equal(t, batch.BatchID, events.batches[0].BatchID)
}

func TestHandleVulnerabilities(t *testing.T) {
	profiles := &memProfiles{profiles: []domain.DeviceProfile{
		{Name: "edge", Platform: "IOS XE", Version: "17.9.3"},
	}}
	matcher := &memMatcher{byPlatform: map[string][]domain.VulnerabilityRecord{
		"IOS XE": {criticalExactRecord()},
	}}
	orch, _ := newOrchestrator(matcher)
	h := NewScoreHandler(profiles, orch, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/vulnerabilities", nil)
	rr := httptest.NewRecorder()
	h.HandleVulnerabilities(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var batch domain.BatchVulnerabilityResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 1)
	assert.Equal(t, domain.StatusCritical, batch.Results[0].Status)
	assert.Equal(t, []string{"CVE-2023-20198"}, batch.Results[0].CVEs)
}

func TestProfileHandler_CRUD(t *testing.T) {
	repo := &memProfiles{profiles: []domain.DeviceProfile{
		{Name: "edge", Platform: "IOS XE", Version: "17.9.3"},
	}}
	h := NewProfileHandler(repo)

	t.Run("list", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("get found", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/profiles/edge", nil),
			map[string]string{"name": "edge"})
		rr := httptest.NewRecorder()
		h.HandleGet(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/profiles/ghost", nil),
			map[string]string{"name": "ghost"})
		rr := httptest.NewRecorder()
		h.HandleGet(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("save", func(t *testing.T) {
		body, _ := json.Marshal(domain.DeviceProfile{Name: "core", Platform: "NX-OS", Version: "10.2.5"})
		rr := httptest.NewRecorder()
		h.HandleSave(rr, httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader(body)))
		require.Equal(t, http.StatusCreated, rr.Code)
		require.Len(t, repo.saved, 1)
		assert.Equal(t, "core", repo.saved[0].Name)
	})

	t.Run("save without name", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleSave(rr, httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader([]byte(`{"platform":"IOS XE"}`))))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("delete missing", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/profiles/ghost", nil),
			map[string]string{"name": "ghost"})
		rr := httptest.NewRecorder()
		h.HandleDelete(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandleAnalyze(t *testing.T) {
	matcher := &memMatcher{byPlatform: map[string][]domain.VulnerabilityRecord{
		"IOS XE": {criticalExactRecord()},
	}}
	_, agg := newOrchestrator(matcher)
	clock := ports.ClockFunc(func() time.Time { return handlerNow })
	h := NewCVEHandler(nil, matcher, nil, agg, clock)

	body := []byte(`{"platform": "IOS XE", "version": "17.9.3"}`)
	rr := httptest.NewRecorder()
	h.HandleAnalyze(rr, httptest.NewRequest(http.MethodPost, "/api/cve/analyze", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.CVECount)
	assert.Equal(t, "17.9.4a", resp.RecommendedUpgrade)
	assert.Equal(t, map[string]int{"critical": 1}, resp.SeverityCounts)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 83, *resp.Score.Score)
}

func TestHandleAnalyze_MissingFields(t *testing.T) {
	h := NewCVEHandler(nil, &memMatcher{}, nil, nil, nil)

	rr := httptest.NewRecorder()
	h.HandleAnalyze(rr, httptest.NewRequest(http.MethodPost, "/api/cve/analyze", bytes.NewReader([]byte(`{"platform":"IOS XE"}`))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGeneratorHandlers(t *testing.T) {
	h := NewGeneratorHandler()

	t.Run("snmpv3", func(t *testing.T) {
		body := []byte(`{"mode":"secure-default","host":"10.0.0.5","user":"mon","group":"GRP"}`)
		rr := httptest.NewRecorder()
		h.HandleSNMPv3(rr, httptest.NewRequest(http.MethodPost, "/api/generate/snmpv3", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp GeneratedConfig
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Config, "snmp-server")
		assert.Equal(t, "cli", resp.Format)
	})

	t.Run("ntp invalid", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HandleNTP(rr, httptest.NewRequest(http.MethodPost, "/api/generate/ntp", bytes.NewReader([]byte(`{}`))))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("aaa oneline", func(t *testing.T) {
		body := []byte(`{"mode":"local-only","output_format":"oneline"}`)
		rr := httptest.NewRecorder()
		h.HandleAAA(rr, httptest.NewRequest(http.MethodPost, "/api/generate/aaa", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp GeneratedConfig
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Config, " ; ")
		assert.Equal(t, "oneline", resp.Format)
	})
}

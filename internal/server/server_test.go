package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

const housingCSV = `longitude,latitude,housing_median_age,total_rooms,total_bedrooms,population,households,median_income,median_house_value,ocean_proximity
-122.23,37.88,41,880,129,322,126,8.3252,452600,NEAR BAY
-122.22,37.86,21,7099,1106,2401,1138,8.3014,358500,NEAR BAY
-122.24,37.85,52,1467,190,496,177,7.2574,352100,NEAR BAY
-118.30,34.05,30,2000,400,1000,0,2.5,150000,<1H OCEAN
-117.10,32.70,15,3000,600,1500,500,1.0,200000,NEAR OCEAN
-119.80,36.70,8,2500,500,1300,450,10.0,95000,INLAND
`

func newTestServer(t *testing.T, builtin string, maxUpload int64) *Server {
	t.Helper()
	log := zaptest.NewLogger(t)
	dash := dashboard.DefaultConfig()
	dash.BuiltinPath = builtin
	cfg := DefaultConfig()
	if maxUpload > 0 {
		cfg.MaxUploadBytes = maxUpload
	}
	return New(cfg, dash, dataset.NewLoader(dataset.DefaultOptions(), log), log)
}

func do(t *testing.T, h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func upload(t *testing.T, h http.Handler, id, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/dataset/upload", &buf, mw.FormDataContentType())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestUploadThenPanels(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := upload(t, h, id, "housing.csv", []byte(housingCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	u := decode(t, rec)
	for _, panel := range []string{"overview", "map", "statistics"} {
		require.Contains(t, u, panel)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/overview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decode(t, rec)["content"].(map[string]any)
	assert.EqualValues(t, 6, overview["rows"])
	assert.Equal(t, "housing.csv", overview["name"])

	body := `{"price":"median_house_value","filters":{"ocean_proximity":{"kind":"set","values":["NEAR BAY"]}}}`
	rec = do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/explore", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decode(t, rec)
	require.Empty(t, m["warning"])
	content := m["content"].(map[string]any)
	assert.EqualValues(t, 3, content["filtered_rows"])
	assert.EqualValues(t, 6, content["total_rows"])
	assert.Equal(t, "median_house_value", content["price"])

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/statistics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode(t, rec)["content"].(map[string]any)
	snap := st["snapshot"].(map[string]any)
	assert.EqualValues(t, 6, snap["count"])
	assert.NotEmpty(t, st["charts"])
}

func TestExploreRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/explore", strings.NewReader(`{"price":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, kindInvalidRequest, decode(t, rec)["kind"])
}

func TestExploreUnknownFilterColumnIsPanelWarning(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)
	require.Equal(t, http.StatusOK, upload(t, h, id, "housing.csv", []byte(housingCSV)).Code)

	body := `{"filters":{"nope":{"kind":"range","min":1,"max":2}}}`
	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/explore", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.Nil(t, m["content"])
	assert.Contains(t, m["warning"], "nope")
}

func TestLoadBuiltin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "housing.csv")
	require.NoError(t, os.WriteFile(path, []byte(housingCSV), 0o644))
	s := newTestServer(t, path, 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/dataset/builtin", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	overview := decode(t, rec)["overview"].(map[string]any)
	assert.NotNil(t, overview["content"])
}

func TestLoadFailuresAre422(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"), 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/dataset/builtin", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "file_not_found", decode(t, rec)["kind"])

	// the failed load stays visible through the overview panel
	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/overview", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["warning"], "file not found")

	rec = upload(t, h, id, "empty.csv", []byte("  \n"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "file_not_found", decode(t, rec)["kind"])

	rec = upload(t, h, id, "bad.csv", []byte("a,b\n1,x\"y\n"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "parse_error", decode(t, rec)["kind"])
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, "housing.csv", 64)
	h := s.Handler()
	id := createSession(t, h)

	rec := upload(t, h, id, "housing.csv", []byte(housingCSV))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, kindUploadTooLarge, decode(t, rec)["kind"])
}

func TestUploadWithoutFilePart(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "housing.csv"))
	require.NoError(t, mw.Close())
	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/dataset/upload", &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManualEntry(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/manual", strings.NewReader(`{"count":2}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode(t, rec)["content"].(map[string]any)
	assert.EqualValues(t, 2, content["points"])
	assert.Contains(t, content["message"], "$200,000")

	body := `{"points":[{"longitude":-500,"latitude":35,"housing_median_age":20,"total_rooms":1000,"total_bedrooms":200,"population":500,"households":150,"median_income":3}]}`
	rec = do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/manual", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.Nil(t, m["content"])
	assert.Contains(t, m["warning"], "longitude")
}

func TestManualCountIsCappedBeforeAllocating(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/manual", strings.NewReader(`{"count":2000000000}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.Nil(t, m["content"])
	assert.Contains(t, m["warning"], "at most 20 points")

	rec = do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/manual", strings.NewReader(`{"count":20}`), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 20, decode(t, rec)["content"].(map[string]any)["points"])
}

func TestDeletedSessionsReleaseCachedUploads(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	for i := 0; i < 5; i++ {
		id := createSession(t, h)
		data := []byte(housingCSV + fmt.Sprintf("-120.00,35.00,%d,1000,200,500,150,3.0,100000,INLAND\n", i+1))
		rec := upload(t, h, id, "housing.csv", data)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Equal(t, 1, s.loader.CacheLen())
		require.Equal(t, 1, s.snaps.Len())

		rec = do(t, h, http.MethodDelete, "/api/v1/sessions/"+id, nil, "")
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 0, s.SessionCount())
	assert.Equal(t, 0, s.loader.CacheLen())
	assert.Equal(t, 0, s.snaps.Len())
}

func TestConcurrentLoadsReportTheirOwnOutcome(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	type load struct {
		body        *bytes.Buffer
		contentType string
		want        int
	}
	loads := make([]load, 20)
	for i := range loads {
		data, want := []byte(housingCSV), http.StatusOK
		if i%2 == 1 {
			data, want = []byte("  \n"), http.StatusUnprocessableEntity
		}
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "housing.csv")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		loads[i] = load{body: &buf, contentType: mw.FormDataContentType(), want: want}
	}

	var wg sync.WaitGroup
	for _, l := range loads {
		wg.Add(1)
		go func(l load) {
			defer wg.Done()
			rec := do(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/dataset/upload", l.body, l.contentType)
			assert.Equal(t, l.want, rec.Code, rec.Body.String())
		}(l)
	}
	wg.Wait()
}

func TestRowsPaging(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/rows", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["warning"], "no dataset loaded")

	require.Equal(t, http.StatusOK, upload(t, h, id, "housing.csv", []byte(housingCSV)).Code)

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/rows?offset=4&limit=10", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)["content"].(map[string]any)
	assert.EqualValues(t, 6, page["total"])
	assert.EqualValues(t, 4, page["offset"])
	rows := page["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "-117.10", rows[0].([]any)[0])

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/statistics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode(t, rec)["content"].(map[string]any)["raw"].(map[string]any)
	assert.Len(t, raw["rows"], 6)

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/rows?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSessionIs404(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sessions/nope/overview"},
		{http.MethodGet, "/api/v1/sessions/nope/statistics"},
		{http.MethodDelete, "/api/v1/sessions/nope"},
	} {
		rec := do(t, h, tc.method, tc.path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Equal(t, kindSessionNotFound, decode(t, rec)["kind"])
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	id := createSession(t, h)
	require.Equal(t, 1, s.SessionCount())

	rec := do(t, h, http.MethodDelete, "/api/v1/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.SessionCount())

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/overview", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "housing.csv", 0)
	h := s.Handler()
	do(t, h, http.MethodGet, "/healthz", nil, "")

	rec := do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "housing_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

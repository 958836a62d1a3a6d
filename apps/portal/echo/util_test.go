package echoportal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolascodet/canvas-remake/core"
	"github.com/nicolascodet/canvas-remake/core/quiz"
	"github.com/nicolascodet/canvas-remake/services/lmsapi"
	"github.com/nicolascodet/canvas-remake/services/logger"
	"github.com/nicolascodet/canvas-remake/storage/cache"
	"github.com/nicolascodet/canvas-remake/tests"
)

// testSession is the portal_session cookie every test browser carries.
const testSession = "3b241101-e2bb-4255-8caf-4136c566a962"

type testApp struct {
	*Server
	api  *testutil.FakeAPI
	logs *logsvc.MemoryLogger
}

func setup(t *testing.T) testApp {
	api := testutil.NewFakeAPI(t)

	conf := &core.Config{AppName: "Canvas", TestMode: true, Timezone: "Local"}
	conf.Server.DisableReqLogs = true
	conf.Cache.TTL = time.Minute

	client, err := lmsapi.NewClient(lmsapi.Options{BaseURL: api.URL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	store := cache.NewStore(client, conf.Cache.TTL)
	logs := new(logsvc.MemoryLogger)
	courses := cache.NewCourses(store, logs)
	require.NoError(t, courses.Init(context.Background()))
	quizzes := quiz.NewManager(store, quiz.WithLogger(logs))
	t.Cleanup(quizzes.Shutdown)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	srv, err := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logs,
		Store:      store,
		Courses:    courses,
		Quizzes:    quizzes,
		Validate:   validate,
		Translator: translator,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	return testApp{Server: srv, api: api, logs: logs}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	// wantHTML holds fragments the rendered page must contain
	wantHTML []string
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: testSession})
	return req, httptest.NewRecorder()
}

func newFormRequest(method, path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: testSession})
	return req, httptest.NewRecorder()
}

func (app testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.ServeHTTP(rec, req)
	return rec
}

func (app testApp) get(path string) *httptest.ResponseRecorder {
	return app.do(newRequest(http.MethodGet, path))
}

func (app testApp) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return app.do(newFormRequest(http.MethodPost, path, form))
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, r io.Reader, v interface{}) {
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
	for _, frag := range tt.wantHTML {
		assert.Contains(t, rec.Body.String(), frag)
	}
}

package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	. "github.com/trezcool/karo/apps/api/echo"
	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
	"github.com/trezcool/karo/core/student"
	emailsvc "github.com/trezcool/karo/services/email"
	"github.com/trezcool/karo/storage/docstore/inmem"
	"github.com/trezcool/karo/storage/feestore"
	"github.com/trezcool/karo/tests"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

var (
	conf    *core.Config
	app     Server
	feeRepo fee.Repository
	stdRepo student.Repository
	feeSvc  *fee.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func TestMain(m *testing.M) {
	conf = testutil.NewConfig()
	resetApp()
	os.Exit(m.Run())
}

// resetApp rebuilds the whole stack on a fresh store; call at the top of every
// test that writes data.
func resetApp() {
	store := inmemstore.NewStore()
	feeRepo = feestore.NewFeeRepository(store)
	stdRepo = feestore.NewStudentRepository(store)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	feeSvc = fee.NewService(feeRepo, stdRepo, mailSvc, conf)
	stdSvc := student.NewService(stdRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	fee.InitValidators(validate, translator)

	app = NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     testLogger{},
			FeeSvc:     feeSvc,
			StudentSvc: stdSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testLogger drops everything; API tests assert on responses, not logs.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, actor core.Actor, isAdmin, isTeacher, isStudent bool) string {
	t.Helper()
	claims := GetActorClaims(conf, actor, isAdmin, isTeacher, isStudent)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func getStudentToken(t *testing.T, std student.Student) string {
	return getToken(t, core.Actor{ID: std.ID, Name: std.Name, Email: std.Email}, false, false, true)
}

func getTeacherToken(t *testing.T) string {
	return getToken(t, core.Actor{ID: "tch1", Name: "Teacher", Email: "teacher@test.cd"}, false, true, false)
}

func getAdminToken(t *testing.T) string {
	return getToken(t, core.Actor{ID: "adm1", Name: "Admin", Email: "admin@test.cd"}, true, false, false)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

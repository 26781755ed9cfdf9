package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	filestore "github.com/trezcool/darasa/storage/files"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Enable(bool)                           {}
func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg, args) }

type env struct {
	app        *echoapi.Server
	conf       *core.Config
	usrRepo    user.Repository
	courses    learning.CourseRepository
	activities learning.ActivityRepository
	resources  learning.ResourceRepository
	objectives learning.ObjectiveRepository
	svc        learning.Service
}

func setup(t *testing.T) *env {
	t.Helper()

	conf := &core.Config{
		AppName:         "Darasa",
		TestMode:        true,
		SecretKey:       "sikri!",
		DefaultLanguage: "en",
		MaxUploadSize:   1 << 20,
		FrontendBaseURL: "http://localhost:3000",
		WorkDir:         core.Getwd(),
		DefaultFromEmail: mail.Address{
			Name:    "Darasa",
			Address: "noreply@darasa.test",
		},
		Server: core.ServerConfig{
			JWTExpirationDelta:        1 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	learning.InitValidators(validate, translator)

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	courses := dummydb.NewCourseRepository(db)
	activities := dummydb.NewActivityRepository(db)
	resources := dummydb.NewResourceRepository(db)
	objectives := dummydb.NewObjectiveRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	learningSvc := learning.NewService(learning.ServiceDeps{
		Courses:    courses,
		Activities: activities,
		Resources:  resources,
		Objectives: objectives,
		Users:      usrRepo,
		Files:      filestore.NewDiskStorage(t.TempDir()),
		MailSvc:    mailSvc,
		Validate:   validate,
		Logger:     testLogger{t: t},
		Conf:       conf,
	})

	// set up server
	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      testLogger{t: t},
		UserSvc:     usrSvc,
		LearningSvc: learningSvc,
		Validate:    validate,
		Translator:  translator,
	})

	return &env{
		app:        app,
		conf:       conf,
		usrRepo:    usrRepo,
		courses:    courses,
		activities: activities,
		resources:  resources,
		objectives: objectives,
		svc:        learningSvc,
	}
}

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

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(conf, usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
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
	if j1 == nil || j2 == nil {
		return false, nil
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

package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "LolC@t123", []string{user.RoleStudent}, true)
	testutil.CreateUser(t, env.usrRepo, "N Dog", "ndog", "ndog@test.cd", "LolC@t123", []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Username: "this field is required", Password: "this field is required"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: student.Username, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive user", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "ndog", Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "login with username", wantCode: http.StatusOK, body: marchallObj(t, echoapi.LoginRequest{Username: student.Username, Password: "LolC@t123"})},
		{name: "login with email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.LoginRequest{Username: student.Email, Password: "LolC@t123"})},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)

	naughty := testutil.CreateUser(t, env.usrRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{user.RoleStudent}, false) // 😂
	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    env.conf.AppName,
			Subject:   student.ID,
			Audience:  "Academia",
			ExpiresAt: now.Add(env.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * env.conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		IsStudent:    student.IsStudent(),
		Roles:        student.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, env.conf, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, env.conf, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	teacher := testutil.CreateUser(t, env.usrRepo, "Teacher", "teacher", "teacher@test.cd", "", []string{user.RoleTeacher}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, env.conf, student), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Get all", path: "/v1/users", token: getToken(t, env.conf, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, student, teacher, admin),
		},
		{
			name: "search", path: "/v1/users?search=tea", token: getToken(t, env.conf, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, teacher),
		},
		{
			name: "role", path: "/v1/users?role=student:", token: getToken(t, env.conf, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, student),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	env := setup(t)

	student := testutil.CreateUser(t, env.usrRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users/" + student.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Own detail", path: "/v1/users/" + student.ID, token: getToken(t, env.conf, student),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
		{
			name: "Someone else's detail hidden", path: "/v1/users/" + student.ID, token: getToken(t, env.conf, other),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Admin sees all", path: "/v1/users/" + student.ID, token: getToken(t, env.conf, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, student),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

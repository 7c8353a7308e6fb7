package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/karo/core/student"
	"github.com/trezcool/karo/tests"
)

func Test_studentApi_query(t *testing.T) {
	resetApp()

	std := testutil.CreateStudent(t, stdRepo, "Awe Mave", "awe@test.cd")
	other := testutil.CreateStudent(t, stdRepo, "King Kin", "king@test.cd")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/students", token: getStudentToken(t, std),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Get all", path: "/v1/students", token: getAdminToken(t),
			wantCode: http.StatusOK, wantData: marchallList(t, std, other),
		},
		{
			name: "Student reads own record", path: "/v1/students/" + std.ID, token: getStudentToken(t, std),
			wantCode: http.StatusOK, wantData: marchallObj(t, std),
		},
		{
			name: "Another student is forbidden", path: "/v1/students/" + std.ID, token: getStudentToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Unknown student", path: "/v1/students/lol", token: getAdminToken(t),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_create(t *testing.T) {
	resetApp()

	std := testutil.CreateStudent(t, stdRepo, "Awe Mave", "awe@test.cd")
	body := []byte(`{"name": "King Kin", "email": "king@test.cd"}`)

	tests := []httpTest{
		{name: "Auth required", body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", body: body, token: getStudentToken(t, std),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Name required", body: []byte(`{"email": "king@test.cd"}`), token: getAdminToken(t),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "Email must be valid when given", body: []byte(`{"name": "King Kin", "email": "lol"}`), token: getAdminToken(t),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Admin registers a student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", getAdminToken(t), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var got student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.ID == "" || got.Name != "King Kin" || !got.IsActive {
			t.Errorf("created student = %+v", got)
		}
	})
}

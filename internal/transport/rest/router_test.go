package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"formsapi/internal/model"
	"formsapi/internal/repository/memory"
	"formsapi/internal/service"
	"formsapi/internal/transport/ws"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	store   *memory.Store
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	hub := ws.NewHub()
	t.Cleanup(hub.Close)

	formSvc := service.NewFormService(store.Forms(), nil)
	resultSvc := service.NewResultService(formSvc, store.Results(), store.Users())
	resultSvc.SetBroadcaster(hub)

	return &testServer{
		store: store,
		handler: NewRouter(&Container{
			AuthService:   service.NewAuthService(store.Users(), store.Tokens(), nil, "test-key"),
			UserService:   service.NewUserService(store.Users()),
			FormService:   formSvc,
			ResultService: resultSvc,
			WSHub:         hub,
		}),
	}
}

type call struct {
	method string
	path   string
	body   interface{}
	bearer string
	basic  [2]string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	switch b := c.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		if err := json.NewEncoder(&body).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	if c.basic[0] != "" {
		req.SetBasicAuth(c.basic[0], c.basic[1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status %d, want %d: %s", rec.Code, want, rec.Body.String())
	}
}

// signUpAndIn registers a user and returns its id and bearer token
func (s *testServer) signUpAndIn(t *testing.T, username string) (string, string) {
	t.Helper()
	rec := s.do(t, call{method: "POST", path: "/users", body: map[string]string{
		"username": username, "password": "pw-" + username, "email": username + "@example.com",
	}})
	expectStatus(t, rec, http.StatusCreated)
	var user struct {
		ID string `json:"id"`
	}
	decode(t, rec, &user)

	rec = s.do(t, call{method: "POST", path: "/users/signin", basic: [2]string{username, "pw-" + username}})
	expectStatus(t, rec, http.StatusOK)
	var signIn struct {
		Token string `json:"token"`
	}
	decode(t, rec, &signIn)
	if signIn.Token == "" {
		t.Fatal("empty token")
	}
	return user.ID, signIn.Token
}

func TestSurveyScenario(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signUpAndIn(t, "alice")

	rec := s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{
		"title":     "Survey",
		"questions": []map[string]string{{"type": "text", "title": "Name?"}},
	}})
	expectStatus(t, rec, http.StatusCreated)
	var form model.Form
	decode(t, rec, &form)
	if form.ID.IsZero() || len(form.Questions) != 1 {
		t.Fatalf("unexpected form %+v", form)
	}
	qid := form.Questions[0].ID.Hex()

	rec = s.do(t, call{
		method: "POST",
		path:   "/forms/" + form.ID.Hex() + "/results",
		bearer: token,
		body:   map[string]interface{}{"answers": []map[string]interface{}{{"question": qid, "value": "Alice"}}},
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = s.do(t, call{method: "GET", path: "/forms/" + form.ID.Hex() + "/results"})
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}

	var results []struct {
		User    map[string]interface{} `json:"user"`
		Answers []struct {
			Question model.Question `json:"question"`
			Value    model.Value    `json:"value"`
		} `json:"answers"`
	}
	decode(t, rec, &results)
	if len(results) != 1 || len(results[0].Answers) != 1 {
		t.Fatalf("unexpected results %s", rec.Body.String())
	}
	if results[0].User["id"] != userID || results[0].User["username"] != "alice" {
		t.Fatalf("user not expanded: %v", results[0].User)
	}
	a := results[0].Answers[0]
	if a.Question.Title != "Name?" || a.Question.Kind != model.KindText || a.Question.ID.Hex() != qid {
		t.Fatalf("question not expanded: %+v", a.Question)
	}
	if text, _ := a.Value.Text(); text != "Alice" {
		t.Fatalf("value = %+v", a.Value)
	}
}

func TestSignUpErrors(t *testing.T) {
	s := newTestServer(t)
	s.signUpAndIn(t, "alice")

	rec := s.do(t, call{method: "POST", path: "/users", body: map[string]string{
		"username": "alice", "password": "x", "email": "x@example.com",
	}})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(t, call{method: "POST", path: "/users", body: map[string]string{"username": "bob", "password": "x"}})
	expectStatus(t, rec, http.StatusBadRequest)
	var body map[string]string
	decode(t, rec, &body)
	if body["code"] != "missing_field" {
		t.Fatalf("code = %q", body["code"])
	}

	rec = s.do(t, call{method: "POST", path: "/users", body: "{not json"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestSignIn(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUpAndIn(t, "alice")

	rec := s.do(t, call{method: "POST", path: "/users/signin", basic: [2]string{"alice", "pw-alice"}})
	expectStatus(t, rec, http.StatusOK)
	var again map[string]interface{}
	decode(t, rec, &again)
	if again["token"] != token || again["username"] != "alice" {
		t.Fatalf("second sign-in: %v", again)
	}
	if _, leaked := again["passwordHash"]; leaked {
		t.Fatal("password hash serialized")
	}

	rec = s.do(t, call{method: "POST", path: "/users/signin", basic: [2]string{"alice", "nope"}})
	expectStatus(t, rec, http.StatusUnauthorized)
	rec = s.do(t, call{method: "POST", path: "/users/signin"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatal("missing WWW-Authenticate challenge")
	}
}

func TestBearerRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, c := range []call{
		{method: "GET", path: "/users"},
		{method: "GET", path: "/users/me"},
		{method: "GET", path: "/users/me", bearer: "forged"},
		{method: "PATCH", path: "/users", body: map[string]string{"firstName": "x"}},
		{method: "POST", path: "/forms/" + primitive.NewObjectID().Hex() + "/results", body: map[string]interface{}{}},
	} {
		rec := s.do(t, c)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d", c.method, c.path, rec.Code)
		}
	}
}

func TestUserViews(t *testing.T) {
	s := newTestServer(t)
	aliceID, token := s.signUpAndIn(t, "alice")
	s.signUpAndIn(t, "bob")

	rec := s.do(t, call{method: "GET", path: "/users", bearer: token})
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(rec.Body.String(), "email") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("list exposes private fields: %s", rec.Body.String())
	}
	var list []map[string]interface{}
	decode(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}

	rec = s.do(t, call{method: "GET", path: "/users/me", bearer: token})
	expectStatus(t, rec, http.StatusOK)
	var me map[string]interface{}
	decode(t, rec, &me)
	if me["id"] != aliceID || me["email"] != "alice@example.com" {
		t.Fatalf("me = %v", me)
	}

	rec = s.do(t, call{method: "GET", path: "/users/" + aliceID, bearer: token})
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(rec.Body.String(), "email") {
		t.Fatalf("user detail exposes email: %s", rec.Body.String())
	}

	rec = s.do(t, call{method: "GET", path: "/users/not-an-id", bearer: token})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = s.do(t, call{method: "GET", path: "/users/" + primitive.NewObjectID().Hex(), bearer: token})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestPatchUser(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUpAndIn(t, "alice")

	for _, body := range []string{
		`{"username":"mallory"}`,
		`{"username":"alice","firstName":"A"}`,
		`{"username":null}`,
	} {
		rec := s.do(t, call{method: "PATCH", path: "/users", bearer: token, body: body})
		expectStatus(t, rec, http.StatusForbidden)
	}

	stored, _ := s.store.Users().GetByUsername(context.Background(), "alice")
	if stored == nil || stored.FirstName != nil {
		t.Fatalf("refused patch changed the user: %+v", stored)
	}

	rec := s.do(t, call{method: "PATCH", path: "/users", bearer: token, body: `{"firstName":"Alice","lastName":"Liddell"}`})
	expectStatus(t, rec, http.StatusOK)
	var user map[string]interface{}
	decode(t, rec, &user)
	if user["firstName"] != "Alice" || user["lastName"] != "Liddell" || user["username"] != "alice" {
		t.Fatalf("user = %v", user)
	}
}

func TestFormRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{"title": "Empty"}})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{
		"title":     "Bad",
		"questions": []map[string]interface{}{{"type": "singleChoice", "title": "Pick"}},
	}})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{
		"title":     "Untyped",
		"questions": []map[string]interface{}{{"title": "When?"}},
	}})
	expectStatus(t, rec, http.StatusBadRequest)
	var body map[string]string
	decode(t, rec, &body)
	if body["code"] != "missing_field" || !strings.Contains(body["error"], "questions[0].type") {
		t.Fatalf("body = %v", body)
	}

	rec = s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{
		"title": "Pets",
		"questions": []map[string]interface{}{
			{"type": "singleChoice", "title": "Favourite", "options": []string{"cat", "dog"}},
			{"type": "decimal", "title": "Weight"},
		},
	}})
	expectStatus(t, rec, http.StatusCreated)
	var form model.Form
	decode(t, rec, &form)

	rec = s.do(t, call{method: "GET", path: "/forms"})
	expectStatus(t, rec, http.StatusOK)
	var forms []model.Form
	decode(t, rec, &forms)
	if len(forms) != 1 || forms[0].ID != form.ID || len(forms[0].Questions) != 2 {
		t.Fatalf("forms = %s", rec.Body.String())
	}

	rec = s.do(t, call{method: "GET", path: "/forms/" + form.ID.Hex()})
	expectStatus(t, rec, http.StatusOK)
	rec = s.do(t, call{method: "GET", path: "/forms/zzz"})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = s.do(t, call{method: "GET", path: "/forms/" + primitive.NewObjectID().Hex()})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestSubmitErrors(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signUpAndIn(t, "alice")
	rec := s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{
		"title":     "Pets",
		"questions": []map[string]interface{}{{"type": "multipleChoice", "title": "Pets", "options": []string{"cat", "dog"}}},
	}})
	expectStatus(t, rec, http.StatusCreated)
	var form model.Form
	decode(t, rec, &form)
	path := "/forms/" + form.ID.Hex() + "/results"
	qid := form.Questions[0].ID.Hex()

	cases := []struct {
		answers interface{}
		code    string
	}{
		{[]map[string]interface{}{{"question": qid, "value": []string{"cow"}}}, "option_not_allowed"},
		{[]map[string]interface{}{{"question": qid, "value": "cat"}}, "malformed_value"},
		{[]map[string]interface{}{{"question": qid, "type": "text", "value": "cat"}}, "type_mismatch"},
		{[]map[string]interface{}{{"question": primitive.NewObjectID().Hex(), "value": []string{"cat"}}}, "unknown_question"},
	}
	for _, tc := range cases {
		rec := s.do(t, call{method: "POST", path: path, bearer: token, body: map[string]interface{}{"answers": tc.answers}})
		expectStatus(t, rec, http.StatusBadRequest)
		var body map[string]string
		decode(t, rec, &body)
		if body["code"] != tc.code {
			t.Errorf("code = %q, want %q", body["code"], tc.code)
		}
	}

	rec = s.do(t, call{
		method: "POST",
		path:   "/forms/" + primitive.NewObjectID().Hex() + "/results",
		bearer: token,
		body:   map[string]interface{}{"answers": []map[string]interface{}{{"question": qid, "value": []string{"cat"}}}},
	})
	expectStatus(t, rec, http.StatusNotFound)
}

func TestResultsErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: "GET", path: "/forms/nope/results"})
	expectStatus(t, rec, http.StatusBadRequest)
	rec = s.do(t, call{method: "GET", path: "/forms/" + primitive.NewObjectID().Hex() + "/results"})
	expectStatus(t, rec, http.StatusNotFound)

	rec = s.do(t, call{method: "POST", path: "/forms", body: map[string]interface{}{
		"title":     "Survey",
		"questions": []map[string]string{{"type": "text", "title": "Name?"}},
	}})
	var form model.Form
	decode(t, rec, &form)

	ghost := primitive.NewObjectID()
	err := s.store.Results().Create(context.Background(), &model.Result{
		FormID:  form.ID,
		UserID:  ghost,
		Answers: []model.Answer{{QuestionID: form.Questions[0].ID, Value: model.TextValue("x")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rec = s.do(t, call{method: "GET", path: "/forms/" + form.ID.Hex() + "/results"})
	expectStatus(t, rec, http.StatusInternalServerError)
	if strings.Contains(rec.Body.String(), ghost.Hex()) {
		t.Fatalf("identifiers leaked: %s", rec.Body.String())
	}

	requestID := rec.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("missing X-Request-ID")
	}
	var failure map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]interface{}
		if json.Unmarshal([]byte(line), &entry) == nil && entry["msg"] == "request failed" {
			failure = entry
		}
	}
	if failure == nil || failure["requestId"] != requestID {
		t.Fatalf("failure log not tagged with %s: %s", requestID, logs.String())
	}
	if !strings.Contains(failure["error"].(string), ghost.Hex()) {
		t.Fatalf("failure detail not logged: %v", failure)
	}
}

func TestHealthAndDocs(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, call{method: "GET", path: "/health"})
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}

	rec = s.do(t, call{method: "GET", path: "/swagger/doc.json"})
	expectStatus(t, rec, http.StatusOK)
	var doc map[string]interface{}
	decode(t, rec, &doc)
	if doc["swagger"] != "2.0" {
		t.Fatalf("unexpected doc: %v", doc["swagger"])
	}
	paths, _ := doc["paths"].(map[string]interface{})
	if _, ok := paths["/forms/{id}/results"]; !ok {
		t.Fatal("results path not documented")
	}
}

func TestDocsCoverEveryRoute(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: "GET", path: "/swagger/doc.json"})
	expectStatus(t, rec, http.StatusOK)
	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	decode(t, rec, &doc)

	router, ok := s.handler.(*mux.Router)
	if !ok {
		t.Fatalf("router is %T", s.handler)
	}
	undocumented := map[string]bool{"/health": true, "/swagger/doc.json": true}
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil || undocumented[path] {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, m := range methods {
			if m == http.MethodOptions {
				continue
			}
			if _, ok := doc.Paths[path][strings.ToLower(m)]; !ok {
				t.Errorf("%s %s missing from API docs", m, path)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, call{method: "OPTIONS", path: "/users"})
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

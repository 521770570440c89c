package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"parkwatch/middleware"
	"parkwatch/models"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]models.User{}}
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, errUserNotFound
	}
	return &u, nil
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Email]; ok {
		return ErrEmailTaken
	}
	m.users[user.Email] = *user
	return nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func newTestService(users UserStore) *Service {
	svc := NewService(users, middleware.NewJWT("test-secret"), nil)
	svc.cost = bcrypt.MinCost
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newTestRouter(svc *Service) *httprouter.Router {
	h := NewHandlers(svc, nil)
	jwt := middleware.NewJWT("test-secret")
	router := httprouter.New()
	router.POST("/api/signup", h.Signup)
	router.POST("/api/login", h.Login)
	router.GET("/api/me", jwt.Authenticate(h.Me))
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const anaSignup = `{"email":"ana@example.com","password":"s3cret","name":"Ana","plate":"KA-01-AB-1234"}`

func TestSignupThenLogin(t *testing.T) {
	router := newTestRouter(newTestService(newMemUsers()))

	rec := post(router, "/api/signup", anaSignup)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "User created successfully.") {
		t.Errorf("signup body = %s", rec.Body)
	}

	rec = post(router, "/api/login", `{"email":"ana@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body)
	}
	var body struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			Email       string         `json:"email"`
			Name        string         `json:"name"`
			Vehicle     models.Vehicle `json:"vehicle"`
			MemberSince time.Time      `json:"memberSince"`
			Password    *string        `json:"password"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "Login successful." {
		t.Errorf("message = %q", body.Message)
	}
	if body.User.Email != "ana@example.com" || body.User.Name != "Ana" || body.User.Vehicle.Plate != "KA-01-AB-1234" {
		t.Errorf("user = %+v", body.User)
	}
	if !body.User.MemberSince.Equal(fixedNow) {
		t.Errorf("memberSince = %v, want %v", body.User.MemberSince, fixedNow)
	}
	if body.User.Password != nil {
		t.Error("password leaked in login response")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), `"name":"Ana"`) {
		t.Errorf("me status = %d body=%s", me.Code, me.Body)
	}
}

func TestSignupMissingFields(t *testing.T) {
	router := newTestRouter(newTestService(newMemUsers()))
	bodies := []string{
		`{"password":"p","name":"n","plate":"x"}`,
		`{"email":"a@b.c","name":"n","plate":"x"}`,
		`{"email":"a@b.c","password":"p","plate":"x"}`,
		`{"email":"a@b.c","password":"p","name":"n"}`,
		`{}`,
	}
	for _, b := range bodies {
		rec := post(router, "/api/signup", b)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "All fields are required.") {
			t.Errorf("%s: status = %d body=%s", b, rec.Code, rec.Body)
		}
	}
}

func TestSignupDuplicateKeepsOriginal(t *testing.T) {
	users := newMemUsers()
	router := newTestRouter(newTestService(users))

	post(router, "/api/signup", anaSignup)
	original := users.users["ana@example.com"].Password

	rec := post(router, "/api/signup", `{"email":"ana@example.com","password":"different","name":"Impostor","plate":"X"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "User with this email already exists.") {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if users.users["ana@example.com"].Password != original || users.users["ana@example.com"].Name != "Ana" {
		t.Error("original record modified")
	}

	if rec := post(router, "/api/login", `{"email":"ana@example.com","password":"s3cret"}`); rec.Code != http.StatusOK {
		t.Errorf("original password no longer works: %d", rec.Code)
	}
}

func TestSignupRaceMapsDuplicateKey(t *testing.T) {
	users := newMemUsers()
	svc := newTestService(raceUsers{users})
	err := svc.Signup(context.Background(), SignupRequest{Email: "a@b.c", Password: "p", Name: "n", Plate: "x"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

// raceUsers reports the email as free but then loses the insert, as when
// two signups for one email run at once.
type raceUsers struct{ *memUsers }

func (r raceUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, errUserNotFound
}

func (r raceUsers) Create(ctx context.Context, user *models.User) error {
	return ErrEmailTaken
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := newTestRouter(newTestService(newMemUsers()))
	post(router, "/api/signup", anaSignup)

	wrongPassword := post(router, "/api/login", `{"email":"ana@example.com","password":"nope"}`)
	unknownEmail := post(router, "/api/login", `{"email":"bob@example.com","password":"s3cret"}`)

	if wrongPassword.Code != http.StatusBadRequest || unknownEmail.Code != http.StatusBadRequest {
		t.Fatalf("status = %d / %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("bodies differ: %s vs %s", wrongPassword.Body, unknownEmail.Body)
	}
	if !strings.Contains(wrongPassword.Body.String(), "Invalid credentials.") {
		t.Errorf("body = %s", wrongPassword.Body)
	}
}

func TestAccountStoreErrors(t *testing.T) {
	users := newMemUsers()
	users.err = errors.New("server selection timeout")
	router := newTestRouter(newTestService(users))

	rec := post(router, "/api/signup", anaSignup)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "server selection timeout") {
		t.Errorf("signup: status = %d body=%s", rec.Code, rec.Body)
	}

	rec = post(router, "/api/login", `{"email":"ana@example.com","password":"s3cret"}`)
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusInternalServerError || body["message"] != "Server error during login." || body["error"] != "server selection timeout" {
		t.Errorf("login: status = %d body=%s", rec.Code, rec.Body)
	}
}

func TestBadJSON(t *testing.T) {
	router := newTestRouter(newTestService(newMemUsers()))
	for _, path := range []string{"/api/signup", "/api/login"} {
		if rec := post(router, path, `{"email":`); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}

func TestMeUnknownUser(t *testing.T) {
	router := newTestRouter(newTestService(newMemUsers()))
	token, _ := middleware.NewJWT("test-secret").Issue("ghost@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLongPasswordSignupAndLogin(t *testing.T) {
	router := newTestRouter(newTestService(newMemUsers()))
	long := strings.Repeat("correct horse battery staple ", 3)[:80]

	rec := post(router, "/api/signup", `{"email":"ana@example.com","password":"`+long+`","name":"Ana","plate":"KA-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", rec.Code, rec.Body)
	}

	rec = post(router, "/api/login", `{"email":"ana@example.com","password":"`+long+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body)
	}

	// only the first 72 bytes take part in the check
	rec = post(router, "/api/login", `{"email":"ana@example.com","password":"`+long[:72]+`tail"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("login with same 72-byte prefix: status = %d", rec.Code)
	}
	rec = post(router, "/api/login", `{"email":"ana@example.com","password":"`+long[:71]+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("login with shorter password: status = %d", rec.Code)
	}
}

func TestUnknownEmailStillComparesHash(t *testing.T) {
	svc := newTestService(newMemUsers())
	var calls int
	compare := svc.compare
	svc.compare = func(hash, password []byte) error {
		calls++
		return compare(hash, password)
	}

	if _, err := svc.Login(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("hash comparisons = %d, want 1", calls)
	}
}

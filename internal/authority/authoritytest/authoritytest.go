// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package authoritytest provides an in-process school-management authority.

It speaks both credential exchange dialects the gateway understands (the
modern /auth/login envelope and the legacy /auth/signin flat shape), mints
HS256 bearer tokens, and serves small record fixtures behind token checks.

It backs two consumers: gateway tests that need a live upstream, and the
authority-sim binary used for local development.
*/
package authoritytest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is how long minted bearer tokens stay valid.
const tokenTTL = 8 * time.Hour

// # Seeded Accounts

// Account is a seeded operator credential.
type Account struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	Permissions  []string
	passwordHash []byte
}

// defaultAccounts returns the two operators every deployment of the simulator
// knows about.
func defaultAccounts() []*Account {
	return []*Account{
		{
			ID:          "usr-001",
			Username:    "DEV0001",
			Email:       "dev@school.com",
			FirstName:   "Dev",
			LastName:    "Admin",
			Role:        "admin",
			Permissions: []string{"records:read", "records:write", "audit:read"},
		},
		{
			ID:          "usr-002",
			Username:    "ADM0001",
			Email:       "admin@school.com",
			FirstName:   "School",
			LastName:    "Admin",
			Role:        "admin",
			Permissions: []string{"records:read", "records:write"},
		},
	}
}

// defaultPasswords maps seeded usernames to their plaintext passwords.
func defaultPasswords() map[string]string {
	return map[string]string{
		"DEV0001": "password123",
		"ADM0001": "admin123",
	}
}

// # Simulator

// Simulator is a self-contained authority backend.
type Simulator struct {
	accounts   map[string]*Account
	signingKey []byte
	dummyHash  []byte
}

// New seeds a simulator with the default accounts.
//
// Passwords are stored as bcrypt hashes even here; the simulator should fail
// the same way a real authority fails.
func New(signingKey string) *Simulator {
	simulator := &Simulator{
		accounts:   make(map[string]*Account),
		signingKey: []byte(signingKey),
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("unmatchable"), bcrypt.MinCost)
	if err != nil {
		panic("authoritytest: bcrypt seed failed: " + err.Error())
	}
	simulator.dummyHash = dummy

	passwords := defaultPasswords()
	for _, account := range defaultAccounts() {
		hash, err := bcrypt.GenerateFromPassword([]byte(passwords[account.Username]), bcrypt.MinCost)
		if err != nil {
			panic("authoritytest: bcrypt seed failed: " + err.Error())
		}
		account.passwordHash = hash
		simulator.accounts[account.Username] = account
		simulator.accounts[account.Email] = account
	}

	return simulator
}

// Handler returns the full authority HTTP surface.
//
// # Endpoints
//   - POST /auth/login  : Modern credential exchange (token + nested user).
//   - POST /auth/signin : Legacy credential exchange (flat profile with token).
//   - GET  /auth/me     : Profile of the presented bearer token.
//   - GET  /api/...     : Record fixtures, token-gated.
func (simulator *Simulator) Handler() http.Handler {
	router := chi.NewRouter()

	router.Post("/auth/login", simulator.loginModern)
	router.Post("/auth/signin", simulator.loginLegacy)
	router.Get("/auth/me", simulator.me)

	router.Route("/api", func(api chi.Router) {
		api.Use(simulator.requireToken)
		api.Get("/students", fixture(studentsFixture))
		api.Get("/staff", fixture(staffFixture))
		api.Get("/parents", fixture(parentsFixture))
		api.Get("/front-office/visitors", fixture(visitorsFixture))
		api.Post("/front-office/visitors", simulator.createVisitor)
		api.Get("/front-office/enquiries", fixture(enquiriesFixture))
		api.Get("/front-office/phone-calls", fixture(`[]`))
		api.Get("/front-office/postal", fixture(`[]`))
		api.Get("/front-office/complaints", fixture(`[]`))
	})

	return router
}

// # Credential Exchange

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authenticate resolves and verifies a credential pair.
func (simulator *Simulator) authenticate(request *http.Request) (*Account, bool) {
	var body credentials
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		return nil, false
	}

	account, found := simulator.accounts[body.Username]
	if !found {
		// Burn comparable time so missing users are not distinguishable
		_ = bcrypt.CompareHashAndPassword(simulator.dummyHash, []byte(body.Password))
		return nil, false
	}

	if bcrypt.CompareHashAndPassword(account.passwordHash, []byte(body.Password)) != nil {
		return nil, false
	}

	return account, true
}

// mintToken signs an HS256 bearer token for the account.
func (simulator *Simulator) mintToken(account *Account) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      account.ID,
		"username": account.Username,
		"role":     account.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(simulator.signingKey)
	if err != nil {
		panic("authoritytest: token signing failed: " + err.Error())
	}

	return signed
}

// profilePayload is the user shape both exchange dialects serve.
func profilePayload(account *Account) map[string]any {
	return map[string]any{
		"id":          account.ID,
		"username":    account.Username,
		"email":       account.Email,
		"first_name":  account.FirstName,
		"last_name":   account.LastName,
		"role":        account.Role,
		"permissions": account.Permissions,
	}
}

// loginModern handles POST /auth/login with the enveloped response shape.
func (simulator *Simulator) loginModern(writer http.ResponseWriter, request *http.Request) {
	account, ok := simulator.authenticate(request)
	if !ok {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "Invalid login credentials"})
		return
	}

	writeJSON(writer, http.StatusOK, map[string]any{
		"accessToken": simulator.mintToken(account),
		"user":        profilePayload(account),
	})
}

// loginLegacy handles POST /auth/signin with the flat response shape.
func (simulator *Simulator) loginLegacy(writer http.ResponseWriter, request *http.Request) {
	account, ok := simulator.authenticate(request)
	if !ok {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "Invalid login credentials"})
		return
	}

	payload := profilePayload(account)
	payload["token"] = simulator.mintToken(account)
	writeJSON(writer, http.StatusOK, payload)
}

// # Token-Gated Surface

// verifyToken parses the bearer token and returns the account it names.
func (simulator *Simulator) verifyToken(request *http.Request) (*Account, bool) {
	header := request.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil, false
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return simulator.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	username, _ := claims["username"].(string)
	account, found := simulator.accounts[username]
	return account, found
}

// requireToken rejects requests without a valid bearer token.
func (simulator *Simulator) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if _, ok := simulator.verifyToken(request); !ok {
			writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// me handles GET /auth/me.
func (simulator *Simulator) me(writer http.ResponseWriter, request *http.Request) {
	account, ok := simulator.verifyToken(request)
	if !ok {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
		return
	}

	writeJSON(writer, http.StatusOK, map[string]any{"user": profilePayload(account)})
}

// createVisitor echoes the visitor back with an assigned ID.
func (simulator *Simulator) createVisitor(writer http.ResponseWriter, request *http.Request) {
	var visitor map[string]any
	if err := json.NewDecoder(request.Body).Decode(&visitor); err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"message": "Invalid payload"})
		return
	}

	visitor["id"] = "vis-100"
	visitor["logged_at"] = time.Now().UTC().Format(time.RFC3339)
	writeJSON(writer, http.StatusCreated, visitor)
}

// # Record Fixtures

const studentsFixture = `[
	{"id": "stu-001", "admission_no": "ADM-2031", "name": "Tran Thi Mai", "class": "7A"},
	{"id": "stu-002", "admission_no": "ADM-2032", "name": "Le Van Binh", "class": "7A"},
	{"id": "stu-003", "admission_no": "ADM-2033", "name": "Pham Thu Ha", "class": "8B"}
]`

const staffFixture = `[
	{"id": "stf-001", "employee_id": "EMP-011", "name": "Hoang Van Cuong", "department": "Mathematics"},
	{"id": "stf-002", "employee_id": "EMP-012", "name": "Vu Thi Lan", "department": "Front Office"}
]`

const parentsFixture = `[
	{"id": "par-001", "name": "Tran Van Hung", "student_id": "stu-001", "phone": "0901112233"}
]`

const visitorsFixture = `[
	{"id": "vis-001", "name": "Dang Quoc Anh", "purpose": "Admission enquiry", "to_meet": "Principal"}
]`

const enquiriesFixture = `[
	{"id": "enq-001", "name": "Nguyen Thi Hoa", "topic": "Grade 6 admission", "phone": "0907654321"}
]`

// fixture serves a static JSON document.
func fixture(document string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = writer.Write([]byte(document))
	}
}

// writeJSON writes a JSON payload with the given status.
func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

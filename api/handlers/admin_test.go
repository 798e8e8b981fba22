package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/api/handlers"
	mocksdb "github.com/civicwatch/crime-report-api/databases/mocks"
	"github.com/civicwatch/crime-report-api/models"
)

func TestAdmin_AdminLoginHandlerAndAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	admin := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ada Admin",
		Email:    "ada@example.com",
		Password: string(hash),
		Role:     models.RoleAdmin,
		Status:   models.UserActive,
	}

	userDB := &mocksdb.UserDatabase{}
	userDB.On("FindOne", mock.Anything, mock.Anything).Return(admin, nil)

	body, _ := json.Marshal(map[string]string{
		"email":    "Ada@Example.com",
		"password": "correct horse battery",
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/login", bytes.NewReader(body))

	h := handlers.Admin{UDB: userDB, JWTSecret: "test-secret"}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
		Admin struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"admin"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin.ID.Hex(), resp.Admin.ID)
	assert.Equal(t, models.RoleAdmin, resp.Admin.Role)

	// the issued token must pass the middleware and carry the actor through
	var gotActor api.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = api.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	authedReq, _ := http.NewRequest("GET", "/api/v1/admin/staff", nil)
	authedReq.Header.Set("Authorization", "Bearer "+resp.Token)
	authedRR := httptest.NewRecorder()
	h.AuthMiddleware(next).ServeHTTP(authedRR, authedReq)

	assert.Equal(t, http.StatusOK, authedRR.Code)
	assert.Equal(t, admin.ID.Hex(), gotActor.ID)
	assert.Equal(t, models.RoleAdmin, gotActor.Role)
}

func TestAdmin_AdminLoginHandlerRejectsBadPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("the real password"), bcrypt.DefaultCost)
	admin := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "ada@example.com",
		Password: string(hash),
		Role:     models.RoleAdmin,
		Status:   models.UserActive,
	}

	userDB := &mocksdb.UserDatabase{}
	userDB.On("FindOne", mock.Anything, mock.Anything).Return(admin, nil)

	body, _ := json.Marshal(map[string]string{
		"email":    "ada@example.com",
		"password": "a wrong guess",
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/login", bytes.NewReader(body))

	h := handlers.Admin{UDB: userDB, JWTSecret: "test-secret"}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_AuthMiddlewareRejectsGarbageToken(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/v1/admin/staff", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")

	h := handlers.Admin{JWTSecret: "test-secret"}
	rr := httptest.NewRecorder()
	h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// The signing secret comes from the handler's config, not the process
// environment, so a token minted under a different secret never verifies.
func TestAdmin_AuthMiddlewareUsesConfiguredSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	claims := jwt.MapClaims{
		"sub":  primitive.NewObjectID().Hex(),
		"role": models.RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("env-secret"))
	if err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest("GET", "/api/v1/admin/staff", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	h := handlers.Admin{JWTSecret: "configured-secret"}
	rr := httptest.NewRecorder()
	h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_CreateStaffHandler(t *testing.T) {
	body, _ := json.Marshal(models.CreateStaffRequest{
		Name:       "Sam Poole",
		Email:      "Sam.Poole@Example.com",
		Password:   "a long password",
		Department: "Investigations",
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/staff", bytes.NewReader(body))

	userDB := &mocksdb.UserDatabase{}
	insertRes := &mocksdb.InsertOneResultHelper{}
	insertRes.On("Decode").Return(primitive.NewObjectID())

	userDB.On("CountDocuments", mock.Anything, bson.M{"email": "sam.poole@example.com"}).
		Return(int64(0), nil)
	userDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "sam.poole@example.com" &&
			u.Role == models.RoleStaff &&
			u.Status == models.UserActive &&
			u.Department == "Investigations" &&
			u.Password != "a long password" // stored hashed, never plaintext
	})).Return(insertRes, nil)

	h := handlers.Admin{UDB: userDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateStaffHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
	userDB.AssertExpectations(t)
}

func TestAdmin_CreateStaffHandlerDuplicateEmail(t *testing.T) {
	body, _ := json.Marshal(models.CreateStaffRequest{
		Name:       "Sam Poole",
		Email:      "sam.poole@example.com",
		Password:   "a long password",
		Department: "Investigations",
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/staff", bytes.NewReader(body))

	userDB := &mocksdb.UserDatabase{}
	userDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	h := handlers.Admin{UDB: userDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateStaffHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	userDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAdmin_DeactivateStaffHandlerRefusedWithOpenCases(t *testing.T) {
	staffID := primitive.NewObjectID()
	req, _ := http.NewRequest("PUT", "/api/v1/admin/staff/"+staffID.Hex()+"/deactivate", nil)
	req = mux.SetURLVars(req, map[string]string{"staff_id": staffID.Hex()})

	userDB := &mocksdb.UserDatabase{}
	caseDB := &mocksdb.CaseDatabase{}
	userDB.On("FindOne", mock.Anything, bson.M{"_id": staffID}).
		Return(&models.User{ID: staffID, Role: models.RoleStaff, Status: models.UserActive}, nil)
	caseDB.On("CountDocuments", mock.Anything, bson.M{
		"assignedTo": staffID.Hex(),
		"status":     bson.M{"$nin": models.TerminalStatuses},
	}).Return(int64(3), nil)

	h := handlers.Admin{UDB: userDB, CaseDB: caseDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.DeactivateStaffHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "3 open case(s)")
	userDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdmin_DeactivateStaffHandler(t *testing.T) {
	staffID := primitive.NewObjectID()
	req, _ := http.NewRequest("PUT", "/api/v1/admin/staff/"+staffID.Hex()+"/deactivate", nil)
	req = mux.SetURLVars(req, map[string]string{"staff_id": staffID.Hex()})

	userDB := &mocksdb.UserDatabase{}
	caseDB := &mocksdb.CaseDatabase{}
	userDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.User{ID: staffID, Role: models.RoleStaff, Status: models.UserActive}, nil)
	caseDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	userDB.On("UpdateOne", mock.Anything, bson.M{"_id": staffID},
		mock.MatchedBy(func(update interface{}) bool {
			set, ok := update.(bson.M)["$set"].(bson.M)
			return ok && set["status"] == models.UserInactive
		})).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	h := handlers.Admin{UDB: userDB, CaseDB: caseDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.DeactivateStaffHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	userDB.AssertExpectations(t)
}

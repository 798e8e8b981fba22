package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicwatch/crime-report-api/api/handlers"
	mocksdb "github.com/civicwatch/crime-report-api/databases/mocks"
	"github.com/civicwatch/crime-report-api/models"
)

func TestUser_RegisterCitizenHandler(t *testing.T) {
	body, _ := json.Marshal(models.RegisterUserRequest{
		Name:     "Casey Jones",
		Email:    "Casey.Jones@Example.com",
		Password: "a decent password",
	})
	req, _ := http.NewRequest("POST", "/api/v1/user/register", bytes.NewReader(body))

	userDB := &mocksdb.UserDatabase{}
	insertRes := &mocksdb.InsertOneResultHelper{}
	insertRes.On("Decode").Return(primitive.NewObjectID())

	userDB.On("CountDocuments", mock.Anything, bson.M{"email": "casey.jones@example.com"}).
		Return(int64(0), nil)
	userDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		if u.Role != models.RoleCitizen || u.Status != models.UserActive {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("a decent password")) == nil
	})).Return(insertRes, nil)

	u := handlers.User{DB: userDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.RegisterCitizenHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "a decent password")
	userDB.AssertExpectations(t)
}

func TestUser_RegisterCitizenHandlerDuplicateEmail(t *testing.T) {
	body, _ := json.Marshal(models.RegisterUserRequest{
		Name:     "Casey Jones",
		Email:    "casey.jones@example.com",
		Password: "a decent password",
	})
	req, _ := http.NewRequest("POST", "/api/v1/user/register", bytes.NewReader(body))

	userDB := &mocksdb.UserDatabase{}
	userDB.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	u := handlers.User{DB: userDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.RegisterCitizenHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	userDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestUser_UserByIDHandlerSelf(t *testing.T) {
	userID := primitive.NewObjectID()
	req, _ := http.NewRequest("GET", "/api/v1/user/"+userID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req = requestWithActor(req, userID.Hex(), models.RoleCitizen)

	userDB := &mocksdb.UserDatabase{}
	userDB.On("FindOne", mock.Anything, bson.M{"_id": userID}).
		Return(&models.User{ID: userID, Name: "Casey Jones", Role: models.RoleCitizen}, nil)

	u := handlers.User{DB: userDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.User
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Casey Jones", got.Name)
}

func TestUser_UserByIDHandlerForbiddenForOtherCitizen(t *testing.T) {
	userID := primitive.NewObjectID()
	req, _ := http.NewRequest("GET", "/api/v1/user/"+userID.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"user_id": userID.Hex()})
	req = requestWithActor(req, "someone-else", models.RoleCitizen)

	userDB := &mocksdb.UserDatabase{}
	u := handlers.User{DB: userDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	userDB.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

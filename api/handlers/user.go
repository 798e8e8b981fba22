package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
)

// User exposes citizen registration and account lookup.
type User struct {
	DB databases.UserDatabase
}

// RegisterCitizenHandler creates a citizen account. Emails are stored
// lowercased and must be unique.
func (u User) RegisterCitizenHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if violations := models.Validate(req); violations != nil {
		config.ValidationErrorStatus(w, violations)
		return
	}
	email := strings.ToLower(req.Email)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := u.DB.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		config.ErrorStatus("failed to check for existing account", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("an account with this email already exists", http.StatusConflict, w,
			fmt.Errorf("duplicate email %s", email))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := models.User{
		Name:      req.Name,
		Email:     email,
		Password:  string(hash),
		Role:      models.RoleCitizen,
		Status:    models.UserActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := u.DB.InsertOne(ctx, user)
	if err != nil {
		config.ErrorStatus("failed to create account", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.Decode().(primitive.ObjectID); ok {
		user.ID = oid
	}
	zap.S().Infow("citizen registered", "email", email)

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UserByIDHandler returns an account. Users may fetch themselves; admins
// and supervisors may fetch anyone.
func (u User) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	userID := mux.Vars(r)["user_id"]
	if userID != actor.ID && !actor.IsElevated() {
		config.ErrorStatus("not allowed to view this account", http.StatusForbidden, w,
			fmt.Errorf("actor %s requested user %s", actor.ID, userID))
		return
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("user id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		config.ErrorStatus("user not found", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

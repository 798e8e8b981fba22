package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
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

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"admin"`
}

// Admin exposes staff management, guarded by a JWT issued at admin login.
type Admin struct {
	UDB       databases.UserDatabase
	CaseDB    databases.CaseDatabase
	JWTSecret string
}

// AdminLoginHandler authenticates an admin or supervisor via email/password
// and returns a signed JWT
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email and password required"})
		return
	}

	admin, err := h.UDB.FindOne(r.Context(), bson.M{
		"email":  email,
		"status": models.UserActive,
		"role":   bson.M{"$in": []string{models.RoleAdmin, models.RoleSupervisor}},
	})
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	jwtSecret := []byte(h.JWTSecret)
	if len(jwtSecret) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "server misconfigured"})
		return
	}

	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"role":  admin.Role,
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token generation failed"})
		return
	}
	zap.S().Infow("admin login", "email", admin.Email, "role", admin.Role)

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.ID = admin.ID.Hex()
	resp.Admin.Email = admin.Email
	resp.Admin.Role = admin.Role

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// AuthMiddleware verifies the Bearer JWT and attaches the admin actor to the
// request context.
func (h Admin) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(h.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
			return
		}
		role, _ := claims["role"].(string)
		sub, _ := claims["sub"].(string)
		if role != models.RoleAdmin && role != models.RoleSupervisor {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "admin access required"})
			return
		}

		r = r.WithContext(api.WithActor(r.Context(), api.Actor{ID: sub, Role: role}))
		next.ServeHTTP(w, r)
	})
}

// CreateStaffHandler creates a staff investigator account
func (h Admin) CreateStaffHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStaffRequest
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

	count, err := h.UDB.CountDocuments(ctx, bson.M{"email": email})
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
	staff := models.User{
		Name:       req.Name,
		Email:      email,
		Password:   string(hash),
		Role:       models.RoleStaff,
		Status:     models.UserActive,
		Department: req.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	res, err := h.UDB.InsertOne(ctx, staff)
	if err != nil {
		config.ErrorStatus("failed to create staff account", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.Decode().(primitive.ObjectID); ok {
		staff.ID = oid
	}
	zap.S().Infow("staff account created", "email", email, "department", req.Department)

	b, err := json.Marshal(staff)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// StaffListHandler lists staff accounts
func (h Admin) StaffListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	staff, err := h.UDB.Find(ctx, bson.M{"role": models.RoleStaff})
	if err != nil {
		config.ErrorStatus("failed to get staff", http.StatusInternalServerError, w, err)
		return
	}
	if staff == nil {
		staff = []models.User{}
	}

	b, err := json.Marshal(staff)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeactivateStaffHandler deactivates a staff account. Refused while the
// member still holds open cases, so nothing is ever assigned to a ghost.
func (h Admin) DeactivateStaffHandler(w http.ResponseWriter, r *http.Request) {
	staffID := mux.Vars(r)["staff_id"]
	oid, err := primitive.ObjectIDFromHex(staffID)
	if err != nil {
		config.ErrorStatus("staff id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	staff, err := h.UDB.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		config.ErrorStatus("staff member not found", http.StatusNotFound, w, err)
		return
	}
	if staff.Role != models.RoleStaff {
		config.ErrorStatus("account is not a staff member", http.StatusConflict, w,
			fmt.Errorf("user %s has role %q", staffID, staff.Role))
		return
	}

	open, err := h.CaseDB.CountDocuments(ctx, bson.M{
		"assignedTo": staffID,
		"status":     bson.M{"$nin": models.TerminalStatuses},
	})
	if err != nil {
		config.ErrorStatus("failed to count open cases", http.StatusInternalServerError, w, err)
		return
	}
	if open > 0 {
		config.ErrorStatus(fmt.Sprintf("staff member still holds %d open case(s), reassign them first", open),
			http.StatusConflict, w, fmt.Errorf("user %s has open assignments", staffID))
		return
	}

	_, err = h.UDB.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"status":    models.UserInactive,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to deactivate staff member", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Infow("staff account deactivated", "staff", staffID)

	b, _ := json.Marshal(map[string]string{"message": "staff member deactivated"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

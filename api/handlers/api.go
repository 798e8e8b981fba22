package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/api/scheduler"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	caseDB := databases.NewCaseDatabase(a.dbHelper)
	userDB := databases.NewUserDatabase(a.dbHelper)
	invDB := databases.NewInvestigationDatabase(a.dbHelper)
	notifDB := databases.NewNotificationDatabase(a.dbHelper)
	counterDB := databases.NewCounterDatabase(a.dbHelper)

	c := Case{DB: caseDB, UDB: userDB, CDB: counterDB, NDB: notifDB}
	e := Evidence{DB: caseDB}
	inv := Investigation{DB: invDB, CaseDB: caseDB, NDB: notifDB}
	u := User{DB: userDB}
	adm := Admin{UDB: userDB, CaseDB: caseDB, JWTSecret: a.Config.JWTSecret}
	st := Statistics{DB: caseDB, UDB: userDB}
	n := Notification{DB: notifDB}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Use(api.MetricsMiddleware)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/register", http.HandlerFunc(u.RegisterCitizenHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserByIDHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/notifications", api.Middleware(http.HandlerFunc(n.NotificationsByUserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(n.MarkNotificationReadHandler))).Methods("PUT")

	apiCreate.Handle("/case", api.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/overdue", api.Middleware(http.HandlerFunc(st.OverdueCasesHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_number}", api.Middleware(http.HandlerFunc(c.CaseByCaseNumberHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_number}/status", api.Middleware(http.HandlerFunc(c.UpdateCaseStatusHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_number}/assign", api.Middleware(http.HandlerFunc(c.AssignStaffHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_number}/evidence", api.Middleware(http.HandlerFunc(e.AddCaseEvidenceHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_number}/evidence/{evidence_id}", api.Middleware(http.HandlerFunc(e.CaseEvidenceByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_number}/investigations", api.Middleware(http.HandlerFunc(inv.CreateInvestigationHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_number}/investigations", api.Middleware(http.HandlerFunc(inv.InvestigationsByCaseHandler))).Methods("GET")

	apiCreate.Handle("/evidence/upload-signature", api.Middleware(http.HandlerFunc(e.GenerateUploadSignature))).Methods("POST")

	apiCreate.Handle("/statistics/status", api.Middleware(http.HandlerFunc(st.StatusDistributionHandler))).Methods("GET")
	apiCreate.Handle("/statistics/categories", api.Middleware(http.HandlerFunc(st.CategoryDistributionHandler))).Methods("GET")
	apiCreate.Handle("/statistics/priorities", api.Middleware(http.HandlerFunc(st.PriorityDistributionHandler))).Methods("GET")
	apiCreate.Handle("/statistics/monthly-trend", api.Middleware(http.HandlerFunc(st.MonthlyTrendHandler))).Methods("GET")
	apiCreate.Handle("/statistics/resolution-time", api.Middleware(http.HandlerFunc(st.ResolutionTimeHandler))).Methods("GET")
	apiCreate.Handle("/statistics/staff-performance", api.Middleware(http.HandlerFunc(st.StaffPerformanceHandler))).Methods("GET")
	apiCreate.Handle("/statistics/department-performance", api.Middleware(http.HandlerFunc(st.DepartmentPerformanceHandler))).Methods("GET")
	apiCreate.Handle("/statistics/hotspots", api.Middleware(http.HandlerFunc(st.HotspotsHandler))).Methods("GET")
	apiCreate.Handle("/statistics/top-crime-types", api.Middleware(http.HandlerFunc(st.TopCrimeTypesHandler))).Methods("GET")
	apiCreate.Handle("/statistics/compliance", api.Middleware(http.HandlerFunc(st.ComplianceHandler))).Methods("GET")

	apiCreate.Handle("/ws/notifications", api.Middleware(http.HandlerFunc(n.HandleNotificationsWebSocket)))

	adminCreate := apiCreate.PathPrefix("/admin").Subrouter()
	adminCreate.Handle("/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	adminCreate.Handle("/staff", adm.AuthMiddleware(http.HandlerFunc(adm.CreateStaffHandler))).Methods("POST")
	adminCreate.Handle("/staff", adm.AuthMiddleware(http.HandlerFunc(adm.StaffListHandler))).Methods("GET")
	adminCreate.Handle("/staff/{staff_id}/deactivate", adm.AuthMiddleware(http.HandlerFunc(adm.DeactivateStaffHandler))).Methods("PUT")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("crime-report-api has connected to the database")

	// initialize api router
	a.initializeRoutes()

	// start the SLA compliance checker
	a.Scheduler = scheduler.New(
		databases.NewCaseDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewNotificationDatabase(a.dbHelper),
		&a.Config,
		NotifyUser,
	)
	a.Scheduler.Start()

	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

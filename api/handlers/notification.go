package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
)

// Notification exposes the persisted notification endpoints and the
// websocket push channel.
type Notification struct {
	DB databases.NotificationDatabase
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

// notificationHub tracks connected users (userId -> *websocket.Conn)
type notificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var hub = &notificationHub{
	clients: make(map[string]*websocket.Conn),
}

// NotificationsByUserHandler lists a user's notifications, newest first.
func (n Notification) NotificationsByUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	userID := mux.Vars(r)["user_id"]
	if userID != actor.ID && !actor.IsElevated() {
		config.ErrorStatus("not allowed to view these notifications", http.StatusForbidden, w,
			fmt.Errorf("actor %s requested notifications of %s", actor.ID, userID))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	notifications, err := n.DB.Find(ctx, bson.M{"userId": userID},
		options.Find().
			SetSort(bson.M{"createdAt": -1}).
			SetLimit(100))
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusInternalServerError, w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	b, err := json.Marshal(notifications)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkNotificationReadHandler marks one of the user's notifications read.
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	vars := mux.Vars(r)
	userID := vars["user_id"]
	if userID != actor.ID && !actor.IsElevated() {
		config.ErrorStatus("not allowed to modify these notifications", http.StatusForbidden, w,
			fmt.Errorf("actor %s requested notifications of %s", actor.ID, userID))
		return
	}

	oid, err := primitive.ObjectIDFromHex(vars["notification_id"])
	if err != nil {
		config.ErrorStatus("notification id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := n.DB.UpdateOne(ctx, bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		config.ErrorStatus("failed to mark notification read", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("notification not found", http.StatusNotFound, w,
			fmt.Errorf("no notification %s for user %s", vars["notification_id"], userID))
		return
	}

	b, _ := json.Marshal(map[string]string{"message": "notification marked read"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HandleNotificationsWebSocket upgrades the connection and registers the
// authenticated actor for pushes. Missed pushes are not a problem, the
// collection is the system of record and clients catch up over the list
// endpoint.
func (n Notification) HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	userID := actor.ID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	hub.mutex.Lock()
	hub.clients[userID] = conn
	hub.mutex.Unlock()
	zap.S().Infow("user connected to notifications websocket", "user", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		zap.S().Infow("user disconnected from notifications websocket", "user", userID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

// NotifyUser pushes a persisted notification to the user's websocket, if
// connected. Also used as the compliance sweep's push callback.
func NotifyUser(userID string, notification models.Notification) {
	hub.mutex.Lock()
	conn, exists := hub.clients[userID]
	hub.mutex.Unlock()

	if !exists {
		return
	}
	err := conn.WriteJSON(map[string]interface{}{
		"event": "new_notification",
		"data":  notification,
	})
	if err != nil {
		zap.S().Errorw("failed to push notification", "user", userID, "error", err)
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		conn.Close()
	}
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicwatch/crime-report-api/api/handlers"
	mocksdb "github.com/civicwatch/crime-report-api/databases/mocks"
	"github.com/civicwatch/crime-report-api/models"
)

func multipartUpload(t *testing.T, filename, mediaType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteField("description", "photo of the broken lock"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func TestEvidence_AddCaseEvidenceHandler(t *testing.T) {
	content := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x01, 0x02}
	body, contentType := multipartUpload(t, "lock.png", "image/png", content)

	req, _ := http.NewRequest("POST", "/api/v1/case/CASE-20250901-0001/evidence", body)
	req.Header.Set("Content-Type", contentType)
	req = mux.SetURLVars(req, map[string]string{"case_number": "CASE-20250901-0001"})
	req = requestWithActor(req, "staff-1", models.RoleStaff)

	assigned := filedCase("CASE-20250901-0001", "citizen-1")
	assigned.Status = models.StatusAssigned
	assigned.AssignedTo = "staff-1"

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(assigned, nil)
	caseDB.On("UpdateOne", mock.Anything,
		bson.M{"caseNumber": "CASE-20250901-0001", "version": int64(1)},
		mock.MatchedBy(func(update interface{}) bool {
			push, ok := update.(bson.M)["$push"].(bson.M)
			if !ok {
				return false
			}
			ev, ok := push["evidence"].(models.Evidence)
			return ok &&
				bytes.Equal(ev.Data.Data, content) &&
				ev.OriginalName == "lock.png" &&
				ev.MediaType == "image/png" &&
				ev.Size == int64(len(content)) &&
				ev.UploadedBy == "staff-1"
		})).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	e := handlers.Evidence{DB: caseDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(e.AddCaseEvidenceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var meta models.Evidence
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &meta))
	assert.NotEmpty(t, meta.FileID)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.Equal(t, "photo of the broken lock", meta.Description)
	// raw bytes never appear in JSON responses
	assert.NotContains(t, rr.Body.String(), "\"data\"")
	caseDB.AssertExpectations(t)
}

func TestEvidence_AddCaseEvidenceHandlerClosedCase(t *testing.T) {
	body, contentType := multipartUpload(t, "late.png", "image/png", []byte{0x01})

	req, _ := http.NewRequest("POST", "/api/v1/case/CASE-20250901-0001/evidence", body)
	req.Header.Set("Content-Type", contentType)
	req = mux.SetURLVars(req, map[string]string{"case_number": "CASE-20250901-0001"})
	req = requestWithActor(req, "admin-1", models.RoleAdmin)

	closed := filedCase("CASE-20250901-0001", "citizen-1")
	closed.Status = models.StatusClosed

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(closed, nil)

	e := handlers.Evidence{DB: caseDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(e.AddCaseEvidenceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvidence_CaseEvidenceByIDHandlerRoundTrip(t *testing.T) {
	content := []byte("binary-evidence-payload")

	stored := filedCase("CASE-20250901-0001", "citizen-1")
	stored.Evidence = []models.Evidence{{
		FileID:       "file-1",
		OriginalName: "statement.pdf",
		MediaType:    "application/pdf",
		Size:         int64(len(content)),
		Data:         primitive.Binary{Subtype: 0x00, Data: content},
		UploadedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}}

	req, _ := http.NewRequest("GET", "/api/v1/case/CASE-20250901-0001/evidence/file-1", nil)
	req = mux.SetURLVars(req, map[string]string{
		"case_number": "CASE-20250901-0001",
		"evidence_id": "file-1",
	})
	req = requestWithActor(req, "citizen-1", models.RoleCitizen)

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, bson.M{"caseNumber": "CASE-20250901-0001"}).Return(stored, nil)

	e := handlers.Evidence{DB: caseDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CaseEvidenceByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, content, rr.Body.Bytes())
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, "23", rr.Header().Get("Content-Length"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "statement.pdf")
}

func TestEvidence_CaseEvidenceByIDHandlerNotFound(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/v1/case/CASE-20250901-0001/evidence/missing", nil)
	req = mux.SetURLVars(req, map[string]string{
		"case_number": "CASE-20250901-0001",
		"evidence_id": "missing",
	})
	req = requestWithActor(req, "admin-1", models.RoleAdmin)

	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).
		Return(filedCase("CASE-20250901-0001", "citizen-1"), nil)

	e := handlers.Evidence{DB: caseDB}
	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CaseEvidenceByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEvidence_GenerateUploadSignatureUnconfigured(t *testing.T) {
	t.Setenv("CLOUDINARY_API_SECRET", "")

	req, _ := http.NewRequest("POST", "/api/v1/evidence/upload-signature", nil)
	req = requestWithActor(req, "staff-1", models.RoleStaff)

	e := handlers.Evidence{DB: &mocksdb.CaseDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(e.GenerateUploadSignature).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestEvidence_GenerateUploadSignature(t *testing.T) {
	t.Setenv("CLOUDINARY_API_SECRET", "test-secret")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "evidence")

	req, _ := http.NewRequest("POST", "/api/v1/evidence/upload-signature", nil)
	req = requestWithActor(req, "staff-1", models.RoleStaff)

	e := handlers.Evidence{DB: &mocksdb.CaseDatabase{}}
	rr := httptest.NewRecorder()
	http.HandlerFunc(e.GenerateUploadSignature).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["timestamp"])
	assert.NotEmpty(t, resp["signature"])
}

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	cldapi "github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
)

// maxEvidenceBytes caps a single uploaded evidence file at 16 MB, the
// practical limit for a document stored inline.
const maxEvidenceBytes = 16 << 20

// Evidence exposes the binary evidence endpoints.
type Evidence struct {
	DB databases.CaseDatabase
}

// AddCaseEvidenceHandler attaches an uploaded file to a case. Bytes are
// stored inline on the case document; the response carries metadata only.
func (e Evidence) AddCaseEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	caseNumber := mux.Vars(r)["case_number"]

	r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceBytes+1024)
	if err := r.ParseMultipartForm(maxEvidenceBytes); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		config.ErrorStatus("missing file field", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		config.ErrorStatus("failed to read uploaded file", http.StatusBadRequest, w, err)
		return
	}
	if len(data) == 0 {
		config.ErrorStatus("uploaded file is empty", http.StatusBadRequest, w, fmt.Errorf("zero bytes in %q", header.Filename))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	crimeCase, err := e.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber},
		options.FindOne().SetProjection(caseListProjection))
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	reporter := crimeCase.ReportedBy != "" && crimeCase.ReportedBy == actor.ID
	if !api.CanManageCase(actor, crimeCase) && !reporter {
		config.ErrorStatus("not allowed to add evidence to this case", http.StatusForbidden, w,
			fmt.Errorf("actor %s denied on case %s", actor.ID, caseNumber))
		return
	}
	if models.IsTerminal(crimeCase.Status) {
		config.ErrorStatus("cannot add evidence to a closed case", http.StatusConflict, w,
			fmt.Errorf("case %s is %s", caseNumber, crimeCase.Status))
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	fileID := uuid.New().String()
	ev := models.Evidence{
		FileID:       fileID,
		Filename:     fileID + filepath.Ext(header.Filename),
		OriginalName: header.Filename,
		MediaType:    mediaType,
		Size:         int64(len(data)),
		Data:         primitive.Binary{Subtype: 0x00, Data: data},
		Description:  r.FormValue("description"),
		UploadedAt:   primitive.NewDateTimeFromTime(time.Now()),
		UploadedBy:   actor.ID,
	}

	update := bson.M{
		"$push": bson.M{"evidence": ev},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		"$inc":  bson.M{"version": 1},
	}
	res, err := e.DB.UpdateOne(ctx, bson.M{"caseNumber": caseNumber, "version": crimeCase.Version}, update)
	if err != nil {
		config.ErrorStatus("failed to store evidence", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("case was modified concurrently, retry", http.StatusConflict, w,
			fmt.Errorf("version %d no longer current on case %s", crimeCase.Version, caseNumber))
		return
	}
	zap.S().Infow("evidence attached",
		"caseNumber", caseNumber,
		"fileId", fileID,
		"size", ev.Size,
		"mediaType", mediaType)

	b, err := json.Marshal(ev)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CaseEvidenceByIDHandler streams stored evidence bytes back with the
// original media type and length.
func (e Evidence) CaseEvidenceByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	vars := mux.Vars(r)
	caseNumber := vars["case_number"]
	evidenceID := vars["evidence_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	crimeCase, err := e.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	if !api.CanViewCase(actor, crimeCase) {
		config.ErrorStatus("not allowed to view this case", http.StatusForbidden, w,
			fmt.Errorf("actor %s denied on case %s", actor.ID, caseNumber))
		return
	}

	for _, ev := range crimeCase.Evidence {
		if ev.FileID != evidenceID {
			continue
		}
		w.Header().Set("Content-Type", ev.MediaType)
		w.Header().Set("Content-Length", strconv.FormatInt(ev.Size, 10))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ev.OriginalName))
		w.WriteHeader(http.StatusOK)
		w.Write(ev.Data.Data)
		return
	}
	config.ErrorStatus("evidence not found", http.StatusNotFound, w,
		fmt.Errorf("no evidence %s on case %s", evidenceID, caseNumber))
}

// GenerateUploadSignature signs a direct-to-Cloudinary upload for clients
// that want to host large media externally and attach the returned URL as a
// case tag instead of inline bytes.
func (e Evidence) GenerateUploadSignature(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("CLOUDINARY_API_SECRET")
	if secret == "" {
		config.ErrorStatus("external uploads not configured", http.StatusServiceUnavailable, w,
			fmt.Errorf("CLOUDINARY_API_SECRET not set"))
		return
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := url.Values{"timestamp": {timestamp}}
	if preset := os.Getenv("CLOUDINARY_UPLOAD_PRESET"); preset != "" {
		params.Set("upload_preset", preset)
	}
	if folder := r.URL.Query().Get("folder"); folder != "" {
		params.Set("folder", folder)
	}
	signature, err := cldapi.SignParameters(params, secret)
	if err != nil {
		config.ErrorStatus("failed to sign upload parameters", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

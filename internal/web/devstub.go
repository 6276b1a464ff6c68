package web

// devstub.go serves a canned partner and configuration so the loader can run
// locally without the partner and configuration services. Point
// CONFIG_SERVICE_URL and PARTNER_SERVICE_URL at {server}/devstub and set
// SERVER_DEV_STUBS=true.

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/rawloader/internal/clients"
	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/go-chi/chi/v5"
)

// StubConfigID is the only configuration the stub knows.
const StubConfigID = "MotorPolicy-v1"

func (s *Server) handleStubPartner(w http.ResponseWriter, r *http.Request) {
	id, ok := stubPartnerID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, clients.Partner{
		ID:            id,
		PartnerName:   "Test Partner",
		Type:          "AGENCY",
		Email:         "stub.partner@example.com",
		Mobile:        "9999999999",
		ContactNumber: "011-12345678",
	})
}

func (s *Server) handleStubConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := stubPartnerID(w, r)
	if !ok {
		return
	}
	configID := chi.URLParam(r, "configId")
	if configID != StubConfigID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("config %q not found", configID)})
		return
	}
	writeJSON(w, http.StatusOK, stubSchema(id))
}

func stubPartnerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "partnerId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "partnerId must be an integer"})
		return 0, false
	}
	return id, true
}

// stubSchema is a small motor policy sheet: three required columns and an
// optional product name.
func stubSchema(partnerID int64) core.Schema {
	return core.Schema{
		ConfigID:  StubConfigID,
		PartnerID: partnerID,
		Name:      "Motor Policy",
		Status:    "ACTIVE",
		Columns: []core.ColumnSpec{
			{Header: "Policy No", Key: "policyNo", Type: core.TypeString, Required: true},
			{Header: "Issue Date", Key: "issueDate", Type: core.TypeDate, Required: true, Format: "dd/MM/yyyy"},
			{Header: "Premium", Key: "premium", Type: core.TypeNumber, Required: true},
			{Header: "Product", Key: "product", Type: core.TypeString},
		},
	}
}

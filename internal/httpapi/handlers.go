package httpapi

import (
	"fmt"
	"net/http"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// ── Ingestion ────────────────────────────────────────────────────────────────

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	req, err := service.ScanRequestFromFields(fields)
	if err != nil {
		s.writeServiceError(w, r, "scan", err)
		return
	}

	res, err := s.scanService.Ingest(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, "scan", err)
		return
	}
	writeData(w, r, res)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	cursor, err := service.ParseCursor(r.URL.Query().Get("last_id"))
	if err != nil {
		s.writeServiceError(w, r, "updates", err)
		return
	}
	res, err := s.syncService.Poll(r.Context(), cursor)
	if err != nil {
		s.writeServiceError(w, r, "updates", err)
		return
	}
	writeData(w, r, res)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reportService.Snapshot(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeServiceError(w, r, "snapshot", err)
		return
	}
	writeData(w, r, snap)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	include, err := queryBool(r, "include_unregistered")
	if err != nil {
		s.writeServiceError(w, r, "report", err)
		return
	}
	q := r.URL.Query()
	rep, err := s.reportService.Report(r.Context(), service.ReportQuery{
		StartDate:           q.Get("start_date"),
		EndDate:             q.Get("end_date"),
		IncludeUnregistered: include,
	})
	if err != nil {
		s.writeServiceError(w, r, "report", err)
		return
	}
	writeData(w, r, rep)
}

type devicesResponse struct {
	Devices []types.DeviceStatus `json:"devices"`
	Message string               `json:"message,omitempty"`
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devs, err := s.reportService.Devices(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeServiceError(w, r, "devices", err)
		return
	}
	resp := devicesResponse{Devices: devs}
	if len(devs) == 0 {
		resp.Message = service.NoRecords
	}
	writeData(w, r, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.reportService.Stats(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeServiceError(w, r, "stats", err)
		return
	}
	writeData(w, r, st)
}

// ── Identity ─────────────────────────────────────────────────────────────────

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	req, err := registerRequestFromFields(fields)
	if err != nil {
		s.writeServiceError(w, r, "register", err)
		return
	}
	res, err := s.personService.Register(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, "register", err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	respond(w, r, status, Envelope{Success: true, Data: res})
}

type personResponse struct {
	Person  *types.Person `json:"person"`
	Message string        `json:"message,omitempty"`
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := s.personService.Get(r.Context(), r.PathValue("tag_id"))
	if err != nil {
		s.writeServiceError(w, r, "person", err)
		return
	}
	resp := personResponse{Person: p}
	if p == nil {
		resp.Message = service.NoRecords
	}
	writeData(w, r, resp)
}

// ── Health ───────────────────────────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.writeServiceError(w, r, "readyz", err)
			return
		}
	}
	writeData(w, r, map[string]string{"status": "ready"})
}

func (s *Server) handleUnsupported(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, codeUnsupported,
		fmt.Sprintf("unsupported request: %s %s", r.Method, r.URL.Path))
}

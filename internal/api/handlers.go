package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"grislo/internal/availability"
	"grislo/internal/calendar"
	"grislo/internal/domain"
	"grislo/internal/models"
	"grislo/internal/service"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrCancelDeadline),
		errors.Is(err, service.ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidTimeSlot),
		errors.Is(err, service.ErrNoPickupLocation),
		errors.Is(err, service.ErrTooManyPassengers),
		errors.Is(err, service.ErrOutsideWindow),
		errors.Is(err, service.ErrDayNotOperating),
		errors.Is(err, service.ErrSlotNotOffered):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

// GET /api/v1/calendar?year=2025&month=6&selected=2025-06-01
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := s.reservations.Snapshot(r.Context())

	year := snap.Today.Year()
	month := snap.Today.Month()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = time.Month(m)
	}

	var selected time.Time
	if raw := r.URL.Query().Get("selected"); raw != "" {
		d, err := time.Parse(models.DateFormat, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid selected date; expected YYYY-MM-DD")
			return
		}
		selected = d
	}

	writeJSON(w, http.StatusOK, calendar.BuildMonthView(snap, year, month, selected))
}

// GET /api/v1/days/{date} returns classification, slot views and the summary
// for one day.
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/days/")
	if raw == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse(models.DateFormat, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	snap := s.reservations.Snapshot(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    raw,
		"state":   calendar.ClassifyDay(snap, date),
		"slots":   calendar.SlotsForDay(snap, date),
		"summary": calendar.SummarizeDay(snap, date),
	})
}

// GET /api/v1/locations
func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	locations := s.reservations.Locations(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

type createReservationRequest struct {
	Name           string `json:"name"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	PickupLocation string `json:"pickup_location"`
	Notes          string `json:"notes"`
	Passengers     int    `json:"passengers"`
}

// POST /api/v1/reservations creates; GET lists the caller's session set.
func (s *Server) handleReservations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateReservation(w, r)
	case http.MethodGet:
		s.handleMyReservations(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var body createReservationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reservation, err := s.reservations.Create(r.Context(), domain.CreateReservation{
		Name:           body.Name,
		Date:           body.Date,
		Time:           body.Time,
		PickupLocation: body.PickupLocation,
		Notes:          body.Notes,
		Passengers:     body.Passengers,
		SessionID:      r.Header.Get(sessionHeader),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (s *Server) handleMyReservations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "X-Session-ID header is required")
		return
	}

	mine, err := s.reservations.MyReservations(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if mine == nil {
		mine = []models.Reservation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": mine})
}

// GET /api/v1/reservations/{id} finds; DELETE cancels self-service.
func (s *Server) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/reservations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "reservation id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		reservation, err := s.reservations.FindByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)
	case http.MethodDelete:
		if err := s.reservations.Cancel(r.Context(), id, false); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusCancelled})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// DELETE /api/v1/admin/reservations/{id} cancels without the deadline check.
func (s *Server) handleAdminCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/reservations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "reservation id is required")
		return
	}

	if err := s.reservations.Cancel(r.Context(), id, true); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.StatusCancelled})
}

// GET lists, POST upserts, DELETE ?date= removes a schedule entry.
func (s *Server) handleAdminSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		days := s.schedule.OperatingDays(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"operating_days": days})
	case http.MethodPost:
		var day models.OperatingDay
		if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.schedule.AddOperatingDay(r.Context(), day); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, day)
	case http.MethodDelete:
		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			writeError(w, http.StatusBadRequest, "date is required")
			return
		}
		if err := s.schedule.RemoveOperatingDay(r.Context(), date); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": date})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// POST /api/v1/admin/locations
func (s *Server) handleAdminLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body createLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	loc, err := s.schedule.AddLocation(r.Context(), body.Name, body.Address)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// DELETE /api/v1/admin/locations/{id}
func (s *Server) handleAdminLocationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/locations/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "location id is required")
		return
	}

	if err := s.schedule.RemoveLocation(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// GET /api/v1/admin/stats
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.schedule.Stats(r.Context(), time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/v1/admin/upcoming?limit=5
func (s *Server) handleAdminUpcoming(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	upcoming := s.schedule.UpcomingReservations(r.Context(), time.Now(), limit)
	if upcoming == nil {
		upcoming = []models.Reservation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": upcoming})
}

type exportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// POST /api/v1/admin/export writes the XLSX report and returns its path.
func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, err := time.Parse(models.DateFormat, body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(models.DateFormat, body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	path, err := s.exporter.ReservationsXLSX(r.Context(), availability.Midnight(start), availability.Midnight(end))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

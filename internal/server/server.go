package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/medipredict/forecast-dashboard/internal/pipeline"
	"github.com/medipredict/forecast-dashboard/internal/session"
	"github.com/medipredict/forecast-dashboard/internal/tabs"
	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"github.com/medipredict/forecast-dashboard/pkg/output"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Options configures the dashboard handler.
type Options struct {
	MaxUploadSize int64
	SessionTTL    time.Duration
	SecureCookies bool
	Version       string
}

type handler struct {
	logger        *zap.Logger
	store         *session.Store
	maxUploadSize int64
	sessionTTL    time.Duration
	secureCookies bool
	version       string
	templates     *template.Template
}

type sessionKey struct{}

// NewHandler constructs the HTTP handler that serves the dashboard page, the
// file-picker endpoints and the JSON API.
func NewHandler(logger *zap.Logger, store *session.Store, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = constants.DefaultSessionTTL
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	templates, err := template.New("").Funcs(template.FuncMap{
		"sizeLabel": sizeLabel,
	}).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded templates: %v", err))
	}

	h := &handler{
		logger:        logger,
		store:         store,
		maxUploadSize: opts.MaxUploadSize,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
		version:       trimmedVersion,
		templates:     templates,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	// Static assets (web UI)
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	// Version endpoint for UI metadata
	r.Get("/api/version", h.handleVersion)

	r.Group(func(r chi.Router) {
		r.Use(h.withSession)

		r.Get("/", h.handleIndex)
		r.Post("/files/{slot}", h.handleFile)
		r.Post("/process", h.handleProcess)
		r.Post("/tabs/{tab}", h.handleTab)

		r.Get("/api/state", h.handleState)
		r.Get("/api/forecasts.csv", h.handleExport)
		r.Get("/api/charts/{id}", h.handleChart)
	})

	return r
}

func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("request served",
			zap.String("op", "server.requestLogger"),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withSession resolves the page session from its cookie, starting a new one
// when the cookie is absent or expired.
func (h *handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
			id = cookie.Value
		}

		sess, created := h.store.Acquire(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     constants.SessionCookieName,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(h.sessionTTL.Seconds()),
				HttpOnly: true,
				Secure:   h.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return sess
}

type pageData struct {
	Version       string
	Tabs          []tabs.Tab
	Slots         []pipeline.SlotStatus
	Ready         bool
	Loading       bool
	Display       pipeline.Display
	Notice        string
	MaxUploadSize int
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, sessionFrom(r), http.StatusOK, "")
}

func (h *handler) renderPage(w http.ResponseWriter, sess *session.Session, status int, notice string) {
	display := sess.Pipeline.Display()
	data := pageData{
		Version:       h.version,
		Tabs:          sess.Tabs.Tabs(),
		Slots:         sess.Pipeline.Slots(),
		Ready:         sess.Pipeline.Ready(),
		Loading:       display.State == pipeline.StateLoading,
		Display:       display,
		Notice:        notice,
		MaxUploadSize: int(h.maxUploadSize),
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render page: %v", err), "server.renderPage")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write page",
			zap.String("op", "server.renderPage"),
			zap.Error(err),
		)
	}
}

func (h *handler) handleFile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	slot, err := pipeline.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), "server.handleFile")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleFile")
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "server.handleFile")
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// The picker was submitted without a selection.
		if err := sess.Pipeline.RecordFile(slot, nil); err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleFile")
			return
		}
	case err != nil:
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err), "server.handleFile")
		return
	default:
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", "server.handleFile"),
					zap.Error(closeErr),
				)
			}
		}()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err), "server.handleFile")
			return
		}
		if header.Filename == "" && buf.Len() == 0 {
			err = sess.Pipeline.RecordFile(slot, nil)
		} else {
			err = sess.Pipeline.RecordFile(slot, &pipeline.File{Name: header.Filename, Data: buf.Bytes()})
		}
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleFile")
			return
		}
	}

	if wantsJSON(r) {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"slots": sess.Pipeline.Slots(),
			"ready": sess.Pipeline.Ready(),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	// The backend call outlives the request so that leaving the page does not
	// abort it; the client timeout still bounds it.
	err := sess.Pipeline.Submit(context.WithoutCancel(r.Context()))

	var validationErr *pipeline.ValidationError
	switch {
	case errors.As(err, &validationErr):
		if wantsJSON(r) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   constants.MissingFilesMessage,
				"missing": validationErr.Missing,
			})
			return
		}
		h.renderPage(w, sess, http.StatusUnprocessableEntity, constants.MissingFilesMessage)
		return
	case errors.Is(err, pipeline.ErrSubmitInProgress):
		if wantsJSON(r) {
			h.respondErrorWithOp(w, http.StatusConflict, err.Error(), "server.handleProcess")
			return
		}
	}

	sess.Tabs.Click(session.TabForecasts)

	if wantsJSON(r) {
		status := http.StatusOK
		if err != nil {
			status = http.StatusBadGateway
		}
		h.writeJSON(w, status, h.state(sess))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleTab(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	tab := chi.URLParam(r, "tab")

	if !sess.Tabs.Click(tab) {
		h.logger.Debug("tab switch ignored",
			zap.String("op", "server.handleTab"),
			zap.String("tab", tab),
		)
	}

	if wantsJSON(r) {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"active": sess.Tabs.Active(),
			"tabs":   sess.Tabs.Tabs(),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type stateResponse struct {
	Session   string                `json:"session"`
	ActiveTab string                `json:"activeTab"`
	Tabs      []tabs.Tab            `json:"tabs"`
	Slots     []pipeline.SlotStatus `json:"slots"`
	Ready     bool                  `json:"ready"`
	Display   pipeline.Display      `json:"display"`
	Charts    int                   `json:"charts"`
}

func (h *handler) state(sess *session.Session) stateResponse {
	return stateResponse{
		Session:   sess.ID,
		ActiveTab: sess.Tabs.Active(),
		Tabs:      sess.Tabs.Tabs(),
		Slots:     sess.Pipeline.Slots(),
		Ready:     sess.Pipeline.Ready(),
		Display:   sess.Pipeline.Display(),
		Charts:    sess.Pipeline.HandleCount(),
	}
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.state(sessionFrom(r)))
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	res := sessionFrom(r).Pipeline.Result()
	if res == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "no forecast has been rendered", "server.handleExport")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="forecasts.csv"`)
	if err := output.CsvFormat(w, res); err != nil {
		h.logger.Error("failed to write CSV export",
			zap.String("op", "server.handleExport"),
			zap.Error(err),
		)
	}
}

func (h *handler) handleChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	handle, ok := sessionFrom(r).Pipeline.Chart(id)
	if !ok || handle.Released() {
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("chart %q not found", id), "server.handleChart")
		return
	}
	data := handle.Bytes()
	if len(data) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", handle.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write chart",
			zap.String("op", "server.handleChart"),
			zap.String("chart", id),
			zap.Error(err),
		)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func sizeLabel(size int) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%d B", size)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("dashboard request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

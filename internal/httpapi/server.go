// Package httpapi serves quiz generation over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/eslquiz/quizgen/internal/llm"
	"github.com/eslquiz/quizgen/internal/quizgen"
)

// maxTextBody bounds the JSON body of a text request.
const maxTextBody = 1 << 20

// Generator is the part of *quizgen.Generator the handlers need.
type Generator interface {
	Generate(ctx context.Context, req quizgen.GenerationRequest) (quizgen.Result, error)
}

// Options configures a Handler.
type Options struct {
	// MaxImageBytes bounds uploaded images. Defaults to 10 MiB.
	MaxImageBytes int64
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	Log     *zap.Logger
}

// Handler holds shared dependencies for the HTTP handlers.
type Handler struct {
	gen           Generator
	maxImageBytes int64
	metrics       http.Handler
	log           *zap.Logger
}

// New creates a Handler.
func New(gen Generator, opts Options) *Handler {
	h := &Handler{
		gen:           gen,
		maxImageBytes: opts.MaxImageBytes,
		metrics:       opts.Metrics,
		log:           opts.Log,
	}
	if h.maxImageBytes <= 0 {
		h.maxImageBytes = 10 << 20
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// Router returns the complete route tree with middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	h.Routes(r)
	return r
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	r.Route("/v1/quizzes", func(r chi.Router) {
		r.Post("/text", h.handleText)
		r.Post("/image", h.handleImage)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type textRequest struct {
	Text          string `json:"text"`
	QuestionCount int    `json:"question_count"`
	OptionCount   int    `json:"option_count"`
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	var body textRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBody))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid JSON body: "+err.Error())
		return
	}

	h.generate(w, r, quizgen.GenerationRequest{
		Source:        quizgen.Source{Text: body.Text},
		QuestionCount: body.QuestionCount,
		OptionCount:   body.OptionCount,
	})
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	// Room for the form fields and multipart framing on top of the image.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+64<<10)
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "image", fmt.Sprintf("image exceeds %d bytes", h.maxImageBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "", "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image", "no image uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "image", "failed to read image")
		return
	}
	if int64(len(data)) > h.maxImageBytes {
		writeError(w, http.StatusBadRequest, "image", fmt.Sprintf("image exceeds %d bytes", h.maxImageBytes))
		return
	}
	mime := llm.SniffImageMIME(data)
	if mime == "" {
		writeError(w, http.StatusBadRequest, "image", "unsupported image type (want jpeg, png, gif or webp)")
		return
	}

	questions, err := formInt(r, "question_count")
	if err != nil {
		writeError(w, http.StatusBadRequest, "question_count", err.Error())
		return
	}
	options, err := formInt(r, "option_count")
	if err != nil {
		writeError(w, http.StatusBadRequest, "option_count", err.Error())
		return
	}

	h.generate(w, r, quizgen.GenerationRequest{
		Source:        quizgen.Source{Image: data, ImageMIME: mime},
		QuestionCount: questions,
		OptionCount:   options,
	})
}

// generate validates req, runs the pipeline and writes the result. Backend
// faults still produce a quiz-shaped 200 response; only caller mistakes are
// rejected.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request, req quizgen.GenerationRequest) {
	if _, err := req.Normalize(); err != nil {
		var rerr *quizgen.RequestError
		if errors.As(err, &rerr) {
			writeError(w, http.StatusBadRequest, rerr.Field, rerr.Message)
			return
		}
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	ctx := r.Context()
	if id := middleware.GetReqID(ctx); id != "" {
		ctx = llm.WithRequestID(ctx, id)
	}

	res, _ := h.gen.Generate(ctx, req)
	w.Header().Set("X-Quiz-Status", string(res.Status))
	writeJSON(w, http.StatusOK, res)
}

func formInt(r *http.Request, name string) (int, error) {
	s := r.FormValue(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", s)
	}
	return n, nil
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, field, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Field: field})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request with its status and latency.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

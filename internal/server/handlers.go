// SPDX-License-Identifier: EPL-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/Liam-coding/Voice-API/pipeline"
	"github.com/Liam-coding/Voice-API/result"
	"github.com/Liam-coding/Voice-API/session"
)

const headerSubstituted = "X-Audio-Substituted"

type translateResponse struct {
	Status         string `json:"status"`
	Translation    string `json:"translation"`
	Original       string `json:"original"`
	AudioAvailable bool   `json:"audio_available"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.Server.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "audio file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form with an audio_chunk file")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio_chunk")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read audio file")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "audio file is empty")
		return
	}

	source := formValue(r, "source_lang", s.opts.SourceLang)
	target := formValue(r, "target_lang", s.opts.TargetLang)
	if !slices.Contains(supportedLanguages, source) || !slices.Contains(supportedLanguages, target) {
		writeError(w, http.StatusBadRequest, "unsupported language pair "+source+"->"+target)
		return
	}

	stream := s.opts.Stream
	if v := r.FormValue("stream"); v != "" {
		if stream, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "stream must be true or false")
			return
		}
	}

	out := s.pipeline.Normalize(data)
	s.logger.Info("translation requested",
		slog.String("filename", header.Filename),
		slog.Int("bytes", len(data)),
		slog.String("source_lang", source),
		slog.String("target_lang", target),
		slog.String("strategy", out.Strategy),
		slog.Bool("substituted", out.Substituted),
		slog.Bool("stream", stream),
	)
	if out.Substituted {
		w.Header().Set(headerSubstituted, "true")
	}

	send := s.session.Translate
	if stream {
		send = s.session.Stream
	}
	res, err := send(r.Context(), source, target, out.PCM)
	if err != nil {
		s.writeTranslateError(w, err)
		return
	}

	switch res.Status {
	case result.Success:
		writeJSON(w, http.StatusOK, translateResponse{
			Status:         "success",
			Translation:    res.Translation,
			Original:       res.Original,
			AudioAvailable: res.HasAudio(),
		})
	case result.BusinessError:
		writeError(w, http.StatusInternalServerError, "translation service error: "+res.Message)
	case result.Timeout:
		writeError(w, http.StatusGatewayTimeout, "translation service timed out")
	case result.ConnectionClosed:
		writeError(w, http.StatusServiceUnavailable, "translation service connection lost")
	default:
		s.logger.Warn("unusable reply from translation service", slog.String("message", res.Message))
		writeError(w, http.StatusInternalServerError, "invalid reply from translation service")
	}
}

func (s *Server) writeTranslateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "cannot reach the translation service")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request abandoned before the service answered")
	default:
		s.logger.Error("translation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "translation failed")
	}
}

type healthDetails struct {
	ConnectionAttempts int        `json:"connection_attempts"`
	IsProcessing       bool       `json:"is_processing"`
	LastActivity       *time.Time `json:"last_activity,omitempty"`
	State              string     `json:"state"`
	SourceLang         string     `json:"source_lang,omitempty"`
	TargetLang         string     `json:"target_lang,omitempty"`
}

type healthResponse struct {
	Status    string        `json:"status"`
	Connected bool          `json:"connected"`
	Timestamp time.Time     `json:"timestamp"`
	Details   healthDetails `json:"details"`
}

func (s *Server) health() healthResponse {
	st := s.session.Status()

	h := healthResponse{
		Status:    "degraded",
		Connected: st.Connected,
		Timestamp: time.Now().UTC(),
		Details: healthDetails{
			ConnectionAttempts: st.Attempts,
			IsProcessing:       st.Busy,
			State:              st.State.String(),
			SourceLang:         st.SourceLang,
			TargetLang:         st.TargetLang,
		},
	}
	if st.Connected && st.State != session.Closing {
		h.Status = "healthy"
	}
	if !st.LastActivity.IsZero() {
		last := st.LastActivity.UTC()
		h.Details.LastActivity = &last
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.health())
}

type statusResponse struct {
	Service            string         `json:"service"`
	Version            string         `json:"version"`
	SampleRate         int            `json:"sample_rate"`
	SupportedFormats   []string       `json:"supported_formats"`
	SupportedLanguages []string       `json:"supported_languages"`
	Health             healthResponse `json:"health"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Service:            serviceName,
		Version:            serviceVersion,
		SampleRate:         pipeline.TargetRate,
		SupportedFormats:   append(s.pipeline.Formats(), "pcm"),
		SupportedLanguages: supportedLanguages,
		Health:             s.health(),
	})
}

func formValue(r *http.Request, key, def string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorResponse{Detail: detail})
}

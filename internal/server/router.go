package server

import (
	"net/http"

	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /{$}", h.Evaluate)

	mux.HandleFunc("POST /api/v1/evaluations", h.EvaluateAPI)

	mux.HandleFunc("GET /download_pdf/{index}", h.DownloadPDF)
	mux.HandleFunc("POST /download_pdf/{index}", h.DownloadPDF)

	mux.HandleFunc("GET /healthz", h.Healthz)

	if logger == nil {
		logger = zap.NewNop()
	}

	return withRequestLog(logger, mux)
}

package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"news-summarizer/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	downloadFilename  = "news_summary.md"
	maxBodyBytes      = 256 << 10
)

// SummarizeUseCase is the interactive summarization surface.
type SummarizeUseCase interface {
	Summarize(ctx context.Context, in usecase.SummarizeInput) (usecase.SummarizeOutput, error)
}

type summarizeRequest struct {
	NewsText string `json:"news_text"`
}

type summaryRequest struct {
	Summary string `json:"summary"`
}

type summarizeResponse struct {
	Summary         string   `json:"summary"`
	MermaidDiagrams []string `json:"mermaid_diagrams"`
}

type mermaidResponse struct {
	MermaidDiagrams []string `json:"mermaid_diagrams"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handler serves the interactive summarize endpoints behind API Gateway.
type Handler struct {
	uc  SummarizeUseCase
	log *slog.Logger
}

func NewHandler(uc SummarizeUseCase, log *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{uc: uc, log: log}, nil
}

// Handle routes one API Gateway proxy request. Failures are rendered as JSON
// error responses, so the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)
	log := h.log.With("correlation_id", corrID, "path", req.Path)

	route := strings.TrimRight(req.Path, "/")
	if i := strings.LastIndex(route, "/"); i >= 0 {
		route = route[i:]
	}

	switch route {
	case "/summarize", "/extract-mermaid", "/download":
	default:
		return h.errorJSON(corrID, http.StatusNotFound, "NOT_FOUND", "Route not found."), nil
	}
	if req.HTTPMethod != http.MethodPost {
		resp := h.errorJSON(corrID, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is supported.")
		resp.Headers["Allow"] = http.MethodPost
		return resp, nil
	}

	body, err := requestBody(req)
	if err != nil {
		log.Warn("rejecting request body", "err", err)
		return h.errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Request body must be a JSON object."), nil
	}

	switch route {
	case "/summarize":
		return h.summarize(ctx, log, corrID, body), nil
	case "/extract-mermaid":
		return h.extractMermaid(corrID, body), nil
	default:
		return h.download(corrID, body), nil
	}
}

func (h *Handler) summarize(ctx context.Context, log *slog.Logger, corrID string, body []byte) events.APIGatewayProxyResponse {
	var in summarizeRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return h.errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Request body must be a JSON object.")
	}

	out, err := h.uc.Summarize(ctx, usecase.SummarizeInput{NewsText: in.NewsText})
	if err != nil {
		code := usecase.CodeOf(err)
		status := statusFor(code)
		if status >= 500 {
			log.Error("summarize failed", "code", code, "err", err)
		} else {
			log.Warn("summarize rejected", "code", code, "err", err)
		}
		return h.errorJSON(corrID, status, string(code), messageFor(err))
	}

	diagrams := out.MermaidDiagrams
	if diagrams == nil {
		diagrams = []string{}
	}
	return h.json(corrID, http.StatusOK, summarizeResponse{Summary: out.Summary, MermaidDiagrams: diagrams})
}

func (h *Handler) extractMermaid(corrID string, body []byte) events.APIGatewayProxyResponse {
	var in summaryRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return h.errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Request body must be a JSON object.")
	}
	if strings.TrimSpace(in.Summary) == "" {
		return h.errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Summary not found.")
	}
	return h.json(corrID, http.StatusOK, mermaidResponse{MermaidDiagrams: usecase.ExtractMermaid(in.Summary)})
}

func (h *Handler) download(corrID string, body []byte) events.APIGatewayProxyResponse {
	var in summaryRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return h.errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Request body must be a JSON object.")
	}
	if strings.TrimSpace(in.Summary) == "" {
		return h.errorJSON(corrID, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "Summary not found.")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":        "text/markdown; charset=utf-8",
			"Content-Disposition": `attachment; filename="` + downloadFilename + `"`,
			correlationHeader:     corrID,
		},
		Body: in.Summary,
	}
}

func (h *Handler) json(corrID string, status int, v any) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode response", "err", err)
		status = http.StatusInternalServerError
		buf = []byte(`{"error":"INTERNAL_ERROR","message":"Something went wrong."}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(buf),
	}
}

func (h *Handler) errorJSON(corrID string, status int, code, message string) events.APIGatewayProxyResponse {
	return h.json(corrID, status, errorResponse{Error: code, Message: message})
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, err
		}
		body = decoded
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("body too large")
	}
	if !json.Valid(body) {
		return nil, errors.New("body is not valid JSON")
	}
	return body, nil
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorRejectedInput:
		return http.StatusBadRequest
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns caller-facing text. Wrapped causes are never included.
func messageFor(err error) string {
	var ue *usecase.Error
	if errors.As(err, &ue) {
		switch ue.Reason {
		case "empty_news_text":
			return "Please enter the full news article text."
		case "news_text_too_long":
			return "The article text is too long."
		case "moderation_flagged":
			return "The article text was rejected by content moderation."
		}
		switch ue.Code {
		case usecase.ErrorRateLimited:
			return "The summarization service is busy. Please try again shortly."
		case usecase.ErrorUpstream:
			return "The summarization service is unavailable."
		}
	}
	return "Something went wrong."
}

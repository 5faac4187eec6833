package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/service"
)

const multipartOverhead = 1 << 20

type publishPayload struct {
	Title         string           `json:"title"`
	Date          string           `json:"date"`
	Description   string           `json:"description"`
	ContentType   repo.ContentType `json:"contentType"`
	TargetUserIDs []string         `json:"targetUserIds"`
	LinkURL       string           `json:"linkUrl"`
	FileName      string           `json:"fileName"`
	MimeType      string           `json:"mimeType"`
	FileBase64    string           `json:"fileBase64"`
}

// ListContent lista todos os conteúdos no painel.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	list, err := h.content.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, contentSummaries(list))
}

// PublishContent aceita multipart (campo file) ou JSON com arquivo em base64.
func (h *Handler) PublishContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+multipartOverhead)

	var (
		in  service.PublishInput
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		in, err = h.publishFromMultipart(r)
	} else {
		in, err = h.publishFromJSON(r)
	}
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	content, err := h.content.Publish(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, content.Summary())
}

func (h *Handler) publishFromJSON(r *http.Request) (service.PublishInput, error) {
	var payload publishPayload
	if err := jsonDecode(r, &payload); err != nil {
		return service.PublishInput{}, errors.New("JSON inválido")
	}

	in := service.PublishInput{
		Title:       payload.Title,
		Date:        payload.Date,
		Description: payload.Description,
		ContentType: payload.ContentType,
		Audience:    repo.AudienceFromTargets(payload.TargetUserIDs),
		LinkURL:     payload.LinkURL,
	}
	if payload.FileBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(payload.FileBase64)
		if err != nil {
			return service.PublishInput{}, errors.New("fileBase64 inválido")
		}
		if int64(len(data)) > h.cfg.MaxUploadBytes {
			return service.PublishInput{}, fmt.Errorf("arquivo excede %d bytes", h.cfg.MaxUploadBytes)
		}
		in.File = &service.FileUpload{Name: payload.FileName, MimeType: payload.MimeType, Data: data}
	}
	return in, nil
}

func (h *Handler) publishFromMultipart(r *http.Request) (service.PublishInput, error) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		return service.PublishInput{}, fmt.Errorf("formulário inválido ou arquivo acima de %d bytes", h.cfg.MaxUploadBytes)
	}

	targets := r.MultipartForm.Value["targetUserIds"]
	if len(targets) == 1 && strings.Contains(targets[0], ",") {
		targets = strings.Split(targets[0], ",")
	}

	in := service.PublishInput{
		Title:       r.FormValue("title"),
		Date:        r.FormValue("date"),
		Description: r.FormValue("description"),
		ContentType: repo.ContentType(r.FormValue("contentType")),
		Audience:    repo.AudienceFromTargets(targets),
		LinkURL:     r.FormValue("linkUrl"),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return service.PublishInput{}, errors.New("arquivo inválido")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return service.PublishInput{}, errors.New("falha ao ler arquivo")
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return service.PublishInput{}, fmt.Errorf("arquivo excede %d bytes", h.cfg.MaxUploadBytes)
	}
	in.File = &service.FileUpload{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	return in, nil
}

// UpdateContent altera título, data, descrição ou destinatários.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Title         *string   `json:"title"`
		Date          *string   `json:"date"`
		Description   *string   `json:"description"`
		TargetUserIDs *[]string `json:"targetUserIds"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	in := service.UpdateContentInput{Title: payload.Title, Date: payload.Date, Description: payload.Description}
	if payload.TargetUserIDs != nil {
		audience := repo.AudienceFromTargets(*payload.TargetUserIDs)
		in.Audience = &audience
	}

	content, err := h.content.Update(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, content.Summary())
}

// DeleteContent remove conteúdo.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := h.content.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DescribeContent sugere descrição para o arquivo escolhido no formulário.
func (h *Handler) DescribeContent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if err := service.Require(actor, repo.CapCreateContent); err != nil {
		writeServiceError(w, err)
		return
	}

	var payload struct {
		FileName string `json:"fileName"`
		MimeType string `json:"mimeType"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"description": h.assistant.Summarize(r.Context(), payload.FileName, payload.MimeType),
	})
}

// DownloadContent entrega o arquivo ou redireciona para o link.
func (h *Handler) DownloadContent(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.actor(w, r)
	if !ok {
		return
	}

	dl, err := h.content.Download(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if dl.RedirectURL != "" {
		http.Redirect(w, r, dl.RedirectURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", dl.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Body)
}

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"

	"github.com/sfdportal/portal/internal/repo"
	"github.com/sfdportal/portal/internal/util"
)

var (
	// ErrEmptyTargetSelection indica publicação sem destinatários.
	ErrEmptyTargetSelection = errors.New("selecione ao menos um destinatário")
	// ErrContentNotFound indica conteúdo inexistente ou fora do alcance do leitor.
	ErrContentNotFound = errors.New("conteúdo não encontrado")
	// ErrInvalidContentType indica tipo de conteúdo desconhecido.
	ErrInvalidContentType = errors.New("tipo de conteúdo inválido")
	// ErrInvalidFileData indica corpo de arquivo ilegível.
	ErrInvalidFileData = errors.New("arquivo armazenado inválido")
)

const defaultMimeType = "application/octet-stream"

var extensionByFileType = map[repo.FileType]string{
	repo.FilePDF: ".pdf",
	repo.FileJPG: ".jpg",
	repo.FilePNG: ".png",
	repo.FileDOC: ".doc",
	repo.FilePPT: ".ppt",
}

type contentStore interface {
	ListContent(ctx context.Context) ([]repo.Content, error)
	FindContent(ctx context.Context, id string) (repo.Content, error)
	MutateContent(ctx context.Context, fn func(list []repo.Content) ([]repo.Content, error)) error
	PrependContent(ctx context.Context, content repo.Content) error
	DeleteContent(ctx context.Context, id string) error
}

// ContentService publica conteúdos e resolve a visibilidade por colaborador.
type ContentService struct {
	store contentStore
}

// NewContentService cria novo serviço.
func NewContentService(store *repo.Store) *ContentService {
	return &ContentService{store: store}
}

// FileUpload carrega o arquivo enviado pelo administrador.
type FileUpload struct {
	Name     string
	MimeType string
	Data     []byte
}

// PublishInput reúne os campos do formulário de publicação.
type PublishInput struct {
	Title       string
	Date        string
	Description string
	ContentType repo.ContentType
	Audience    repo.Audience
	File        *FileUpload
	LinkURL     string
}

// UpdateContentInput altera campos editáveis; nil mantém o valor atual.
type UpdateContentInput struct {
	Title       *string
	Date        *string
	Description *string
	Audience    *repo.Audience
}

// Download descreve a entrega de um conteúdo: corpo de arquivo ou redirecionamento.
type Download struct {
	FileName    string
	MimeType    string
	Body        []byte
	RedirectURL string
}

// ClassifyFileType reduz o tipo MIME à classificação usada pelo portal.
func ClassifyFileType(mimeType string) repo.FileType {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case "application/pdf":
		return repo.FilePDF
	case "image/jpeg":
		return repo.FileJPG
	case "image/png":
		return repo.FilePNG
	case "application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return repo.FileDOC
	case "application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return repo.FilePPT
	default:
		return repo.FileOther
	}
}

// EncodeDataURL transforma o arquivo em data URL base64.
func EncodeDataURL(mimeType string, data []byte) string {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultMimeType
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL recupera tipo MIME e bytes de uma data URL base64.
func DecodeDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, ErrInvalidFileData
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidFileData
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, ErrInvalidFileData
	}
	body, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFileData, err)
	}
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	return mimeType, body, nil
}

// Publish valida e grava o conteúdo no topo da coleção.
func (s *ContentService) Publish(ctx context.Context, actor repo.User, in PublishInput) (*repo.Content, error) {
	if err := Require(actor, repo.CapCreateContent); err != nil {
		return nil, err
	}
	if field, ok := util.FirstBlank([2]string{"título", in.Title}, [2]string{"data", in.Date}); ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, field)
	}

	content := repo.Content{
		ID:          util.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Date:        strings.TrimSpace(in.Date),
		Description: in.Description,
		ContentType: in.ContentType,
	}

	switch in.ContentType {
	case repo.ContentFile:
		if in.File == nil || len(in.File.Data) == 0 {
			return nil, fmt.Errorf("%w: arquivo", ErrMissingRequiredField)
		}
		content.FileType = ClassifyFileType(in.File.MimeType)
		content.FileData = EncodeDataURL(in.File.MimeType, in.File.Data)
		content.FileName = in.File.Name
	case repo.ContentLink:
		linkURL := strings.TrimSpace(in.LinkURL)
		if linkURL == "" {
			return nil, fmt.Errorf("%w: link", ErrMissingRequiredField)
		}
		content.LinkURL = linkURL
		content.FileType = repo.FileOther
		content.FileName = repo.LinkFileName
	default:
		return nil, ErrInvalidContentType
	}

	if in.Audience.Empty() {
		return nil, ErrEmptyTargetSelection
	}
	content.Audience = in.Audience

	if err := s.store.PrependContent(ctx, content); err != nil {
		return nil, err
	}

	log.Info().Str("content_id", content.ID).Str("actor_id", actor.ID).
		Bool("everyone", content.Audience.IsEveryone()).Msg("conteúdo publicado")
	return &content, nil
}

// VisibleTo devolve, na ordem armazenada, os conteúdos destinados ao colaborador.
func (s *ContentService) VisibleTo(ctx context.Context, userID string) ([]repo.Content, error) {
	list, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]repo.Content, 0, len(list))
	for _, c := range list {
		if c.Audience.Includes(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// List devolve todos os conteúdos para o painel administrativo.
func (s *ContentService) List(ctx context.Context, actor repo.User) ([]repo.Content, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListContent(ctx)
}

// Update altera título, data, descrição ou destinatários.
func (s *ContentService) Update(ctx context.Context, actor repo.User, id string, in UpdateContentInput) (*repo.Content, error) {
	if err := Require(actor, repo.CapEditData); err != nil {
		return nil, err
	}

	var updated repo.Content
	err := s.store.MutateContent(ctx, func(list []repo.Content) ([]repo.Content, error) {
		for i := range list {
			if list[i].ID != id {
				continue
			}
			next := list[i]
			if in.Title != nil {
				next.Title = strings.TrimSpace(*in.Title)
			}
			if in.Date != nil {
				next.Date = strings.TrimSpace(*in.Date)
			}
			if in.Description != nil {
				next.Description = *in.Description
			}
			if in.Audience != nil {
				if in.Audience.Empty() {
					return nil, ErrEmptyTargetSelection
				}
				next.Audience = *in.Audience
			}
			if field, ok := util.FirstBlank([2]string{"título", next.Title}, [2]string{"data", next.Date}); ok {
				return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, field)
			}
			list[i] = next
			updated = next
			return list, nil
		}
		return nil, ErrContentNotFound
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("content_id", id).Str("actor_id", actor.ID).Msg("conteúdo atualizado")
	return &updated, nil
}

// Delete remove o conteúdo sem afetar contas.
func (s *ContentService) Delete(ctx context.Context, actor repo.User, id string) error {
	if err := Require(actor, repo.CapDeleteData); err != nil {
		return err
	}
	if err := s.store.DeleteContent(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrContentNotFound
		}
		return err
	}
	log.Info().Str("content_id", id).Str("actor_id", actor.ID).Msg("conteúdo removido")
	return nil
}

// Download entrega o arquivo ou o link do conteúdo. Colaboradores só alcançam o que lhes foi destinado.
func (s *ContentService) Download(ctx context.Context, viewer repo.User, id string) (*Download, error) {
	content, err := s.store.FindContent(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	if !viewer.IsAdmin() && !content.Audience.Includes(viewer.ID) {
		return nil, ErrContentNotFound
	}

	if content.ContentType == repo.ContentLink {
		return &Download{RedirectURL: content.LinkURL}, nil
	}

	mimeType, body, err := DecodeDataURL(content.FileData)
	if err != nil {
		return nil, err
	}
	return &Download{
		FileName: DownloadFileName(content),
		MimeType: mimeType,
		Body:     body,
	}, nil
}

// DownloadFileName gera nome seguro para o cabeçalho Content-Disposition, mantendo a extensão.
func DownloadFileName(content repo.Content) string {
	name := content.FileName
	if strings.TrimSpace(name) == "" {
		name = content.Title
	}
	rawExt := path.Ext(name)
	base := slug.Make(strings.TrimSuffix(name, rawExt))
	if base == "" {
		base = "arquivo"
	}
	ext := extensionByFileType[content.FileType]
	if rawExt != "" {
		if clean := slug.Make(rawExt[1:]); clean != "" && len(clean) <= 5 {
			ext = "." + clean
		}
	}
	return base + ext
}

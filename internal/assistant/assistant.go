package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Mensagens devolvidas quando o modelo não pode responder.
const (
	SummaryNoKey      = "Descrição automática indisponível (Sem API Key)."
	SummaryError      = "Erro ao gerar descrição."
	SummaryEmpty      = "Sem descrição gerada."
	ChatUnavailable   = "O Chatbot está indisponível no momento."
	ChatError         = "Tive um problema ao processar sua mensagem."
	ChatNotUnderstood = "Desculpe, não entendi."
)

const summaryPrompt = `Crie um resumo curto e profissional em português para um arquivo corporativo chamado "%s" do tipo "%s". Invente um contexto plausível de menu ou comunicado interno. Máximo 20 palavras.`

const chatPrompt = `Você é um assistente de RH útil e amigável da empresa.

Histórico da conversa:
%s

Usuário: %s

Responda em português de forma concisa e útil.`

var errEmptyResponse = errors.New("gemini: resposta sem texto")

type generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Config descreve credencial, modelos e limite de tempo.
type Config struct {
	APIKey    string
	Model     string
	ChatModel string
	Timeout   time.Duration
}

// Service gera descrições de arquivos e responde ao chat de RH.
// Sem chave configurada todas as chamadas devolvem a mensagem de indisponibilidade.
type Service struct {
	gen       generator
	client    *genai.Client
	model     string
	chatModel string
	timeout   time.Duration
}

// New cria o serviço; a chave vazia desativa o modelo.
func New(ctx context.Context, cfg Config) (*Service, error) {
	s := newService(nil, cfg)
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn().Msg("GEMINI_API_KEY ausente; assistente desativado")
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("criar cliente gemini: %w", err)
	}
	s.client = client
	s.gen = geminiGenerator{client: client}
	return s, nil
}

func newService(gen generator, cfg Config) *Service {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{gen: gen, model: model, chatModel: chatModel, timeout: timeout}
}

// Close libera o cliente gemini.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Enabled informa se há modelo configurado.
func (s *Service) Enabled() bool {
	return s.gen != nil
}

// Summarize sugere uma descrição curta para o arquivo. Sempre devolve texto.
func (s *Service) Summarize(ctx context.Context, fileName, fileType string) string {
	if s.gen == nil {
		return SummaryNoKey
	}
	text, err := s.generate(ctx, s.model, fmt.Sprintf(summaryPrompt, fileName, fileType))
	switch {
	case errors.Is(err, errEmptyResponse):
		return SummaryEmpty
	case err != nil:
		log.Error().Err(err).Str("file", fileName).Msg("erro ao gerar resumo")
		return SummaryError
	}
	return text
}

// Chat responde à mensagem considerando o histórico da conversa. Sempre devolve texto.
func (s *Service) Chat(ctx context.Context, history []string, message string) string {
	if s.gen == nil {
		return ChatUnavailable
	}
	text, err := s.generate(ctx, s.chatModel, fmt.Sprintf(chatPrompt, strings.Join(history, "\n"), message))
	switch {
	case errors.Is(err, errEmptyResponse):
		return ChatNotUnderstood
	case err != nil:
		log.Error().Err(err).Msg("erro no chat")
		return ChatError
	}
	return text
}

func (s *Service) generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

type geminiGenerator struct {
	client *genai.Client
}

func (g geminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

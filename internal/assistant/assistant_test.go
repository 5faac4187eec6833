package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubGenerator struct {
	text   string
	err    error
	model  string
	prompt string
	block  bool
}

func (s *stubGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	s.model = model
	s.prompt = prompt
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

func TestWithoutKeyReturnsUnavailable(t *testing.T) {
	svc, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer svc.Close()

	if svc.Enabled() {
		t.Fatalf("expected disabled service")
	}
	if got := svc.Summarize(context.Background(), "cardapio.pdf", "pdf"); got != SummaryNoKey {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := svc.Chat(context.Background(), nil, "oi"); got != ChatUnavailable {
		t.Fatalf("unexpected chat %q", got)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
		want string
	}{
		{name: "generated", gen: &stubGenerator{text: "  Cardápio da semana.  "}, want: "Cardápio da semana."},
		{name: "empty", gen: &stubGenerator{text: " "}, want: SummaryEmpty},
		{name: "error", gen: &stubGenerator{err: errors.New("quota")}, want: SummaryError},
		{name: "timeout", gen: &stubGenerator{block: true}, want: SummaryError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(tt.gen, Config{Model: "flash", Timeout: 20 * time.Millisecond})
			if got := svc.Summarize(context.Background(), "cardapio.pdf", "pdf"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if tt.gen.model != "flash" || !strings.Contains(tt.gen.prompt, `"cardapio.pdf" do tipo "pdf"`) {
				t.Fatalf("unexpected call %s %q", tt.gen.model, tt.gen.prompt)
			}
		})
	}
}

func TestChat(t *testing.T) {
	gen := &stubGenerator{text: "Seu holerite sai dia 5."}
	svc := newService(gen, Config{Model: "flash", ChatModel: "pro"})

	got := svc.Chat(context.Background(), []string{"Usuário: oi", "Assistente: olá"}, "quando sai o holerite?")
	if got != "Seu holerite sai dia 5." {
		t.Fatalf("unexpected answer %q", got)
	}
	if gen.model != "pro" || !strings.Contains(gen.prompt, "Usuário: oi\nAssistente: olá") || !strings.Contains(gen.prompt, "Usuário: quando sai o holerite?") {
		t.Fatalf("unexpected call %s %q", gen.model, gen.prompt)
	}

	gen.text = ""
	if got := svc.Chat(context.Background(), nil, "?"); got != ChatNotUnderstood {
		t.Fatalf("unexpected empty answer %q", got)
	}
	gen.err = errors.New("boom")
	if got := svc.Chat(context.Background(), nil, "?"); got != ChatError {
		t.Fatalf("unexpected error answer %q", got)
	}
}

package analysis

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

func TestParseResult(t *testing.T) {
	cases := []struct {
		name         string
		raw          string
		category     string
		sentiment    string
		satisfaction int
		wantErr      bool
	}{
		{
			name:         "plain json",
			raw:          `{"category": "suporte", "sentiment": "positivo", "satisfaction": 5, "summary": "Cliente atendido."}`,
			category:     "suporte",
			sentiment:    "positivo",
			satisfaction: 5,
		},
		{
			name:         "markdown fence",
			raw:          "```json\n{\"category\": \"reclamacao\", \"sentiment\": \"negativo\", \"satisfaction\": 2, \"summary\": \"x\"}\n```",
			category:     "reclamacao",
			sentiment:    "negativo",
			satisfaction: 2,
		},
		{
			name:         "bare fence",
			raw:          "```\n{\"category\": \"elogio\", \"sentiment\": \"positivo\", \"satisfaction\": 4, \"summary\": \"x\"}\n```",
			category:     "elogio",
			sentiment:    "positivo",
			satisfaction: 4,
		},
		{
			name:         "unknown category falls back",
			raw:          `{"category": "vendas_upsell", "sentiment": "alegre", "satisfaction": 4, "summary": "x"}`,
			category:     "outro",
			sentiment:    "neutro",
			satisfaction: 4,
		},
		{
			name:         "satisfaction clamped high",
			raw:          `{"category": "suporte", "sentiment": "neutro", "satisfaction": 11, "summary": "x"}`,
			category:     "suporte",
			sentiment:    "neutro",
			satisfaction: 5,
		},
		{
			name:         "satisfaction missing defaults to 3",
			raw:          `{"category": "suporte", "sentiment": "neutro", "summary": "x"}`,
			category:     "suporte",
			sentiment:    "neutro",
			satisfaction: 3,
		},
		{
			name:         "satisfaction as string",
			raw:          `{"category": "suporte", "sentiment": "neutro", "satisfaction": "4", "summary": "x"}`,
			category:     "suporte",
			sentiment:    "neutro",
			satisfaction: 4,
		},
		{
			name:    "not json",
			raw:     "Desculpe, não consigo analisar.",
			wantErr: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := parseResult(c.raw)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResult: %v", err)
			}
			if got.Category != c.category || got.Sentiment != c.sentiment || got.Satisfaction != c.satisfaction {
				t.Errorf("got %s/%s/%d, want %s/%s/%d",
					got.Category, got.Sentiment, got.Satisfaction,
					c.category, c.sentiment, c.satisfaction)
			}
		})
	}
}

func TestBuildTranscript(t *testing.T) {
	messages := []entity.Message{
		{Direction: entity.DirectionInbound, Content: "Oi, preciso de ajuda"},
		{Direction: entity.DirectionOutbound, Content: "Olá! Como posso ajudar?"},
		{Direction: entity.DirectionInbound, Content: ""},
		{Direction: entity.DirectionInbound, Content: "Meu boleto não abre"},
	}
	got := buildTranscript(messages)
	want := "[Cliente]: Oi, preciso de ajuda\n[Atendente]: Olá! Como posso ajudar?\n[Cliente]: Meu boleto não abre"
	if got != want {
		t.Errorf("transcript:\n%s\nwant:\n%s", got, want)
	}
}

type analysisStore struct {
	conv     *entity.Conversation
	messages []entity.Message

	savedCategory     string
	savedSentiment    string
	savedSatisfaction int
	savedSummary      string
	saved             bool
}

func (s *analysisStore) GetConversation(id primitive.ObjectID) (*entity.Conversation, error) {
	return s.conv, nil
}

func (s *analysisStore) ConversationMessages(conversationID primitive.ObjectID) ([]entity.Message, error) {
	return s.messages, nil
}

func (s *analysisStore) SetAnalysis(id primitive.ObjectID, category, sentiment string, satisfaction int, summary string, at time.Time) error {
	s.saved = true
	s.savedCategory = category
	s.savedSentiment = sentiment
	s.savedSatisfaction = satisfaction
	s.savedSummary = summary
	return nil
}

type stubLLM struct {
	answer string
	calls  int
	prompt string
}

func (l *stubLLM) Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error) {
	l.calls++
	l.prompt = userMsg
	return l.answer, nil
}

func TestAnalyzeStoresResult(t *testing.T) {
	store := &analysisStore{
		conv: &entity.Conversation{ID: primitive.NewObjectID()},
		messages: []entity.Message{
			{Direction: entity.DirectionInbound, Content: "meu app não abre"},
			{Direction: entity.DirectionOutbound, Content: "vamos resolver"},
		},
	}
	llm := &stubLLM{answer: `{"category": "problema_tecnico", "sentiment": "negativo", "satisfaction": 3, "summary": "Problema no app."}`}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := svc.Analyze(store.conv.ID); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !store.saved {
		t.Fatal("analysis not stored")
	}
	if store.savedCategory != "problema_tecnico" || store.savedSentiment != "negativo" {
		t.Errorf("stored %s/%s", store.savedCategory, store.savedSentiment)
	}
	if !strings.Contains(llm.prompt, "[Cliente]: meu app não abre") {
		t.Error("prompt missing transcript")
	}
}

func TestAnalyzeSkipsEmptyConversation(t *testing.T) {
	store := &analysisStore{
		conv:     &entity.Conversation{ID: primitive.NewObjectID()},
		messages: []entity.Message{{Direction: entity.DirectionInbound, Type: entity.TypeImage}},
	}
	llm := &stubLLM{answer: "{}"}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := svc.Analyze(store.conv.ID); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if llm.calls != 0 {
		t.Error("model called for empty transcript")
	}
	if store.saved {
		t.Error("analysis stored for empty transcript")
	}
}

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/sl"
)

// Closed vocabularies; anything the model invents falls back to the
// neutral value.
var validCategories = map[string]bool{
	"reclamacao":       true,
	"problema_tecnico": true,
	"nova_contratacao": true,
	"suporte":          true,
	"elogio":           true,
	"informacao":       true,
	"outro":            true,
}

var validSentiments = map[string]bool{
	"positivo": true,
	"neutro":   true,
	"negativo": true,
}

const systemPrompt = `Você é um assistente especialista em análise de conversas de atendimento ao cliente.
Analise a conversa fornecida e retorne APENAS um objeto JSON válido, sem markdown, sem explicações.
Não inclua nenhum texto fora do JSON.`

const userPromptTemplate = `Analise a seguinte conversa de atendimento ao cliente no WhatsApp.

Retorne APENAS um JSON válido com os campos:
- "category": uma das opções exatas: reclamacao, problema_tecnico, nova_contratacao, suporte, elogio, informacao, outro
- "sentiment": "positivo", "neutro" ou "negativo"
- "satisfaction": inteiro de 1 a 5 (1=muito insatisfeito, 5=muito satisfeito). Se não há como avaliar, use 3.
- "summary": resumo em 1-2 frases em português descrevendo o atendimento e seu desfecho

Categorias:
- reclamacao: cliente reclamando de produto/serviço
- problema_tecnico: falha técnica, erro, bug
- nova_contratacao: interesse em contratar, comprar, assinar
- suporte: dúvida ou pedido de ajuda geral
- elogio: feedback positivo, agradecimento
- informacao: pedido de informações sem reclamação
- outro: não se encaixa nas anteriores

Conversa:
%s`

type Storage interface {
	GetConversation(id primitive.ObjectID) (*entity.Conversation, error)
	ConversationMessages(conversationID primitive.ObjectID) ([]entity.Message, error)
	SetAnalysis(id primitive.ObjectID, category, sentiment string, satisfaction int, summary string, at time.Time) error
}

type Completer interface {
	Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error)
}

type Service struct {
	db  Storage
	llm Completer
	log *slog.Logger
}

func NewService(db Storage, llm Completer, logger *slog.Logger) *Service {
	return &Service{
		db:  db,
		llm: llm,
		log: logger.With(sl.Module("analysis")),
	}
}

// AnalyzeAsync runs Analyze in the background, the way API handlers want it.
func (s *Service) AnalyzeAsync(id primitive.ObjectID) {
	go func() {
		if err := s.Analyze(id); err != nil {
			s.log.With(slog.String("conversation", id.Hex()), sl.Err(err)).Error("conversation analysis")
		}
	}()
}

// Analyze classifies one conversation and stores the result on it.
func (s *Service) Analyze(id primitive.ObjectID) error {
	conv, err := s.db.GetConversation(id)
	if err != nil {
		return err
	}
	if conv == nil {
		return nil
	}

	messages, err := s.db.ConversationMessages(id)
	if err != nil {
		return err
	}

	transcript := buildTranscript(messages)
	if strings.TrimSpace(transcript) == "" {
		s.log.With(slog.String("conversation", id.Hex())).Info("conversation without text, analysis skipped")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	raw, err := s.llm.Complete(ctx, systemPrompt, fmt.Sprintf(userPromptTemplate, transcript), 512)
	if err != nil {
		return err
	}

	result, err := parseResult(raw)
	if err != nil {
		return fmt.Errorf("parsing analysis result: %w", err)
	}

	if err := s.db.SetAnalysis(id, result.Category, result.Sentiment, result.Satisfaction, result.Summary, time.Now().UTC()); err != nil {
		return err
	}

	s.log.With(
		slog.String("conversation", id.Hex()),
		slog.String("category", result.Category),
		slog.String("sentiment", result.Sentiment),
		slog.Int("satisfaction", result.Satisfaction),
	).Info("conversation analyzed")
	return nil
}

func buildTranscript(messages []entity.Message) string {
	var lines []string
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		role := "Cliente"
		if m.Direction == entity.DirectionOutbound {
			role = "Atendente"
		}
		lines = append(lines, fmt.Sprintf("[%s]: %s", role, m.Content))
	}
	return strings.Join(lines, "\n")
}

type Result struct {
	Category     string `json:"category"`
	Sentiment    string `json:"sentiment"`
	Satisfaction int    `json:"satisfaction"`
	Summary      string `json:"summary"`
}

// parseResult decodes the model's JSON answer, tolerating a markdown code
// fence around it, and forces every field into its closed vocabulary.
func parseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		parts := strings.SplitN(raw, "```", 3)
		if len(parts) >= 2 {
			raw = parts[1]
		}
		raw = strings.TrimPrefix(raw, "json")
		raw = strings.TrimSpace(raw)
	}

	var loose struct {
		Category     string          `json:"category"`
		Sentiment    string          `json:"sentiment"`
		Satisfaction json.RawMessage `json:"satisfaction"`
		Summary      string          `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil, err
	}

	result := &Result{
		Category:     loose.Category,
		Sentiment:    loose.Sentiment,
		Satisfaction: 3,
		Summary:      loose.Summary,
	}
	if !validCategories[result.Category] {
		result.Category = "outro"
	}
	if !validSentiments[result.Sentiment] {
		result.Sentiment = "neutro"
	}

	var n int
	if err := json.Unmarshal(loose.Satisfaction, &n); err == nil {
		result.Satisfaction = n
	} else {
		var sstr string
		if err := json.Unmarshal(loose.Satisfaction, &sstr); err == nil {
			fmt.Sscanf(sstr, "%d", &n)
			if n != 0 {
				result.Satisfaction = n
			}
		}
	}
	if result.Satisfaction < 1 {
		result.Satisfaction = 1
	}
	if result.Satisfaction > 5 {
		result.Satisfaction = 5
	}

	if runes := []rune(result.Summary); len(runes) > 500 {
		result.Summary = string(runes[:500])
	}
	return result, nil
}

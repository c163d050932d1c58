package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/sl"
)

type Storage interface {
	GetConversation(id primitive.ObjectID) (*entity.Conversation, error)
	ListTeams(instanceID primitive.ObjectID) ([]entity.Team, error)
	FirstInboundTexts(conversationID primitive.ObjectID, limit int64) ([]entity.Message, error)
	SetConversationTeam(id, teamID primitive.ObjectID) (bool, error)
}

type Completer interface {
	Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error)
}

// Service assigns a team to freshly opened conversations based on the
// contact's first messages. Best effort: any failure leaves the
// conversation unrouted and is never retried.
type Service struct {
	db  Storage
	llm Completer
	log *slog.Logger
}

func NewService(db Storage, llm Completer, logger *slog.Logger) *Service {
	return &Service{
		db:  db,
		llm: llm,
		log: logger.With(sl.Module("routing")),
	}
}

// RouteConversation runs the routing attempt in the background so ingest
// never waits on the model.
func (s *Service) RouteConversation(id primitive.ObjectID) {
	go s.route(id)
}

func (s *Service) route(id primitive.ObjectID) {
	conv, err := s.db.GetConversation(id)
	if err != nil {
		s.log.With(slog.String("conversation", id.Hex()), sl.Err(err)).Error("routing lookup")
		return
	}
	if conv == nil || !conv.TeamID.IsZero() {
		// Already routed (or gone); team assignment is write-once.
		return
	}

	teams, err := s.db.ListTeams(conv.InstanceID)
	if err != nil {
		s.log.With(sl.Err(err)).Error("routing teams lookup")
		return
	}
	if len(teams) == 0 {
		return
	}

	messages, err := s.db.FirstInboundTexts(id, 3)
	if err != nil {
		s.log.With(sl.Err(err)).Error("routing messages lookup")
		return
	}
	var parts []string
	for _, m := range messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	firstText := strings.TrimSpace(strings.Join(parts, " "))
	if firstText == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	answer, err := s.llm.Complete(ctx, "", buildPrompt(firstText, teams), 50)
	if err != nil {
		s.log.With(slog.String("conversation", id.Hex()), sl.Err(err)).Error("routing completion")
		return
	}

	team := matchTeam(answer, teams)
	if team == nil {
		s.log.With(
			slog.String("conversation", id.Hex()),
			slog.String("answer", answer),
		).Info("no team matched routing answer")
		return
	}

	set, err := s.db.SetConversationTeam(id, team.ID)
	if err != nil {
		s.log.With(sl.Err(err)).Error("routing team assignment")
		return
	}
	if set {
		s.log.With(
			slog.String("conversation", id.Hex()),
			slog.String("team", team.Name),
		).Info("conversation routed")
	}
}

func buildPrompt(firstMessage string, teams []entity.Team) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mensagem do cliente: %q\n\nEquipes disponíveis:\n", firstMessage)
	for _, t := range teams {
		desc := t.Description
		if desc == "" {
			desc = "sem descrição"
		}
		fmt.Fprintf(&b, "- %s: %s", t.Name, desc)
		if t.Keywords != "" {
			fmt.Fprintf(&b, " (palavras-chave: %s)", t.Keywords)
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nQual equipe deve atender este cliente? " +
		"Responda apenas com o nome exato da equipe, sem pontuação ou explicação.")
	return b.String()
}

// matchTeam resolves the model's answer against the configured teams. An
// exact case-insensitive name match wins over the looser substring check;
// within each pass the first team in query order takes it.
func matchTeam(answer string, teams []entity.Team) *entity.Team {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	if normalized == "" {
		return nil
	}

	for i := range teams {
		if strings.ToLower(teams[i].Name) == normalized {
			return &teams[i]
		}
	}
	for i := range teams {
		name := strings.ToLower(teams[i].Name)
		if strings.Contains(normalized, name) || strings.Contains(name, normalized) {
			return &teams[i]
		}
	}
	return nil
}

package routing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

func teamSet() []entity.Team {
	return []entity.Team{
		{ID: primitive.NewObjectID(), Name: "Suporte"},
		{ID: primitive.NewObjectID(), Name: "Suporte Avançado"},
		{ID: primitive.NewObjectID(), Name: "Vendas"},
	}
}

func TestMatchTeam(t *testing.T) {
	teams := teamSet()
	cases := []struct {
		name   string
		answer string
		want   string
	}{
		{"exact", "Vendas", "Vendas"},
		{"exact case insensitive", "vendas", "Vendas"},
		{"exact beats substring order", "Suporte Avançado", "Suporte Avançado"},
		{"answer contains name", "A equipe Vendas deve atender", "Vendas"},
		{"name contains answer", "avançado", "Suporte Avançado"},
		{"substring first in query order", "Suporte mesmo", "Suporte"},
		{"trailing punctuation", "vendas.", "Vendas"},
		{"no match", "Financeiro", ""},
		{"empty", "   ", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := matchTeam(c.answer, teams)
			if c.want == "" {
				if got != nil {
					t.Errorf("matched %q, want none", got.Name)
				}
				return
			}
			if got == nil || got.Name != c.want {
				t.Errorf("matched %v, want %q", got, c.want)
			}
		})
	}
}

type routeStore struct {
	conv     *entity.Conversation
	teams    []entity.Team
	messages []entity.Message
	setTeam  primitive.ObjectID
}

func (s *routeStore) GetConversation(id primitive.ObjectID) (*entity.Conversation, error) {
	return s.conv, nil
}

func (s *routeStore) ListTeams(instanceID primitive.ObjectID) ([]entity.Team, error) {
	return s.teams, nil
}

func (s *routeStore) FirstInboundTexts(conversationID primitive.ObjectID, limit int64) ([]entity.Message, error) {
	if int64(len(s.messages)) > limit {
		return s.messages[:limit], nil
	}
	return s.messages, nil
}

func (s *routeStore) SetConversationTeam(id, teamID primitive.ObjectID) (bool, error) {
	if !s.conv.TeamID.IsZero() {
		return false, nil
	}
	s.conv.TeamID = teamID
	s.setTeam = teamID
	return true, nil
}

type stubLLM struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (l *stubLLM) Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error) {
	l.calls++
	l.prompt = userMsg
	return l.answer, l.err
}

func newRouteStore(teams []entity.Team) *routeStore {
	return &routeStore{
		conv: &entity.Conversation{
			ID:         primitive.NewObjectID(),
			InstanceID: primitive.NewObjectID(),
			Status:     entity.StatusOpen,
		},
		teams: teams,
		messages: []entity.Message{
			{Content: "Oi, meu pedido não chegou", Direction: entity.DirectionInbound},
		},
	}
}

func TestRouteAssignsTeam(t *testing.T) {
	teams := teamSet()
	store := newRouteStore(teams)
	llm := &stubLLM{answer: "Suporte"}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc.route(store.conv.ID)

	if store.setTeam != teams[0].ID {
		t.Errorf("assigned team %v, want Suporte", store.setTeam)
	}
	if !strings.Contains(llm.prompt, "meu pedido não chegou") {
		t.Error("prompt missing first message")
	}
	if !strings.Contains(llm.prompt, "Vendas") {
		t.Error("prompt missing team listing")
	}
}

func TestRouteWriteOnce(t *testing.T) {
	teams := teamSet()
	store := newRouteStore(teams)
	store.conv.TeamID = teams[2].ID
	llm := &stubLLM{answer: "Suporte"}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc.route(store.conv.ID)

	if llm.calls != 0 {
		t.Error("routed a conversation that already had a team")
	}
	if store.conv.TeamID != teams[2].ID {
		t.Error("team assignment overwritten")
	}
}

func TestRouteLLMFailureNonFatal(t *testing.T) {
	store := newRouteStore(teamSet())
	llm := &stubLLM{err: errors.New("upstream down")}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc.route(store.conv.ID)

	if !store.conv.TeamID.IsZero() {
		t.Error("team assigned despite failure")
	}
}

func TestRouteNoTeamsConfigured(t *testing.T) {
	store := newRouteStore(nil)
	llm := &stubLLM{answer: "Suporte"}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc.route(store.conv.ID)

	if llm.calls != 0 {
		t.Error("model called with no teams configured")
	}
}

func TestRouteNoInboundText(t *testing.T) {
	store := newRouteStore(teamSet())
	store.messages = nil
	llm := &stubLLM{answer: "Suporte"}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc.route(store.conv.ID)

	if llm.calls != 0 {
		t.Error("model called without inbound text")
	}
}

package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/period"
)

type pipeStore struct {
	convs      []entity.Conversation
	attendants map[primitive.ObjectID]*entity.Attendant

	facts       map[primitive.ObjectID]*entity.ConversationFact
	contactRows []entity.ContactAgentWeek
	attWeeks    []*entity.AttendantWeek
}

func newPipeStore() *pipeStore {
	return &pipeStore{
		attendants: make(map[primitive.ObjectID]*entity.Attendant),
		facts:      make(map[primitive.ObjectID]*entity.ConversationFact),
	}
}

func (s *pipeStore) ConversationsOpenedSince(instanceID primitive.ObjectID, since time.Time) ([]entity.Conversation, error) {
	var out []entity.Conversation
	for _, c := range s.convs {
		if c.InstanceID == instanceID && !c.IsGroup && !c.OpenedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *pipeStore) GetAttendant(id primitive.ObjectID) (*entity.Attendant, error) {
	return s.attendants[id], nil
}

func (s *pipeStore) ReplaceConversationFact(fact *entity.ConversationFact) error {
	copied := *fact
	s.facts[fact.ConversationID] = &copied
	return nil
}

func (s *pipeStore) FactsForWeek(instanceID primitive.ObjectID, week time.Time, assignedOnly bool) ([]entity.ConversationFact, error) {
	var out []entity.ConversationFact
	for _, f := range s.facts {
		if f.InstanceID != instanceID || !f.PeriodWeek.Equal(week) {
			continue
		}
		if assignedOnly && f.AttendantID.IsZero() {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func (s *pipeStore) ReplaceContactAgentWeeks(instanceID primitive.ObjectID, week time.Time, rows []entity.ContactAgentWeek) error {
	var kept []entity.ContactAgentWeek
	for _, r := range s.contactRows {
		if r.InstanceID == instanceID && r.PeriodWeek.Equal(week) {
			continue
		}
		kept = append(kept, r)
	}
	s.contactRows = append(kept, rows...)
	return nil
}

func (s *pipeStore) UpsertAttendantWeek(row *entity.AttendantWeek) error {
	for _, existing := range s.attWeeks {
		if existing.AttendantID == row.AttendantID && existing.PeriodWeek.Equal(row.PeriodWeek) {
			summary, generatedAt := existing.LLMSummary, existing.GeneratedAt
			*existing = *row
			existing.LLMSummary = summary
			existing.GeneratedAt = generatedAt
			return nil
		}
	}
	copied := *row
	s.attWeeks = append(s.attWeeks, &copied)
	return nil
}

func (s *pipeStore) AttendantWeeks(instanceID primitive.ObjectID, week time.Time) ([]entity.AttendantWeek, error) {
	var out []entity.AttendantWeek
	for _, r := range s.attWeeks {
		if r.InstanceID == instanceID && r.PeriodWeek.Equal(week) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *pipeStore) SetAttendantWeekSummary(attendantID primitive.ObjectID, week time.Time, summary string, at time.Time) error {
	for _, r := range s.attWeeks {
		if r.AttendantID == attendantID && r.PeriodWeek.Equal(week) {
			r.LLMSummary = summary
			r.GeneratedAt = &at
			return nil
		}
	}
	return fmt.Errorf("attendant week not found")
}

type stubSummarizer struct {
	answer  string
	failFor map[string]bool
	calls   int
}

func (l *stubSummarizer) Complete(ctx context.Context, systemMsg, userMsg string, maxTokens int) (string, error) {
	l.calls++
	for name := range l.failFor {
		if strings.Contains(userMsg, name) {
			return "", errors.New("upstream timeout")
		}
	}
	return l.answer, nil
}

func floatPtr(v float64) *float64 { return &v }

// seedWeek populates one attendant with 3 resolved and 1 abandoned
// conversation inside the current week.
func seedWeek(store *pipeStore, instanceID primitive.ObjectID) primitive.ObjectID {
	attID := primitive.NewObjectID()
	store.attendants[attID] = &entity.Attendant{
		ID:         attID,
		Name:       "Ana",
		Role:       entity.RoleAgent,
		InstanceID: instanceID,
		Active:     true,
	}

	opened := period.WeekStart(time.Now().UTC()).Add(time.Hour)
	resolved := opened.Add(30 * time.Minute)

	specs := []struct {
		status       string
		firstResp    *float64
		satisfaction int
		category     string
	}{
		{entity.StatusResolved, floatPtr(42), 5, "suporte"},
		{entity.StatusResolved, floatPtr(600), 4, "suporte"},
		{entity.StatusResolved, floatPtr(2000), 0, "reclamacao"},
		{entity.StatusAbandoned, nil, 0, ""},
	}
	for i, sp := range specs {
		conv := entity.Conversation{
			ID:                   primitive.NewObjectID(),
			ContactPhone:         fmt.Sprintf("55119999000%d", i),
			AttendantID:          attID,
			InstanceID:           instanceID,
			Status:               sp.status,
			OpenedAt:             opened,
			LastMessageAt:        opened,
			FirstResponseSeconds: sp.firstResp,
			InboundCount:         3,
			OutboundCount:        2,
			AnalysisCategory:     sp.category,
			AnalysisSatisfaction: sp.satisfaction,
		}
		if sp.status == entity.StatusResolved {
			r := resolved
			conv.ResolvedAt = &r
		}
		store.convs = append(store.convs, conv)
	}
	return attID
}

func TestPipelineEndToEnd(t *testing.T) {
	store := newPipeStore()
	instanceID := primitive.NewObjectID()
	seedWeek(store, instanceID)

	llm := &stubSummarizer{answer: "Parágrafo um.\n\nParágrafo dois.\n\nParágrafo três."}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := svc.GenerateAll(instanceID, 7)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}

	if result.ConversationsProcessed != 4 {
		t.Errorf("conversations processed = %d, want 4", result.ConversationsProcessed)
	}
	if result.AttendantsAggregated != 1 {
		t.Errorf("attendants aggregated = %d, want 1", result.AttendantsAggregated)
	}
	if result.AttendantsSummarized != 1 {
		t.Errorf("attendants summarized = %d, want 1", result.AttendantsSummarized)
	}

	if len(store.attWeeks) != 1 {
		t.Fatalf("attendant weeks = %d, want 1", len(store.attWeeks))
	}
	row := store.attWeeks[0]
	if row.TotalConversations != 4 || row.ResolvedConversations != 3 || row.AbandonedConversations != 1 {
		t.Errorf("counts = %d/%d/%d", row.TotalConversations, row.ResolvedConversations, row.AbandonedConversations)
	}
	if row.ResolutionRate != 75.0 {
		t.Errorf("resolution rate = %v, want 75.0", row.ResolutionRate)
	}
	if row.Sla5MinRate != 33.3 || row.Sla15MinRate != 66.7 || row.Sla30MinRate != 100.0 {
		t.Errorf("sla rates = %v/%v/%v", row.Sla5MinRate, row.Sla15MinRate, row.Sla30MinRate)
	}
	if row.AvgSatisfaction == nil || *row.AvgSatisfaction != 4.5 {
		t.Errorf("avg satisfaction = %v, want 4.5", row.AvgSatisfaction)
	}
	if !strings.HasPrefix(row.TopCategories, `{"suporte": 2`) {
		t.Errorf("top categories = %q", row.TopCategories)
	}
	if row.LLMSummary == "" {
		t.Error("narrative not stored")
	}
	if row.TotalMessagesSent != 8 || row.TotalMessagesReceived != 12 {
		t.Errorf("message totals = %d/%d", row.TotalMessagesSent, row.TotalMessagesReceived)
	}
}

func TestPipelineIdempotent(t *testing.T) {
	store := newPipeStore()
	instanceID := primitive.NewObjectID()
	seedWeek(store, instanceID)

	llm := &stubSummarizer{answer: "Resumo."}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := svc.GenerateAll(instanceID, 7)
	if err != nil {
		t.Fatal(err)
	}
	firstAtt := *store.attWeeks[0]
	firstContacts := append([]entity.ContactAgentWeek(nil), store.contactRows...)

	second, err := svc.GenerateAll(instanceID, 7)
	if err != nil {
		t.Fatal(err)
	}

	if first.ConversationsProcessed != second.ConversationsProcessed {
		t.Errorf("run sizes differ: %d vs %d", first.ConversationsProcessed, second.ConversationsProcessed)
	}
	if len(store.facts) != 4 {
		t.Errorf("fact rows = %d, want 4 after rerun", len(store.facts))
	}
	if len(store.contactRows) != 4 {
		t.Errorf("contact rows = %d, want 4 after rerun", len(store.contactRows))
	}
	if len(store.attWeeks) != 1 {
		t.Errorf("attendant weeks = %d, want 1 after rerun", len(store.attWeeks))
	}

	// Reruns over the same data must reproduce the rows exactly; only the
	// bookkeeping timestamps may move.
	secondAtt := *store.attWeeks[0]
	firstAtt.LastUpdated, secondAtt.LastUpdated = time.Time{}, time.Time{}
	firstAtt.GeneratedAt, secondAtt.GeneratedAt = nil, nil
	if !reflect.DeepEqual(firstAtt, secondAtt) {
		t.Errorf("attendant rollup changed across reruns:\nfirst:  %+v\nsecond: %+v", firstAtt, secondAtt)
	}

	for _, want := range firstContacts {
		var got *entity.ContactAgentWeek
		for i := range store.contactRows {
			row := store.contactRows[i]
			if row.ContactPhone == want.ContactPhone && row.AttendantID == want.AttendantID {
				got = &store.contactRows[i]
				break
			}
		}
		if got == nil {
			t.Errorf("contact row %s lost on rerun", want.ContactPhone)
			continue
		}
		a, b := want, *got
		a.ID, b.ID = primitive.NilObjectID, primitive.NilObjectID
		a.LastUpdated, b.LastUpdated = time.Time{}, time.Time{}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("contact rollup %s changed across reruns:\nfirst:  %+v\nsecond: %+v", want.ContactPhone, a, b)
		}
	}
}

func TestNarrativeSurvivesFailedRerun(t *testing.T) {
	store := newPipeStore()
	instanceID := primitive.NewObjectID()
	seedWeek(store, instanceID)

	good := &stubSummarizer{answer: "Resumo original."}
	svc := NewService(store, good, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := svc.GenerateAll(instanceID, 7); err != nil {
		t.Fatal(err)
	}

	bad := &stubSummarizer{failFor: map[string]bool{"Ana": true}}
	svc = NewService(store, bad, slog.New(slog.NewTextHandler(io.Discard, nil)))
	result, err := svc.GenerateAll(instanceID, 7)
	if err != nil {
		t.Fatalf("pipeline must not fail on a summarizer error: %v", err)
	}
	if result.AttendantsSummarized != 0 {
		t.Errorf("summarized = %d, want 0", result.AttendantsSummarized)
	}
	if store.attWeeks[0].LLMSummary != "Resumo original." {
		t.Errorf("narrative lost: %q", store.attWeeks[0].LLMSummary)
	}
}

func TestStageFourIsolation(t *testing.T) {
	store := newPipeStore()
	instanceID := primitive.NewObjectID()
	seedWeek(store, instanceID)

	// Second attendant in the same week.
	attID := primitive.NewObjectID()
	store.attendants[attID] = &entity.Attendant{ID: attID, Name: "Bruno", Role: entity.RoleAgent, InstanceID: instanceID, Active: true}
	opened := period.WeekStart(time.Now().UTC()).Add(2 * time.Hour)
	store.convs = append(store.convs, entity.Conversation{
		ID:           primitive.NewObjectID(),
		ContactPhone: "5511988880000",
		AttendantID:  attID,
		InstanceID:   instanceID,
		Status:       entity.StatusResolved,
		OpenedAt:     opened,
		ResolvedAt:   &opened,
	})

	llm := &stubSummarizer{answer: "Resumo.", failFor: map[string]bool{"Ana": true}}
	svc := NewService(store, llm, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := svc.GenerateAll(instanceID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if result.AttendantsAggregated != 2 {
		t.Fatalf("aggregated = %d, want 2", result.AttendantsAggregated)
	}
	if result.AttendantsSummarized != 1 {
		t.Errorf("summarized = %d, want 1 (one failure isolated)", result.AttendantsSummarized)
	}
}

func TestSlaRateNoMeasurements(t *testing.T) {
	items := []*entity.ConversationFact{
		{Status: entity.StatusAbandoned},
		{Status: entity.StatusOpen},
	}
	if got := slaRate(items, 300); got != 0 {
		t.Errorf("slaRate = %v, want 0", got)
	}
}

func TestMostFrequentTieBreak(t *testing.T) {
	got := mostFrequent([]string{"suporte", "reclamacao", "reclamacao", "suporte"})
	if got != "suporte" {
		t.Errorf("mostFrequent = %q, want first-seen winner", got)
	}
	if mostFrequent(nil) != "" {
		t.Error("empty input should yield empty string")
	}
}

func TestOrderedCountsJSON(t *testing.T) {
	values := []string{"b", "a", "a", "c", "a", "b"}
	got := orderedCountsJSON(values, 2)
	want := `{"a": 3, "b": 2}`
	if got != want {
		t.Errorf("orderedCountsJSON = %q, want %q", got, want)
	}
	if orderedCountsJSON(nil, 5) != "" {
		t.Error("empty input should yield empty string")
	}
}

package report

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/period"
)

// snapshotConversations is stage 1: one fact row per non-group conversation
// opened inside the lookback window, all statuses, replaced wholesale so
// the stage can rerun at any time.
func (s *Service) snapshotConversations(instanceID primitive.ObjectID, days int) (int, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)

	convs, err := s.db.ConversationsOpenedSince(instanceID, since)
	if err != nil {
		return 0, err
	}

	attendants := make(map[primitive.ObjectID]*entity.Attendant)
	processed := 0

	for i := range convs {
		conv := &convs[i]

		fact := &entity.ConversationFact{
			ConversationID:       conv.ID,
			AttendantID:          conv.AttendantID,
			InstanceID:           instanceID,
			ContactPhone:         conv.ContactPhone,
			ContactName:          conv.ContactName,
			Status:               conv.Status,
			OpenedAt:             conv.OpenedAt,
			ResolvedAt:           conv.ResolvedAt,
			FirstResponseSeconds: conv.FirstResponseSeconds,
			InboundCount:         conv.InboundCount,
			OutboundCount:        conv.OutboundCount,
			AnalysisCategory:     conv.AnalysisCategory,
			AnalysisSentiment:    conv.AnalysisSentiment,
			AnalysisSatisfaction: conv.AnalysisSatisfaction,
			PeriodWeek:           period.WeekStart(conv.OpenedAt),
		}

		if conv.ResolvedAt != nil {
			secs := math.Max(0, conv.ResolvedAt.Sub(conv.OpenedAt).Seconds())
			fact.ResolutionSeconds = &secs
		}

		if !conv.AttendantID.IsZero() {
			att, ok := attendants[conv.AttendantID]
			if !ok {
				att, err = s.db.GetAttendant(conv.AttendantID)
				if err != nil {
					return processed, err
				}
				attendants[conv.AttendantID] = att
			}
			if att != nil {
				fact.AttendantName = att.Name
			}
		}

		if err := s.db.ReplaceConversationFact(fact); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// rollupContactWeeks is stage 2: contact x attendant aggregates for one
// week, fully recomputed from the fact rows with an assigned attendant.
func (s *Service) rollupContactWeeks(instanceID primitive.ObjectID, week time.Time) (int, error) {
	facts, err := s.db.FactsForWeek(instanceID, week, true)
	if err != nil {
		return 0, err
	}

	type pairKey struct {
		phone string
		att   primitive.ObjectID
	}
	groups := make(map[pairKey][]*entity.ConversationFact)
	var order []pairKey
	for i := range facts {
		f := &facts[i]
		if f.AttendantID.IsZero() {
			continue
		}
		key := pairKey{f.ContactPhone, f.AttendantID}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}

	rows := make([]entity.ContactAgentWeek, 0, len(order))
	for _, key := range order {
		items := groups[key]
		row := entity.ContactAgentWeek{
			ContactPhone:       key.phone,
			AttendantID:        key.att,
			InstanceID:         instanceID,
			PeriodWeek:         week,
			TotalConversations: len(items),
			DominantCategory:   mostFrequent(pick(items, func(f *entity.ConversationFact) string { return f.AnalysisCategory })),
			DominantSentiment:  mostFrequent(pick(items, func(f *entity.ConversationFact) string { return f.AnalysisSentiment })),
			LastUpdated:        time.Now().UTC(),
		}
		for _, f := range items {
			switch f.Status {
			case entity.StatusResolved:
				row.ResolvedConversations++
			case entity.StatusAbandoned:
				row.AbandonedConversations++
			}
			row.TotalMessagesIn += f.InboundCount
			row.TotalMessagesOut += f.OutboundCount
		}
		row.AvgResponseSeconds = meanOf(items, func(f *entity.ConversationFact) *float64 { return f.FirstResponseSeconds })
		row.AvgResolutionSeconds = meanOf(items, func(f *entity.ConversationFact) *float64 { return f.ResolutionSeconds })
		row.AvgSatisfaction = meanSatisfaction(items)
		rows = append(rows, row)
	}

	if err := s.db.ReplaceContactAgentWeeks(instanceID, week, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// rollupAttendantWeeks is stage 3: attendant x week aggregates. Numeric
// fields overwrite, the stored narrative survives.
func (s *Service) rollupAttendantWeeks(instanceID primitive.ObjectID, week time.Time) (int, error) {
	facts, err := s.db.FactsForWeek(instanceID, week, true)
	if err != nil {
		return 0, err
	}

	groups := make(map[primitive.ObjectID][]*entity.ConversationFact)
	var order []primitive.ObjectID
	for i := range facts {
		f := &facts[i]
		if f.AttendantID.IsZero() {
			continue
		}
		if _, ok := groups[f.AttendantID]; !ok {
			order = append(order, f.AttendantID)
		}
		groups[f.AttendantID] = append(groups[f.AttendantID], f)
	}

	processed := 0
	for _, attID := range order {
		items := groups[attID]

		name := items[0].AttendantName
		if name == "" {
			name = "Atendente " + attID.Hex()
		}
		role := entity.RoleAgent
		if att, err := s.db.GetAttendant(attID); err == nil && att != nil && att.Role != "" {
			role = att.Role
		}

		row := entity.AttendantWeek{
			AttendantID:   attID,
			AttendantName: name,
			Role:          role,
			InstanceID:    instanceID,
			PeriodWeek:    week,
			TopCategories: orderedCountsJSON(pick(items, func(f *entity.ConversationFact) string { return f.AnalysisCategory }), 5),
			TopSentiments: orderedCountsJSON(pick(items, func(f *entity.ConversationFact) string { return f.AnalysisSentiment }), 0),
		}
		for _, f := range items {
			switch f.Status {
			case entity.StatusResolved:
				row.ResolvedConversations++
			case entity.StatusAbandoned:
				row.AbandonedConversations++
			}
			row.TotalMessagesSent += f.OutboundCount
			row.TotalMessagesReceived += f.InboundCount
		}
		row.TotalConversations = len(items)
		if row.TotalConversations > 0 {
			row.ResolutionRate = round1(float64(row.ResolvedConversations) / float64(row.TotalConversations) * 100)
		}
		row.AvgFirstResponseSeconds = meanOf(items, func(f *entity.ConversationFact) *float64 { return f.FirstResponseSeconds })
		row.AvgResolutionSeconds = meanOf(items, func(f *entity.ConversationFact) *float64 { return f.ResolutionSeconds })
		row.AvgSatisfaction = meanSatisfaction(items)
		row.Sla5MinRate = slaRate(items, 300)
		row.Sla15MinRate = slaRate(items, 900)
		row.Sla30MinRate = slaRate(items, 1800)

		if err := s.db.UpsertAttendantWeek(&row); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

// slaRate is the share of conversations answered within the threshold,
// over conversations with a measured first response. No measurements means
// 0, not a division error.
func slaRate(items []*entity.ConversationFact, thresholdSecs float64) float64 {
	valid := 0
	within := 0
	for _, f := range items {
		if f.FirstResponseSeconds == nil {
			continue
		}
		valid++
		if *f.FirstResponseSeconds <= thresholdSecs {
			within++
		}
	}
	if valid == 0 {
		return 0
	}
	return round1(float64(within) / float64(valid) * 100)
}

func meanOf(items []*entity.ConversationFact, get func(*entity.ConversationFact) *float64) *float64 {
	sum := 0.0
	n := 0
	for _, f := range items {
		if v := get(f); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

func meanSatisfaction(items []*entity.ConversationFact) *float64 {
	sum := 0
	n := 0
	for _, f := range items {
		if f.AnalysisSatisfaction > 0 {
			sum += f.AnalysisSatisfaction
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := float64(sum) / float64(n)
	return &mean
}

func pick(items []*entity.ConversationFact, get func(*entity.ConversationFact) string) []string {
	var out []string
	for _, f := range items {
		if v := get(f); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// mostFrequent returns the most common value; on a tie the value seen
// first wins.
func mostFrequent(values []string) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestN := "", 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

// orderedCountsJSON renders label counts as a JSON object whose keys are
// ordered by count descending, first-seen on ties. topN <= 0 keeps all.
func orderedCountsJSON(values []string, topN int) string {
	if len(values) == 0 {
		return ""
	}
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if topN > 0 && len(order) > topN {
		order = order[:topN]
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range order {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(k)
		b.Write(key)
		b.WriteString(": ")
		n, _ := json.Marshal(counts[k])
		b.Write(n)
	}
	b.WriteByte('}')
	return b.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

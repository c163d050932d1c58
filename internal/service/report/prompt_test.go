package report

import (
	"strings"
	"testing"
	"time"

	"zapdesk/entity"
)

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, "não disponível"},
		{"zero", floatPtr(0), "não disponível"},
		{"under a minute", floatPtr(42), "42s"},
		{"minutes", floatPtr(330), "5min 30s"},
		{"hours", floatPtr(7260), "2h 1min"},
	}
	for _, c := range cases {
		if got := formatSeconds(c.in); got != c.want {
			t.Errorf("%s: formatSeconds = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFormatCountList(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"suporte": 3, "elogio": 1}`, "suporte (3x), elogio (1x)"},
		{`{}`, "–"},
		{"", "–"},
		{"not json", "–"},
	}
	for _, c := range cases {
		if got := formatCountList(c.in); got != c.want {
			t.Errorf("formatCountList(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildReportPrompt(t *testing.T) {
	week := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	row := &entity.AttendantWeek{
		AttendantName:           "Ana",
		Role:                    entity.RoleManager,
		PeriodWeek:              week,
		TotalConversations:      4,
		ResolvedConversations:   3,
		AbandonedConversations:  1,
		ResolutionRate:          75.0,
		AvgFirstResponseSeconds: floatPtr(42),
		Sla5MinRate:             33.3,
		Sla15MinRate:            66.7,
		Sla30MinRate:            100.0,
		AvgSatisfaction:         floatPtr(4.5),
		TopCategories:           `{"suporte": 2, "reclamacao": 1}`,
		TopSentiments:           `{"positivo": 2}`,
	}

	prompt := buildReportPrompt(row)

	for _, want := range []string{
		"Atendente: Ana (função: gerente)",
		"semana iniciada em 24/08/2026",
		"Conversas: 4 total | 3 resolvidas | 1 abandonadas",
		"Taxa de resolução: 75.0%",
		"Tempo médio de 1ª resposta: 42s",
		"Tempo médio de resolução: não disponível",
		"SLA respondido em até 5min: 33.3% | 15min: 66.7% | 30min: 100.0%",
		"Satisfação média do cliente: 4.5/5",
		"suporte (2x), reclamacao (1x)",
		"positivo (2x)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}
}

package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"zapdesk/entity"
)

const reportSystemPrompt = "Você é um analista de qualidade de atendimento ao cliente. " +
	"Escreva relatórios objetivos, construtivos e em português brasileiro. " +
	"Não mencione números exatos — interprete-os qualitativamente."

const reportUserTemplate = `Avalie a performance do(a) atendente abaixo com base nas métricas da semana de trabalho.
Escreva exatamente 3 parágrafos sem títulos ou marcadores:
1. Resumo geral da semana (volume, ritmo, resultado)
2. Pontos positivos e destaques de qualidade
3. Pontos de atenção e sugestões práticas de melhoria

Dados do período:
Atendente: %s (função: %s)
Semana: semana iniciada em %s
Conversas: %d total | %d resolvidas | %d abandonadas
Taxa de resolução: %.1f%%
Tempo médio de 1ª resposta: %s
Tempo médio de resolução: %s
SLA respondido em até 5min: %.1f%% | 15min: %.1f%% | 30min: %.1f%%
Satisfação média do cliente: %s
Tipos de atendimento mais frequentes: %s
Sentimentos predominantes: %s
`

func buildReportPrompt(row *entity.AttendantWeek) string {
	roleLabel := row.Role
	switch row.Role {
	case entity.RoleManager:
		roleLabel = "gerente"
	case entity.RoleAgent, "":
		roleLabel = "agente"
	}

	avgSat := "não disponível"
	if row.AvgSatisfaction != nil {
		avgSat = fmt.Sprintf("%.1f/5", *row.AvgSatisfaction)
	}

	return fmt.Sprintf(reportUserTemplate,
		row.AttendantName,
		roleLabel,
		row.PeriodWeek.Format("02/01/2006"),
		row.TotalConversations,
		row.ResolvedConversations,
		row.AbandonedConversations,
		row.ResolutionRate,
		formatSeconds(row.AvgFirstResponseSeconds),
		formatSeconds(row.AvgResolutionSeconds),
		row.Sla5MinRate,
		row.Sla15MinRate,
		row.Sla30MinRate,
		avgSat,
		formatCountList(row.TopCategories),
		formatCountList(row.TopSentiments),
	)
}

// formatSeconds humanizes a duration for the prompt. Missing or zero
// measurements read as unavailable.
func formatSeconds(secs *float64) string {
	if secs == nil || *secs <= 0 {
		return "não disponível"
	}
	s := int(*secs)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	if s < 3600 {
		return fmt.Sprintf("%dmin %ds", s/60, s%60)
	}
	return fmt.Sprintf("%dh %dmin", s/3600, (s%3600)/60)
}

// formatCountList turns the stored ordered count JSON into a readable
// "label (Nx)" list, preserving the stored order.
func formatCountList(jsonText string) string {
	if strings.TrimSpace(jsonText) == "" {
		return "–"
	}

	dec := json.NewDecoder(strings.NewReader(jsonText))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return "–"
	}

	var parts []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "–"
		}
		key, ok := keyTok.(string)
		if !ok {
			return "–"
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return "–"
		}
		parts = append(parts, fmt.Sprintf("%s (%dx)", key, count))
	}
	if len(parts) == 0 {
		return "–"
	}
	return strings.Join(parts, ", ")
}

package telegram

import (
	"strings"

	"footybot/backend/internal/localization"
	"footybot/backend/internal/models"
	"footybot/backend/internal/roster"

	"github.com/samber/lo"
)

const historyTimeLayout = "2006-01-02 15:04"

func renderPresence(loc *localization.Localizer, lang string, actor roster.Actor, result roster.PresenceResult) string {
	return loc.Format(lang, "presence_"+string(result.Presence), actor.DisplayName, result.InCount)
}

func renderClose(loc *localization.Localizer, lang string, result *roster.CloseResult) string {
	if result.NoParticipants() {
		return loc.GetString(lang, "no_participants")
	}

	lines := make([]string, 0, len(result.Teams)+1)
	lines = append(lines, loc.Format(lang, "teams_header", result.Participants, len(result.Teams)))
	for _, team := range result.Teams {
		lines = append(lines, loc.Format(lang, "team_line", team.Label, strings.Join(team.Names(), ", ")))
	}
	return strings.Join(lines, "\n")
}

func renderStatus(loc *localization.Localizer, lang string, status *roster.Status) string {
	state := loc.GetString(lang, "status_closed")
	if status.Active {
		state = loc.GetString(lang, "status_open")
	}

	names := func(list []string) string {
		if len(list) == 0 {
			return loc.GetString(lang, "status_nobody")
		}
		return strings.Join(list, ", ")
	}

	return strings.Join([]string{
		loc.Format(lang, "status_header", state),
		loc.Format(lang, "status_in", len(status.In), names(status.In)),
		loc.Format(lang, "status_out", len(status.Out), names(status.Out)),
	}, "\n")
}

func renderHistory(loc *localization.Localizer, lang string, matches []models.MatchRecord) string {
	if len(matches) == 0 {
		return loc.GetString(lang, "history_empty")
	}

	lines := lo.Map(matches, func(m models.MatchRecord, _ int) string {
		teams := lo.Map(m.Teams, func(t models.TeamRecord, _ int) string { return t.Label })
		return loc.Format(lang, "history_line", m.ClosedAt.UTC().Format(historyTimeLayout), m.Players, strings.Join(teams, " / "))
	})
	return loc.GetString(lang, "history_header") + "\n" + strings.Join(lines, "\n")
}

package ingest

import (
	"fmt"
	"strings"

	"zapdesk/entity"
)

// NormalizePhone reduces a gateway jid to a bare address: everything after
// "@" and any ":session" suffix is dropped.
func NormalizePhone(jid string) string {
	jid = strings.SplitN(jid, "@", 2)[0]
	return strings.SplitN(jid, ":", 2)[0]
}

// IsGroupJid reports whether a remoteJid addresses a group chat.
func IsGroupJid(jid string) bool {
	return strings.HasSuffix(jid, "@g.us")
}

// MessageType classifies a payload by which content variant is present,
// checked in a fixed priority order. A nil or empty payload is "other".
func MessageType(mc *entity.MessageContent) string {
	switch {
	case mc == nil:
		return entity.TypeOther
	case mc.CallLogMessage != nil:
		return entity.TypeCall
	case mc.ImageMessage != nil:
		return entity.TypeImage
	case mc.VideoMessage != nil:
		return entity.TypeVideo
	case mc.AudioMessage != nil, mc.PttMessage != nil:
		return entity.TypeAudio
	case mc.DocumentMessage != nil:
		return entity.TypeDocument
	case mc.StickerMessage != nil:
		return entity.TypeSticker
	case mc.LocationMessage != nil:
		return entity.TypeLocation
	case mc.Conversation != nil, mc.ExtendedTextMessage != nil:
		return entity.TypeText
	default:
		return entity.TypeOther
	}
}

// ExtractText returns the verbatim text of a text-kind payload, empty for
// everything else.
func ExtractText(mc *entity.MessageContent) string {
	if mc == nil {
		return ""
	}
	if mc.Conversation != nil {
		return *mc.Conversation
	}
	if mc.ExtendedTextMessage != nil {
		return mc.ExtendedTextMessage.Text
	}
	return ""
}

// LogOutcome maps a terminal callLogMessage outcome string to the shared
// outcome set. Unrecognized values count as Missed.
func LogOutcome(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CONNECTED":
		return entity.CallConnected
	case "MISSED":
		return entity.CallMissed
	case "FAILED":
		return entity.CallFailed
	case "REJECTED":
		return entity.CallRejected
	case "ACCEPTEDELSEWHERE":
		return entity.CallAcceptedElsewhere
	case "ONGOING":
		return entity.CallOngoing
	case "SILENCEDBYDND":
		return entity.CallSilencedDnd
	case "SILENCEDUNKNOWNCALLER":
		return entity.CallSilencedUnknown
	default:
		return entity.CallMissed
	}
}

// LiveOutcome maps a live call-signal status to the shared outcome set.
func LiveOutcome(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case entity.CallStateOffer:
		return entity.CallIncoming, true
	case entity.CallStateRinging:
		return entity.CallRinging, true
	case entity.CallStateAccept:
		return entity.CallConnected, true
	case entity.CallStateReject:
		return entity.CallRejected, true
	case entity.CallStateTimeout:
		return entity.CallMissed, true
	case entity.CallStateFailed:
		return entity.CallFailed, true
	default:
		return "", false
	}
}

var outcomeLabels = map[string]string{
	entity.CallConnected:         "atendida",
	entity.CallMissed:            "perdida",
	entity.CallFailed:            "falhou",
	entity.CallRejected:          "rejeitada",
	entity.CallAcceptedElsewhere: "atendida em outro dispositivo",
	entity.CallOngoing:           "em andamento",
	entity.CallSilencedDnd:       "silenciada (não perturbe)",
	entity.CallSilencedUnknown:   "silenciada (número desconhecido)",
	entity.CallIncoming:          "recebida",
	entity.CallRinging:           "tocando",
}

// CallContent synthesizes the human-readable transcript line for a call.
func CallContent(outcome string, video bool, durationSecs *int) string {
	kind := "Chamada de voz"
	if video {
		kind = "Chamada de vídeo"
	}
	label, ok := outcomeLabels[outcome]
	if !ok {
		label = strings.ToLower(outcome)
	}
	if durationSecs != nil && *durationSecs > 0 {
		return fmt.Sprintf("%s %s (%s)", kind, label, formatCallDuration(*durationSecs))
	}
	return fmt.Sprintf("%s %s", kind, label)
}

func formatCallDuration(secs int) string {
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dmin %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%dh %dmin", secs/3600, (secs%3600)/60)
}

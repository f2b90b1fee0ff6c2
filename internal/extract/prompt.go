package extract

import (
	"fmt"
	"strings"
)

const systemPromptDE = `Du zerlegst Bürgereingaben in atomare, prüfbare Aussagen für eine öffentliche Beteiligungsplattform.

REGELN:
1. Jede Aussage ist GENAU EIN Satz mit Satzschlusszeichen.
2. Keine Bewertung, keine Umformulierung der Absicht, keine Erfindungen.
3. Antworte AUSSCHLIESSLICH mit einem JSON-Array, ohne Erklärtext davor oder danach.
4. Unbekannte Felder bekommen "-" (Listen bleiben leer), niemals null.`

const systemPromptEN = `You decompose citizen submissions into atomic, checkable claims for a public deliberation platform.

RULES:
1. Every claim is EXACTLY ONE sentence with terminal punctuation.
2. No judgement, no reinterpretation of intent, no inventions.
3. Answer ONLY with a JSON array, no prose before or after.
4. Unknown fields get "-" (lists stay empty), never null.`

const claimSchema = `[{"text": "...", "sachverhalt": "...", "zeitraum": "-", "ort": "-", "zustaendigkeit": "EU|Bund|Land|Kommune|-", "betroffene": [], "messgroesse": "-", "unsicherheiten": "-", "sources": []}]`

// buildPrompt returns the system and user prompts for one extraction
// call.
func buildPrompt(text string, maxClaims int, locale string) (system, user string) {
	if strings.EqualFold(locale, "en") {
		user = fmt.Sprintf("Extract at most %d atomic claims from the following text.\nOutput schema:\n%s\n\nText:\n%s", maxClaims, claimSchema, text)
		return systemPromptEN, user
	}
	user = fmt.Sprintf("Extrahiere höchstens %d atomare Aussagen aus dem folgenden Text.\nAusgabeschema:\n%s\n\nText:\n%s", maxClaims, claimSchema, text)
	return systemPromptDE, user
}

package refine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buergerwerk/klartext/internal/model"
)

const systemPromptDE = `Du verdichtest eine Liste atomarer Aussagen für eine öffentliche Beteiligungsplattform.

AUFGABEN:
1. Fasse nahezu gleiche Aussagen zusammen.
2. Vervollständige fehlende Felder, wo der Text es hergibt; sonst bleibt "-".
3. Wähle GENAU EINE Hauptaussage (primaryIndex): die zentralste, gehaltvollste.
4. Alle übrigen Indizes gehören in draftIndexes.

Antworte AUSSCHLIESSLICH mit einem JSON-Objekt:
{"primaryIndex": 0, "claims": [...], "draftIndexes": [1, 2]}`

const systemPromptEN = `You condense a list of atomic claims for a public deliberation platform.

TASKS:
1. Merge near-duplicate claims.
2. Complete missing fields where the text supports it; otherwise keep "-".
3. Choose EXACTLY ONE primary claim (primaryIndex): the most central, highest-signal one.
4. Every remaining index goes into draftIndexes.

Answer ONLY with a JSON object:
{"primaryIndex": 0, "claims": [...], "draftIndexes": [1, 2]}`

// buildPrompt serializes the claim list into the user prompt.
func buildPrompt(claims []model.AtomicClaim, locale string) (system, user string, err error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", "", fmt.Errorf("marshal claims: %w", err)
	}

	if strings.EqualFold(locale, "en") {
		return systemPromptEN, fmt.Sprintf("Claims:\n%s", payload), nil
	}
	return systemPromptDE, fmt.Sprintf("Aussagen:\n%s", payload), nil
}

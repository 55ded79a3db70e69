// Package narrator adapts language model backends to ports.Narrator and
// provides the decorators the server stacks on top of them.
package narrator

import (
	"fmt"
	"strings"

	"axioma/internal/discernment/ports"
)

const systemPrompt = "Eres un agente de discernimiento basado en el Método Triaxial " +
	"(Fundamento–Contexto–Principio). Tu objetivo es ser claro, honesto y prudente. " +
	"No cambies el estado de decisión ni las puntuaciones: explícalos."

// BuildPrompt renders the system and user prompts for one evaluation.
func BuildPrompt(req ports.NarrationRequest) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Afirmación evaluada:\n\"\"\"%s\"\"\"\n\n", req.Affirmation)
	b.WriteString("Resultado estructurado del motor:\n")
	fmt.Fprintf(&b, "- Fundamento (F): %.3f\n", req.Fundamento)
	fmt.Fprintf(&b, "- Contexto (C): %.3f\n", req.Contexto)
	fmt.Fprintf(&b, "- Principio (P): %.3f\n", req.Principio)
	fmt.Fprintf(&b, "- Riesgo global: %.3f (tiempo %.2f, dinero %.2f, salud/relaciones %.2f, paz %.2f)\n",
		req.RiskGlobal, req.RiskTime, req.RiskMoney, req.RiskHealth, req.RiskPeace)
	fmt.Fprintf(&b, "- Estado de decisión: %s (%s)\n", req.DecisionState, req.DecisionReason)
	fmt.Fprintf(&b, "- Tema dominante: %s\n", req.DominantTheme)
	if len(req.SecondaryThemes) > 0 {
		fmt.Fprintf(&b, "- Temas secundarios: %s\n", strings.Join(req.SecondaryThemes, ", "))
	}
	if req.AgentNotes != "" {
		fmt.Fprintf(&b, "- Notas del agente:\n%s\n", req.AgentNotes)
	}
	b.WriteString("\nExplica en español, en no más de tres párrafos, qué significa este resultado ")
	b.WriteString("y qué pasos prudentes siguen. No inventes datos que no estén arriba.")
	return systemPrompt, b.String()
}

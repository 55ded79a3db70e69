package discernment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gowebpki/jcs"

	"axioma/internal/discernment/ports"
)

// DiscernmentObject is the immutable record of one evaluation. Fields are
// reachable only through accessors, and slice accessors return copies.
type DiscernmentObject struct {
	affirmation    string
	scores         AxisScores
	risk           RiskProfile
	theme          ThemeAssignment
	decision       Decision
	decisionObject string
	agentNotes     string
}

func newDiscernmentObject(f Features, scores AxisScores, risk RiskProfile, theme ThemeAssignment, d Decision, notes string) *DiscernmentObject {
	return &DiscernmentObject{
		affirmation:    f.Affirmation,
		scores:         scores,
		risk:           risk,
		theme:          ThemeAssignment{Dominant: theme.Dominant, Secondary: slices.Clone(theme.Secondary)},
		decision:       d,
		decisionObject: fmt.Sprintf("%s (theme=%s)", f.Affirmation, theme.Dominant),
		agentNotes:     notes,
	}
}

func (o *DiscernmentObject) Affirmation() string { return o.affirmation }
func (o *DiscernmentObject) Scores() AxisScores { return o.scores }
func (o *DiscernmentObject) Risk() RiskProfile { return o.risk }
func (o *DiscernmentObject) State() DecisionState { return o.decision.State }
func (o *DiscernmentObject) Reason() DecisionReason { return o.decision.Reason }
func (o *DiscernmentObject) DecisionObject() string { return o.decisionObject }
func (o *DiscernmentObject) AgentNotes() string { return o.agentNotes }
func (o *DiscernmentObject) DominantTheme() Theme { return o.theme.Dominant }
func (o *DiscernmentObject) SecondaryThemes() []Theme { return slices.Clone(o.theme.Secondary) }
func (o *DiscernmentObject) Theme() ThemeAssignment {
	return ThemeAssignment{Dominant: o.theme.Dominant, Secondary: o.SecondaryThemes()}
}

type scoresJSON struct {
	Fundamento   float64 `json:"fundamento"`
	Contexto     float64 `json:"contexto"`
	Principio    float64 `json:"principio"`
	RiesgoGlobal float64 `json:"riesgo_global"`
}

type objectJSON struct {
	Affirmation    string          `json:"affirmation"`
	Scores         scoresJSON      `json:"scores"`
	RiskProfile    RiskProfile     `json:"risk_profile"`
	DecisionState  DecisionState   `json:"decision_state"`
	Theme          ThemeAssignment `json:"theme"`
	DecisionObject string          `json:"decision_object"`
	AgentNotes     string          `json:"agent_notes"`
}

// MarshalJSON emits the canonical output shape.
func (o *DiscernmentObject) MarshalJSON() ([]byte, error) {
	secondary := o.theme.Secondary
	if secondary == nil {
		secondary = []Theme{}
	}
	return json.Marshal(objectJSON{
		Affirmation: o.affirmation,
		Scores: scoresJSON{
			Fundamento:   o.scores.Fundamento,
			Contexto:     o.scores.Contexto,
			Principio:    o.scores.Principio,
			RiesgoGlobal: o.risk.Global,
		},
		RiskProfile:    o.risk,
		DecisionState:  o.decision.State,
		Theme:          ThemeAssignment{Dominant: o.theme.Dominant, Secondary: secondary},
		DecisionObject: o.decisionObject,
		AgentNotes:     o.agentNotes,
	})
}

// Canonical returns the RFC 8785 canonical JSON form. Identical inputs
// produce byte-identical output.
func (o *DiscernmentObject) Canonical() ([]byte, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal discernment object: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize discernment object: %w", err)
	}
	return out, nil
}

// Fingerprint is the hex SHA-256 of the canonical form.
func (o *DiscernmentObject) Fingerprint() (string, error) {
	c, err := o.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(c)
	return hex.EncodeToString(sum[:]), nil
}

// Snapshot copies the record into the narrator port model.
func (o *DiscernmentObject) Snapshot() ports.NarrationRequest {
	secondary := make([]string, 0, len(o.theme.Secondary))
	for _, t := range o.theme.Secondary {
		secondary = append(secondary, string(t))
	}
	fp, _ := o.Fingerprint()
	return ports.NarrationRequest{
		Fingerprint:     fp,
		Affirmation:     o.affirmation,
		Fundamento:      o.scores.Fundamento,
		Contexto:        o.scores.Contexto,
		Principio:       o.scores.Principio,
		RiskTime:        o.risk.Time,
		RiskMoney:       o.risk.Money,
		RiskHealth:      o.risk.HealthRelationships,
		RiskPeace:       o.risk.Peace,
		RiskGlobal:      o.risk.Global,
		DecisionState:   string(o.decision.State),
		DecisionReason:  string(o.decision.Reason),
		DominantTheme:   string(o.theme.Dominant),
		SecondaryThemes: secondary,
		AgentNotes:      o.agentNotes,
	}
}

package services

import (
	"reservation-monitor/models"
	"reservation-monitor/utils"
)

// Outcome is the change-detection verdict for one (target, date)
type Outcome struct {
	NewSlots []string // current slots absent from the previous observation, in current order
	Report   bool     // a Finding should be produced
	IsNew    bool     // at least one slot was not seen before
	Update   bool     // the store entry should be replaced with the current slots
}

// Evaluate compares the current observation with the previously stored one.
//
// An empty observation never reports and never touches the store, so a slot
// that disappears stays remembered until a later non-empty observation.
func Evaluate(current, previous []string) Outcome {
	if len(current) == 0 {
		return Outcome{}
	}

	prev := utils.NewSeen(previous...)
	var newSlots []string
	for _, s := range current {
		if !prev.Has(s) {
			newSlots = append(newSlots, s)
		}
	}

	return Outcome{
		NewSlots: newSlots,
		Report:   len(newSlots) > 0 || len(previous) == 0,
		IsNew:    len(newSlots) > 0,
		Update:   true,
	}
}

// Apply runs Evaluate against state for one (target, date), updates state
// in place and returns the Finding, if any
func Apply(state *models.State, target models.Target, date string, current []string) (*models.Finding, Outcome) {
	key := models.StoreKey(target, date)
	outcome := Evaluate(current, state.Previous(key))

	if outcome.Update {
		if state.Found == nil {
			state.Found = make(map[string][]string)
		}
		state.Found[key] = append([]string(nil), current...)
	}
	if !outcome.Report {
		return nil, outcome
	}
	return &models.Finding{
		Target:   target,
		Date:     date,
		Slots:    append([]string(nil), current...),
		NewSlots: outcome.NewSlots,
		IsNew:    outcome.IsNew,
	}, outcome
}

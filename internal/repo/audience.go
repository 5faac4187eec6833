package repo

import (
	"encoding/json"
	"strings"
)

// AudienceAll é o marcador persistido que representa "todos os colaboradores".
const AudienceAll = "all"

// Audience define quem pode ver um conteúdo: todos ou um conjunto de ids.
// Persistido como targetUserIds (["all"] ou a lista de ids).
type Audience struct {
	everyone bool
	userIDs  []string
}

// Everyone cria uma audiência que alcança qualquer colaborador.
func Everyone() Audience {
	return Audience{everyone: true}
}

// SpecificUsers cria uma audiência restrita aos ids informados, sem repetições.
func SpecificUsers(ids ...string) Audience {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return Audience{userIDs: out}
}

// AudienceFromTargets interpreta a lista de alvos vinda do formulário ou do armazenamento.
// O marcador "all" prevalece sobre ids concretos.
func AudienceFromTargets(targets []string) Audience {
	for _, t := range targets {
		if strings.TrimSpace(t) == AudienceAll {
			return Everyone()
		}
	}
	return SpecificUsers(targets...)
}

// IsEveryone informa se a audiência é global.
func (a Audience) IsEveryone() bool {
	return a.everyone
}

// UserIDs devolve uma cópia dos ids alvo (vazio quando global).
func (a Audience) UserIDs() []string {
	out := make([]string, len(a.userIDs))
	copy(out, a.userIDs)
	return out
}

// Empty informa se a audiência não alcança ninguém.
func (a Audience) Empty() bool {
	return !a.everyone && len(a.userIDs) == 0
}

// Includes informa se o id informado pode ver o conteúdo.
func (a Audience) Includes(userID string) bool {
	if a.everyone {
		return true
	}
	for _, id := range a.userIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Targets devolve a forma persistida.
func (a Audience) Targets() []string {
	if a.everyone {
		return []string{AudienceAll}
	}
	return a.UserIDs()
}

func (a Audience) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Targets())
}

func (a *Audience) UnmarshalJSON(data []byte) error {
	var targets []string
	if err := json.Unmarshal(data, &targets); err != nil {
		return err
	}
	*a = AudienceFromTargets(targets)
	return nil
}

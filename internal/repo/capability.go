package repo

import (
	"encoding/json"
	"fmt"
)

// Capability é uma permissão administrativa independente.
type Capability uint8

const (
	CapCreateUsers Capability = 1 << iota
	CapCreateContent
	CapEditData
	CapDeleteData
	CapViewUsers
	CapManageAdmins
)

// AllCapabilities lista as permissões na ordem do cadastro.
var AllCapabilities = []Capability{
	CapCreateUsers,
	CapCreateContent,
	CapEditData,
	CapDeleteData,
	CapViewUsers,
	CapManageAdmins,
}

var capabilityNames = map[Capability]string{
	CapCreateUsers:   "createUsers",
	CapCreateContent: "createContent",
	CapEditData:      "editData",
	CapDeleteData:    "deleteData",
	CapViewUsers:     "viewUsers",
	CapManageAdmins:  "manageAdmins",
}

// String devolve o nome persistido da permissão.
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// ParseCapability converte o nome persistido em Capability.
func ParseCapability(name string) (Capability, bool) {
	for c, n := range capabilityNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// CapabilitySet é o conjunto fixo das seis permissões de um administrador.
// Persistido como objeto de seis booleanos.
type CapabilitySet uint8

// FullCapabilities concede todas as permissões.
func FullCapabilities() CapabilitySet {
	var set CapabilitySet
	for _, c := range AllCapabilities {
		set |= CapabilitySet(c)
	}
	return set
}

// NewCapabilitySet monta um conjunto a partir das permissões informadas.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var set CapabilitySet
	for _, c := range caps {
		set |= CapabilitySet(c)
	}
	return set
}

// Has informa se a permissão está concedida.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// Names lista as permissões concedidas.
func (s CapabilitySet) Names() []string {
	names := make([]string, 0, len(AllCapabilities))
	for _, c := range AllCapabilities {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return names
}

func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, len(AllCapabilities))
	for _, c := range AllCapabilities {
		out[c.String()] = s.Has(c)
	}
	return json.Marshal(out)
}

func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var set CapabilitySet
	for name, granted := range raw {
		c, ok := ParseCapability(name)
		if !ok || !granted {
			continue
		}
		set |= CapabilitySet(c)
	}
	*s = set
	return nil
}

package gear

import "github.com/roach88/charsheet/internal/rejection"

// Armor is the mundane description shared by mortal and artifact armor.
type Armor struct {
	Name          string      `json:"name" yaml:"name"`
	WeightClass   WeightClass `json:"weight_class" yaml:"weight_class"`
	Tags          []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	BookReference string      `json:"book_reference,omitempty" yaml:"book_reference,omitempty"`
}

// Validate checks the armor's structural fields.
func (a Armor) Validate() error {
	if a.Name == "" {
		return rejection.New(rejection.CodeNameEmpty, "armor name is required")
	}
	if !a.WeightClass.valid() {
		return rejection.Newf(rejection.CodeArmorInvalid, "unknown weight class %q", a.WeightClass).
			With("armor", a.Name)
	}
	return nil
}

// ArmorKind separates mortal and artifact armor.
type ArmorKind string

const (
	ArmorMortal   ArmorKind = "mortal"
	ArmorArtifact ArmorKind = "artifact"
)

// ArmorID identifies an owned armor.
type ArmorID struct {
	Kind ArmorKind `json:"kind" yaml:"kind"`
	Name string    `json:"name" yaml:"name"`
}

func (id ArmorID) String() string {
	return string(id.Kind) + ":" + id.Name
}

package gear

import "github.com/roach88/charsheet/internal/rejection"

// Hand selects one of the two hands.
type Hand string

const (
	MainHand Hand = "main"
	OffHand  Hand = "off"
)

// Valid reports whether h names a hand.
func (h Hand) Valid() bool {
	return h == MainHand || h == OffHand
}

// Other returns the opposite hand.
func (h Hand) Other() Hand {
	if h == MainHand {
		return OffHand
	}
	return MainHand
}

// HandState is the allocator state of a character's hands.
type HandState string

const (
	HandsEmpty     HandState = "empty"
	HandsMain      HandState = "main_hand"
	HandsOff       HandState = "off_hand"
	HandsBoth      HandState = "both"
	HandsTwoHanded HandState = "two_handed"
)

// Hands holds up to two one-handed weapons or a single two-handed weapon.
//
//	empty       Main == nil, Off == nil
//	main_hand   Main != nil, Off == nil
//	off_hand    Main == nil, Off != nil
//	both        Main != nil, Off != nil
//	two_handed  Main != nil (the two-handed weapon), Off == nil
type Hands struct {
	State HandState `json:"state" yaml:"state"`
	Main  *WeaponID `json:"main,omitempty" yaml:"main,omitempty"`
	Off   *WeaponID `json:"off,omitempty" yaml:"off,omitempty"`
}

func (h *Hands) settle() {
	switch {
	case h.State == HandsTwoHanded && h.Main != nil:
	case h.Main != nil && h.Off != nil:
		h.State = HandsBoth
	case h.Main != nil:
		h.State = HandsMain
	case h.Off != nil:
		h.State = HandsOff
	default:
		h.State = HandsEmpty
	}
}

func (h Hands) validate() error {
	ok := false
	switch h.State {
	case "", HandsEmpty:
		ok = h.Main == nil && h.Off == nil
	case HandsMain:
		ok = h.Main != nil && h.Off == nil
	case HandsOff:
		ok = h.Main == nil && h.Off != nil
	case HandsBoth:
		ok = h.Main != nil && h.Off != nil
	case HandsTwoHanded:
		ok = h.Main != nil && h.Off == nil
	}
	if !ok {
		return rejection.Newf(rejection.CodeMemoInvalid, "hands state %q does not match occupants", h.State)
	}
	return nil
}

// Holding returns the hands occupied by id. A two-handed weapon reports both.
func (h Hands) Holding(id WeaponID) []Hand {
	var out []Hand
	if h.Main != nil && *h.Main == id {
		out = append(out, MainHand)
		if h.State == HandsTwoHanded {
			out = append(out, OffHand)
		}
	}
	if h.Off != nil && *h.Off == id {
		out = append(out, OffHand)
	}
	return out
}

// Contains reports whether id occupies any hand.
func (h Hands) Contains(id WeaponID) bool {
	return len(h.Holding(id)) > 0
}

// Occupants returns the distinct weapons in hand.
func (h Hands) Occupants() []WeaponID {
	var out []WeaponID
	if h.Main != nil {
		out = append(out, *h.Main)
	}
	if h.Off != nil && (h.Main == nil || *h.Off != *h.Main) {
		out = append(out, *h.Off)
	}
	return out
}

// EquipOneHanded places id into hand, replacing only that hand's occupant.
// A two-handed occupant is displaced entirely. The displaced weapons are
// returned; they stay owned, just unequipped.
func (h *Hands) EquipOneHanded(id WeaponID, hand Hand) []WeaponID {
	var displaced []WeaponID
	if h.State == HandsTwoHanded {
		displaced = append(displaced, *h.Main)
		h.Main = nil
	}
	w := id
	if hand == MainHand {
		if h.Main != nil {
			displaced = append(displaced, *h.Main)
		}
		h.Main = &w
	} else {
		if h.Off != nil {
			displaced = append(displaced, *h.Off)
		}
		h.Off = &w
	}
	h.State = ""
	h.settle()
	return displaced
}

// EquipTwoHanded clears both hands and holds id in them.
func (h *Hands) EquipTwoHanded(id WeaponID) []WeaponID {
	displaced := h.Occupants()
	w := id
	*h = Hands{State: HandsTwoHanded, Main: &w}
	return displaced
}

// Free empties hand if it holds exactly id. Freeing either hand of a
// two-handed weapon releases both. It reports false and changes nothing when
// the occupant does not match.
func (h *Hands) Free(id WeaponID, hand Hand) bool {
	if h.State == HandsTwoHanded {
		if h.Main != nil && *h.Main == id {
			*h = Hands{State: HandsEmpty}
			return true
		}
		return false
	}
	slot := &h.Main
	if hand == OffHand {
		slot = &h.Off
	}
	if *slot == nil || **slot != id {
		return false
	}
	*slot = nil
	h.settle()
	return true
}

// Release removes id from every hand it occupies.
func (h *Hands) Release(id WeaponID) bool {
	freed := false
	for _, hand := range []Hand{OffHand, MainHand} {
		if h.Free(id, hand) {
			freed = true
		}
	}
	return freed
}

// Clone returns a deep copy.
func (h Hands) Clone() Hands {
	out := Hands{State: h.State}
	if h.Main != nil {
		m := *h.Main
		out.Main = &m
	}
	if h.Off != nil {
		o := *h.Off
		out.Off = &o
	}
	return out
}

package combat

// Fleet is an ordered group of ships controlled by one player.
type Fleet struct {
	ID     string
	Player string
	Ships  []*Ship
}

func NewFleet(id, player string, ships ...*Ship) *Fleet {
	f := &Fleet{ID: id, Player: player}
	for _, s := range ships {
		f.AddShip(s)
	}
	return f
}

func (f *Fleet) AddShip(s *Ship) {
	s.FleetID = f.ID
	f.Ships = append(f.Ships, s)
}

func (f *Fleet) RemoveShip(s *Ship) bool {
	for i, o := range f.Ships {
		if o == s {
			f.Ships = append(f.Ships[:i], f.Ships[i+1:]...)
			s.FleetID = ""
			return true
		}
	}
	return false
}

func (f *Fleet) IsAlive() bool {
	for _, s := range f.Ships {
		if s.Alive {
			return true
		}
	}
	return false
}

func (f *Fleet) AliveShips() []*Ship {
	var out []*Ship
	for _, s := range f.Ships {
		if s.Alive {
			out = append(out, s)
		}
	}
	return out
}

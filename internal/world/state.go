package world

import "iter"

// State is the set of characters currently in-world.
// Accessed only from the game loop goroutine; no locks needed.
type State struct {
	byGUID map[GUID]*Player
	byName map[string]*Player
}

func NewState() *State {
	return &State{
		byGUID: make(map[GUID]*Player),
		byName: make(map[string]*Player),
	}
}

// AddPlayer registers p. A player already online under the same GUID is
// replaced and returned.
func (s *State) AddPlayer(p *Player) *Player {
	prev := s.byGUID[p.GUID()]
	if prev != nil {
		delete(s.byName, prev.Name())
	}
	s.byGUID[p.GUID()] = p
	s.byName[p.Name()] = p
	return prev
}

// RemovePlayer unregisters and returns the player, or nil.
func (s *State) RemovePlayer(guid GUID) *Player {
	p, ok := s.byGUID[guid]
	if !ok {
		return nil
	}
	delete(s.byGUID, guid)
	delete(s.byName, p.Name())
	return p
}

func (s *State) GetByGUID(guid GUID) *Player { return s.byGUID[guid] }

func (s *State) GetByName(name string) *Player { return s.byName[name] }

func (s *State) PlayerCount() int { return len(s.byGUID) }

// AllPlayers iterates online players in no particular order.
func (s *State) AllPlayers() iter.Seq[*Player] {
	return func(yield func(*Player) bool) {
		for _, p := range s.byGUID {
			if !yield(p) {
				return
			}
		}
	}
}

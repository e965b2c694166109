package canvas

// Store is the ordered node collection. Every committed mutation is reported
// to OnChange with a copy of the full collection.
type Store struct {
	nodes []Node
	index map[string]int

	OnChange func(nodes []Node)
}

func NewStore(nodes []Node) *Store {
	s := &Store{}
	s.set(nodes)
	return s
}

func (s *Store) set(nodes []Node) {
	s.nodes = append([]Node(nil), nodes...)
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.index[n.ID] = i
	}
}

func (s *Store) changed() {
	if s.OnChange != nil {
		s.OnChange(s.Nodes())
	}
}

// Nodes returns a copy of the collection in insertion order.
func (s *Store) Nodes() []Node {
	return append([]Node(nil), s.nodes...)
}

// Find returns the node with the given id.
func (s *Store) Find(id string) (Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Append adds nodes as a single mutation.
func (s *Store) Append(nodes ...Node) {
	if len(nodes) == 0 {
		return
	}
	for _, n := range nodes {
		s.index[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, n)
	}
	s.changed()
}

// Update replaces the node with the given id by fn's result. It reports
// whether the node existed.
func (s *Store) Update(id string, fn func(Node) Node) bool {
	if !s.UpdateQuiet(id, fn) {
		return false
	}
	s.changed()
	return true
}

// UpdateQuiet is Update without the change notification. Used for transient
// drag frames; the caller is responsible for calling Commit afterwards.
func (s *Store) UpdateQuiet(id string, fn func(Node) Node) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	updated := fn(s.nodes[i])
	updated.ID = id
	s.nodes[i] = updated
	return true
}

// Commit reports the current collection to OnChange.
func (s *Store) Commit() {
	s.changed()
}

// Remove deletes the node with the given id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.nodes = append(s.nodes[:i:i], s.nodes[i+1:]...)
	s.reindex()
	s.changed()
	return true
}

// Children returns the nodes whose ParentID is id, in insertion order.
func (s *Store) Children(id string) []Node {
	var out []Node
	for _, n := range s.nodes {
		if n.ParentID == id {
			out = append(out, n)
		}
	}
	return out
}

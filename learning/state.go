package learning

// Counter accumulates positive and negative feedback for one feature.
type Counter struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// State is the durable record of accumulated feedback statistics.
type State struct {
	FeatureStats  map[string]*Counter `json:"feature_stats"`
	TotalPositive float64             `json:"total_positive"`
	TotalNegative float64             `json:"total_negative"`
	Version       int                 `json:"version"`
}

// NewState returns an empty state at the current schema version.
func NewState() *State {
	return &State{
		FeatureStats: make(map[string]*Counter),
		Version:      1,
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	clone := &State{
		FeatureStats:  make(map[string]*Counter, len(s.FeatureStats)),
		TotalPositive: s.TotalPositive,
		TotalNegative: s.TotalNegative,
		Version:       s.Version,
	}
	for name, counter := range s.FeatureStats {
		c := *counter
		clone.FeatureStats[name] = &c
	}
	return clone
}

// counter returns the stats for a feature, creating them at zero when
// the feature is unseen.
func (s *State) counter(feature string) *Counter {
	if s.FeatureStats == nil {
		s.FeatureStats = make(map[string]*Counter)
	}
	c := s.FeatureStats[feature]
	if c == nil {
		c = &Counter{}
		s.FeatureStats[feature] = c
	}
	return c
}

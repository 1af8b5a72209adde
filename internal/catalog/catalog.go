package catalog

// Duration is one bookable length of a service and its price in euros.
type Duration struct {
	Minutes int     `json:"minutes"`
	Price   float64 `json:"price"`
}

type Service struct {
	ID             string     `json:"id"`
	TranslationKey string     `json:"translationKey"`
	Durations      []Duration `json:"durations"`
	Icon           string     `json:"icon"`
}

// NeedsDurationStep reports whether the client has to pick a duration.
func (s Service) NeedsDurationStep() bool {
	return len(s.Durations) > 1
}

// DefaultDuration returns the only offered duration, if there is exactly one.
func (s Service) DefaultDuration() (Duration, bool) {
	if len(s.Durations) != 1 {
		return Duration{}, false
	}
	return s.Durations[0], true
}

// Offers reports whether minutes is one of the service's durations.
func (s Service) Offers(minutes int) bool {
	for _, d := range s.Durations {
		if d.Minutes == minutes {
			return true
		}
	}
	return false
}

var standardDurations = []Duration{
	{Minutes: 50, Price: 75},
	{Minutes: 80, Price: 110},
	{Minutes: 110, Price: 140},
}

var services = []Service{
	{ID: "lotus-flow", TranslationKey: "lotusFlow", Durations: standardDurations, Icon: "Flower2"},
	{ID: "classic-sports", TranslationKey: "classic", Durations: standardDurations, Icon: "Dumbbell"},
	{ID: "honey-lymph", TranslationKey: "honey", Durations: standardDurations, Icon: "Droplets"},
	{ID: "prana", TranslationKey: "prana", Durations: []Duration{{Minutes: 110, Price: 140}}, Icon: "Sparkles"},
	{ID: "foot-reflex", TranslationKey: "footReflex", Durations: []Duration{{Minutes: 50, Price: 75}}, Icon: "Footprints"},
}

// All returns a copy of the catalog in display order.
func All() []Service {
	out := make([]Service, len(services))
	for i, s := range services {
		s.Durations = append([]Duration(nil), s.Durations...)
		out[i] = s
	}
	return out
}

func Find(id string) (Service, bool) {
	for _, s := range All() {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

package castles

// POI is one fortification of the dataset
type POI struct {
	ID       string  `json:"castle_id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	MapLink  string  `json:"map_link,omitempty"`
	WikiLink string  `json:"wiki_link,omitempty"`
	Visited  bool    `json:"visited"`
}

// Change is delivered to subscribers after a visited toggle
type Change struct {
	POI     POI
	Visited bool
}

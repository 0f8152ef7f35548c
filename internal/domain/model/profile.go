package model

// TopArtist is an entry of the user's ranked most-listened list. Rank 1 is
// the most listened.
type TopArtist struct {
	Name string `json:"name" validate:"required"`
	Rank int    `json:"rank" validate:"gte=1"`
}

// RelatedArtist is an artist the profile aggregator considers similar to one
// of the user's top artists.
type RelatedArtist struct {
	Name      string `json:"name" validate:"required"`
	RelatedTo string `json:"relatedTo"`
}

// UserProfile is the merged taste profile across streaming services.
// TopGenres arrives deduplicated and frequency sorted.
type UserProfile struct {
	TopArtists     []TopArtist     `json:"topArtists" validate:"dive"`
	RelatedArtists []RelatedArtist `json:"relatedArtists,omitempty" validate:"dive"`
	RecentlyPlayed []string        `json:"recentlyPlayed,omitempty"`
	TopGenres      []string        `json:"topGenres,omitempty"`
}

// Empty reports whether the profile carries no taste signal at all.
func (p *UserProfile) Empty() bool {
	return len(p.TopArtists) == 0 && len(p.RelatedArtists) == 0 &&
		len(p.RecentlyPlayed) == 0 && len(p.TopGenres) == 0
}

// Capped returns a copy of the profile with at most n top artists, keeping
// the best ranked ones in their original order.
func (p UserProfile) Capped(n int) UserProfile {
	if n <= 0 || len(p.TopArtists) <= n {
		return p
	}
	p.TopArtists = append([]TopArtist(nil), p.TopArtists[:n]...)
	return p
}

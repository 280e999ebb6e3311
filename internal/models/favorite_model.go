package models

import "time"

// Favorite point kinds on the route map.
const (
	FavoriteStart = "start"
	FavoriteDest  = "dest"
)

// Coords is a longitude/latitude pair.
type Coords struct {
	Lng float64 `json:"lng" firestore:"lng"`
	Lat float64 `json:"lat" firestore:"lat"`
}

// Favorite is a saved map point, stored under users/{uid}/favorites.
type Favorite struct {
	ID        string    `json:"id" firestore:"-"`
	Type      string    `json:"type" firestore:"type"`
	Name      string    `json:"name" firestore:"name"`
	Coords    Coords    `json:"coords" firestore:"coords"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// ProgressEntry is one read-only document from users/{uid}/progress.
type ProgressEntry struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/luminher/luminher-api/internal/models"
)

const (
	usersCollection     = "users"
	favoritesCollection = "favorites"
	progressCollection  = "progress"
)

// firestoreFavoriteRepository implements FavoriteRepository on users/{uid}/favorites.
type firestoreFavoriteRepository struct {
	client *firestore.Client
}

// NewFirestoreFavoriteRepository creates a new instance of firestoreFavoriteRepository.
func NewFirestoreFavoriteRepository(client *firestore.Client) FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

func (r *firestoreFavoriteRepository) collection(uid string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(uid).Collection(favoritesCollection)
}

// Create writes the favorite under fav.ID. CreatedAt is set by the server.
func (r *firestoreFavoriteRepository) Create(ctx context.Context, uid string, fav *models.Favorite) error {
	if _, err := r.collection(uid).Doc(fav.ID).Set(ctx, fav); err != nil {
		return fmt.Errorf("failed to save favorite '%s' for user '%s': %w", fav.ID, uid, err)
	}
	return nil
}

func (r *firestoreFavoriteRepository) ListByUser(ctx context.Context, uid string) ([]*models.Favorite, error) {
	iter := r.collection(uid).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	favorites := []*models.Favorite{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate favorites for user '%s': %w", uid, err)
		}
		var fav models.Favorite
		if err := docSnap.DataTo(&fav); err != nil {
			return nil, fmt.Errorf("failed to decode favorite '%s': %w", docSnap.Ref.ID, err)
		}
		fav.ID = docSnap.Ref.ID
		favorites = append(favorites, &fav)
	}
	return favorites, nil
}

// firestoreProgressRepository reads users/{uid}/progress.
type firestoreProgressRepository struct {
	client *firestore.Client
}

// NewFirestoreProgressRepository creates a new instance of firestoreProgressRepository.
func NewFirestoreProgressRepository(client *firestore.Client) ProgressRepository {
	return &firestoreProgressRepository{client: client}
}

func (r *firestoreProgressRepository) ListByUser(ctx context.Context, uid string) ([]models.ProgressEntry, error) {
	iter := r.client.Collection(usersCollection).Doc(uid).Collection(progressCollection).Documents(ctx)
	defer iter.Stop()

	entries := []models.ProgressEntry{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate progress for user '%s': %w", uid, err)
		}
		entries = append(entries, models.ProgressEntry{ID: docSnap.Ref.ID, Fields: docSnap.Data()})
	}
	return entries, nil
}

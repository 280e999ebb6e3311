package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/db"
	"github.com/luminher/luminher-api/internal/models"
)

const defaultFavoriteName = "Unnamed"

type favoriteService struct {
	repo   db.FavoriteRepository
	authz  *Authorizer
	clock  func() time.Time
	logger *zap.Logger
}

// NewFavoriteService creates a new FavoriteService instance.
func NewFavoriteService(repo db.FavoriteRepository, clock func() time.Time, logger *zap.Logger) FavoriteService {
	if clock == nil {
		clock = time.Now
	}
	return &favoriteService{repo: repo, authz: NewAuthorizer(nil), clock: clock, logger: logger}
}

// Save stores a favorite point for the caller. The ID is "<type>_<unix millis>".
func (s *favoriteService) Save(ctx context.Context, caller *models.Caller, req models.SaveFavoriteRequest) (string, error) {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return "", err
	}
	if err := validateRequest(req); err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultFavoriteName
	}
	fav := &models.Favorite{
		ID:     fmt.Sprintf("%s_%d", req.Type, s.clock().UnixMilli()),
		Type:   req.Type,
		Name:   name,
		Coords: models.Coords{Lng: *req.Lng, Lat: *req.Lat},
	}
	if err := s.repo.Create(ctx, caller.UID, fav); err != nil {
		return "", storageError(err)
	}
	s.logger.Debug("Favorite saved", zap.String("uid", caller.UID), zap.String("id", fav.ID))
	return fav.ID, nil
}

func (s *favoriteService) List(ctx context.Context, caller *models.Caller) ([]*models.Favorite, error) {
	if err := s.authz.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	favorites, err := s.repo.ListByUser(ctx, caller.UID)
	if err != nil {
		return nil, storageError(err)
	}
	return favorites, nil
}

type progressService struct {
	repo db.ProgressRepository
}

// NewProgressService creates a new ProgressService instance.
func NewProgressService(repo db.ProgressRepository) ProgressService {
	return &progressService{repo: repo}
}

func (s *progressService) List(ctx context.Context, uid string) ([]models.ProgressEntry, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, invalidArgument("uid is required")
	}
	entries, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, storageError(err)
	}
	return entries, nil
}

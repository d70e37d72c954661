package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chirp-app/chirp/internal/models"
)

// CheepRecord is the transfer shape handed to callers. Relationship
// traversal happens in the query, not through lazy navigation.
type CheepRecord struct {
	ID         int64     `gorm:"column:id" json:"id"`
	Text       string    `gorm:"column:text" json:"text"`
	ImageURL   string    `gorm:"column:image_url" json:"image_url,omitempty"`
	AuthorName string    `gorm:"column:author_name" json:"author"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AuthorRepository provides author-related database operations
type AuthorRepository struct {
	*Repository
}

// NewAuthorRepository creates a new author repository
func NewAuthorRepository(repo *Repository) *AuthorRepository {
	return &AuthorRepository{Repository: repo}
}

// GetByID retrieves an author by ID
func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &author, nil
}

// GetByName retrieves an author by display name
func (r *AuthorRepository) GetByName(ctx context.Context, name string) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &author, nil
}

// Create creates a new author
func (r *AuthorRepository) Create(ctx context.Context, author *models.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

// GetOrCreate returns the author with the given name, creating it with a
// derived placeholder contact address when it does not exist yet. Authors
// come into existence on their first post; there is no signup step here.
func (r *AuthorRepository) GetOrCreate(ctx context.Context, name string) (*models.Author, error) {
	author, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if author != nil {
		return author, nil
	}

	author = &models.Author{
		Name:      name,
		Email:     models.PlaceholderEmail(name),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("failed to create author %s: %w", name, err)
	}
	return author, nil
}

// CheepRepository provides cheep-related database operations
type CheepRepository struct {
	*Repository
}

// NewCheepRepository creates a new cheep repository
func NewCheepRepository(repo *Repository) *CheepRepository {
	return &CheepRepository{Repository: repo}
}

// cheepQuery selects cheeps joined with their author name. Ordering is
// newest first; ties on created_at fall back to descending id, which
// reflects insert order.
func (r *CheepRepository) cheepQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Cheep{}).
		Select("chirp_cheeps.id, chirp_cheeps.text, chirp_cheeps.image_url, chirp_cheeps.created_at, chirp_authors.name AS author_name").
		Joins("INNER JOIN chirp_authors ON chirp_authors.id = chirp_cheeps.author_id").
		Order("chirp_cheeps.created_at DESC, chirp_cheeps.id DESC")
}

// GetAll retrieves all cheeps, newest first. No pagination at this layer.
func (r *CheepRepository) GetAll(ctx context.Context) ([]CheepRecord, error) {
	var records []CheepRecord
	if err := r.cheepQuery(ctx).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetByID retrieves a single cheep, or nil when absent
func (r *CheepRepository) GetByID(ctx context.Context, id int64) (*CheepRecord, error) {
	var record CheepRecord
	err := r.cheepQuery(ctx).Where("chirp_cheeps.id = ?", id).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

// GetByAuthor retrieves all cheeps by an exact author name, newest first.
// An unknown author yields an empty result, not an error.
func (r *CheepRepository) GetByAuthor(ctx context.Context, name string) ([]CheepRecord, error) {
	var records []CheepRecord
	err := r.cheepQuery(ctx).Where("chirp_authors.name = ?", name).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Store inserts a cheep for the named author, creating the author first if
// this is their first post. Author creation and cheep insert are two
// sequential writes, not one transaction.
func (r *CheepRepository) Store(ctx context.Context, text, authorName string, createdAt time.Time, imageURL string) (*models.Cheep, error) {
	authorRepo := NewAuthorRepository(r.Repository)
	author, err := authorRepo.GetOrCreate(ctx, authorName)
	if err != nil {
		return nil, err
	}

	cheep := &models.Cheep{
		Text:      text,
		ImageURL:  imageURL,
		AuthorID:  author.ID,
		CreatedAt: createdAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(cheep).Error; err != nil {
		return nil, fmt.Errorf("failed to store cheep: %w", err)
	}
	return cheep, nil
}

// UpdateText changes the text of an existing cheep. Returns false when no
// cheep with the given id exists.
func (r *CheepRepository) UpdateText(ctx context.Context, id int64, text string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Cheep{}).
		Where("id = ?", id).
		Update("text", text)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetTimeline retrieves the union of the named author's own cheeps and the
// cheeps of everyone they follow, newest first. A single filtered query
// keeps the union duplicate-free.
func (r *CheepRepository) GetTimeline(ctx context.Context, name string) ([]CheepRecord, error) {
	authorRepo := NewAuthorRepository(r.Repository)
	author, err := authorRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return []CheepRecord{}, nil
	}

	followees := r.db.
		Model(&models.Follow{}).
		Select("followee_id").
		Where("follower_id = ?", author.ID)

	var records []CheepRecord
	err = r.cheepQuery(ctx).
		Where("chirp_cheeps.author_id = ? OR chirp_cheeps.author_id IN (?)", author.ID, followees).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FollowRepository provides follow-graph database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// resolvePair resolves follower and followee names to authors. Either may
// be nil when the name is unknown.
func (r *FollowRepository) resolvePair(ctx context.Context, followerName, followeeName string) (*models.Author, *models.Author, error) {
	authorRepo := NewAuthorRepository(r.Repository)
	follower, err := authorRepo.GetByName(ctx, followerName)
	if err != nil {
		return nil, nil, err
	}
	followee, err := authorRepo.GetByName(ctx, followeeName)
	if err != nil {
		return nil, nil, err
	}
	return follower, followee, nil
}

// Follow inserts a directed edge from follower to followee. Self-follows
// and unknown followees are silent no-ops; repeated calls leave a single
// edge. The composite primary key backstops the existence check under
// concurrent inserts.
func (r *FollowRepository) Follow(ctx context.Context, followerName, followeeName string) error {
	if followerName == followeeName {
		return nil
	}

	follower, followee, err := r.resolvePair(ctx, followerName, followeeName)
	if err != nil {
		return err
	}
	if followee == nil {
		return nil
	}
	if follower == nil {
		// A caller identity always maps to an author; create on first follow.
		authorRepo := NewAuthorRepository(r.Repository)
		follower, err = authorRepo.GetOrCreate(ctx, followerName)
		if err != nil {
			return err
		}
	}

	var existing models.Follow
	err = r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	follow := &models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge from follower to followee, if present
func (r *FollowRepository) Unfollow(ctx context.Context, followerName, followeeName string) error {
	follower, followee, err := r.resolvePair(ctx, followerName, followeeName)
	if err != nil {
		return err
	}
	if follower == nil || followee == nil {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).
		Delete(&models.Follow{}).Error
}

// IsFollowing reports whether an edge from follower to followee exists
func (r *FollowRepository) IsFollowing(ctx context.Context, followerName, followeeName string) (bool, error) {
	follower, followee, err := r.resolvePair(ctx, followerName, followeeName)
	if err != nil {
		return false, err
	}
	if follower == nil || followee == nil {
		return false, nil
	}

	var count int64
	err = r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowingNames returns the names the given author follows,
// alphabetically ordered
func (r *FollowRepository) GetFollowingNames(ctx context.Context, followerName string) ([]string, error) {
	authorRepo := NewAuthorRepository(r.Repository)
	follower, err := authorRepo.GetByName(ctx, followerName)
	if err != nil {
		return nil, err
	}
	if follower == nil {
		return []string{}, nil
	}

	var names []string
	err = r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Joins("INNER JOIN chirp_authors ON chirp_authors.id = chirp_follows.followee_id").
		Where("chirp_follows.follower_id = ?", follower.ID).
		Order("chirp_authors.name ASC").
		Pluck("chirp_authors.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// GetFollowerNames returns the names following the given author,
// alphabetically ordered
func (r *FollowRepository) GetFollowerNames(ctx context.Context, followeeName string) ([]string, error) {
	authorRepo := NewAuthorRepository(r.Repository)
	followee, err := authorRepo.GetByName(ctx, followeeName)
	if err != nil {
		return nil, err
	}
	if followee == nil {
		return []string{}, nil
	}

	var names []string
	err = r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Joins("INNER JOIN chirp_authors ON chirp_authors.id = chirp_follows.follower_id").
		Where("chirp_follows.followee_id = ?", followee.ID).
		Order("chirp_authors.name ASC").
		Pluck("chirp_authors.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

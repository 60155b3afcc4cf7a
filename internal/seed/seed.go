// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ripple/internal/models"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with generated development data.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "follows", "comments", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds users, a follow mesh, posts, likes and comments.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.createFollowMesh(users); err != nil {
		return err
	}

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}
	if err := s.createEngagement(users, posts); err != nil {
		return err
	}

	log.Printf("seeded %d users, %d posts", len(users), len(posts))
	return nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Username:     gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:        gofakeit.Email(),
		Bio:          gofakeit.Sentence(10),
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Password:     string(hash),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	if n <= 0 {
		n = 25
	}
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollowMesh gives each user a handful of random followees.
func (s *Seeder) createFollowMesh(users []*models.User) error {
	for _, follower := range users {
		count := s.rand.Intn(8)
		for i := 0; i < count; i++ {
			followee := users[s.rand.Intn(len(users))]
			if followee.ID == follower.ID {
				continue
			}
			follow := &models.Follow{
				FollowerID: follower.ID,
				FolloweeID: followee.ID,
			}
			if err := s.db.Where(follow).FirstOrCreate(follow).Error; err != nil {
				return fmt.Errorf("seed follow: %w", err)
			}
		}
	}
	return nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	if n <= 0 {
		n = 100
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.rand.Intn(len(users))]
		post := &models.Post{
			Content: gofakeit.Paragraph(1, 3, 8, "\n"),
			OwnerID: owner.ID,
			// spread creation times so feed ordering is visible
			CreatedAt: time.Now().Add(-time.Duration(s.rand.Intn(90*24)) * time.Hour),
		}
		if s.rand.Intn(3) == 0 {
			post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		}
		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) createEngagement(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		for i, likes := 0, s.rand.Intn(10); i < likes; i++ {
			liker := users[s.rand.Intn(len(users))]
			like := &models.Like{UserID: liker.ID, PostID: post.ID}
			if err := s.db.Where(like).FirstOrCreate(like).Error; err != nil {
				return fmt.Errorf("seed like: %w", err)
			}
		}

		for i, comments := 0, s.rand.Intn(5); i < comments; i++ {
			author := users[s.rand.Intn(len(users))]
			comment := &models.Comment{
				Content:  gofakeit.Sentence(12),
				PostID:   post.ID,
				AuthorID: author.ID,
			}
			if err := s.db.Create(comment).Error; err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}
	return nil
}

// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"math/rand"

	"pennypost/internal/middleware"
	"pennypost/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers      int
	NumPosts      int
	NumComments   int
	NumLikes      int
	StartingGrant int64
}

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "password123"

// Seeder populates the database with fake users, content and likes. Ledger
// balances are derived from the generated activity so the books balance:
// every user starts from the grant, pays one penny per authored item, pays
// one per like given and earns one per like received.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, rand: rand.New(rand.NewSource(42))}
}

// ClearAll wipes seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "contents", "saga_records", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	middleware.Logger.Info("Database cleared")
	return nil
}

// Run seeds users, posts, comments and likes according to the options.
func (s *Seeder) Run(opts Options) error {
	if opts.NumUsers <= 0 {
		return fmt.Errorf("at least one user is required")
	}
	if opts.StartingGrant <= 0 {
		opts.StartingGrant = 100
	}

	gofakeit.Seed(42)

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	spent := make(map[uint]int64)
	earned := make(map[uint]int64)

	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(8),
			Avatar:   gofakeit.ImageURL(128, 128),
			Pennies:  opts.StartingGrant,
		}
		if err := s.db.Create(user).Error; err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	posts := make([]*models.Content, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.rand.Intn(len(users))]
		post := &models.Content{
			Kind:   models.ContentKindPost,
			Text:   gofakeit.Sentence(s.rand.Intn(15) + 3),
			UserID: author.ID,
		}
		if s.rand.Intn(5) == 0 {
			post.ImageURL = gofakeit.ImageURL(640, 480)
		}
		if err := s.db.Create(post).Error; err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		spent[author.ID]++
		posts = append(posts, post)
	}

	if len(posts) > 0 {
		for i := 0; i < opts.NumComments; i++ {
			author := users[s.rand.Intn(len(users))]
			parent := posts[s.rand.Intn(len(posts))]
			comment := &models.Content{
				Kind:     models.ContentKindComment,
				Text:     gofakeit.Sentence(s.rand.Intn(10) + 2),
				UserID:   author.ID,
				ParentID: &parent.ID,
			}
			if err := s.db.Create(comment).Error; err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
			if err := s.db.Model(&models.Content{}).
				Where("id = ?", parent.ID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error; err != nil {
				return fmt.Errorf("bump reply count: %w", err)
			}
			spent[author.ID]++
		}

		for i := 0; i < opts.NumLikes; i++ {
			liker := users[s.rand.Intn(len(users))]
			post := posts[s.rand.Intn(len(posts))]
			if post.UserID == liker.ID {
				continue
			}
			result := s.db.Exec(
				`INSERT INTO likes (user_id, content_id, created_at) VALUES (?, ?, NOW()) ON CONFLICT (user_id, content_id) DO NOTHING`,
				liker.ID, post.ID,
			)
			if result.Error != nil {
				return fmt.Errorf("seed like: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				continue
			}
			spent[liker.ID]++
			earned[post.UserID]++
		}
	}

	// Settle the ledger from the recorded activity. A user who overspent the
	// grant is clamped by crediting the difference back, keeping balances
	// non-negative.
	for _, user := range users {
		balance := opts.StartingGrant - spent[user.ID] + earned[user.ID]
		if balance < 0 {
			balance = 0
		}
		if err := s.db.Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("pennies", balance).Error; err != nil {
			return fmt.Errorf("settle balance for user %d: %w", user.ID, err)
		}
	}

	middleware.Logger.Info("Database seeded",
		"users", len(users),
		"posts", len(posts),
		"comments", opts.NumComments,
		"likes", opts.NumLikes,
	)
	return nil
}

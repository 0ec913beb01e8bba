package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	marketmodels "github.com/anonto42/webapps/backend/internal/market/models"
	marketrepo "github.com/anonto42/webapps/backend/internal/market/repositories"
	mindmodels "github.com/anonto42/webapps/backend/internal/mindspace/models"
	mindrepo "github.com/anonto42/webapps/backend/internal/mindspace/repositories"
	papermodels "github.com/anonto42/webapps/backend/internal/papers/models"
	paperrepo "github.com/anonto42/webapps/backend/internal/papers/repositories"
	"github.com/anonto42/webapps/backend/pkg/ai"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedTimeout = 30 * time.Second

// admin is the account the seed command creates when an email is given.
type admin struct {
	Name     string
	Email    string
	Password string
	cost     int
}

func (a admin) enabled() bool { return a.Email != "" }

func (a admin) hash() (string, error) {
	cost := a.cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
	return string(h), err
}

func newSeedCmd() *cobra.Command {
	var acct admin
	cmd := &cobra.Command{
		Use:   "seed <app>",
		Short: "Insert reference data and an optional admin account",
		Long: `seed is safe to run repeatedly: existing prompts, categories and
accounts are left untouched.

  mindspace    system journaling prompts
  papers       default paper categories

Every app also gets an admin account when --admin-email is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := args[0]
			if err := validApp(app); err != nil {
				return err
			}
			if acct.enabled() && len(acct.Password) < 6 {
				return fmt.Errorf("--admin-password must be at least 6 characters")
			}
			return runSeed(app, acct)
		},
	}
	cmd.Flags().StringVar(&acct.Name, "admin-name", "Administrator", "admin display name")
	cmd.Flags().StringVar(&acct.Email, "admin-email", "", "create an admin account with this email")
	cmd.Flags().StringVar(&acct.Password, "admin-password", "", "password for the admin account")
	return cmd
}

func runSeed(app string, acct admin) error {
	cfg, log, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, deps, err := openStores(cfg, log)
	defer db.CloseDB()
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	switch app {
	case "mindspace":
		return seedMindspace(ctx, deps.Mongo, acct, log)
	case "artisanmart":
		return seedArtisanmart(ctx, deps.Mongo, acct, log)
	default:
		return seedPapers(ctx, deps.SQL, acct, log)
	}
}

// systemPrompts turns the built-in prompt ideas into stored prompts.
func systemPrompts() []mindmodels.Prompt {
	var out []mindmodels.Prompt
	for _, category := range ai.DefaultPromptCategories() {
		for _, idea := range ai.DefaultPrompts(category) {
			out = append(out, mindmodels.Prompt{
				Title:    idea.Title,
				Content:  idea.Content,
				Category: category,
				Tags:     []string{category},
			})
		}
	}
	return out
}

func seedMindspace(ctx context.Context, db *mongo.Database, acct admin, log *logger.Logger) error {
	prompts := mindrepo.NewMongoPromptRepository(db)
	added, err := prompts.SeedSystemPrompts(ctx, systemPrompts())
	if err != nil {
		return fmt.Errorf("seed prompts: %w", err)
	}
	log.Info("system prompts seeded", "added", added)

	if !acct.enabled() {
		return nil
	}
	users := mindrepo.NewMongoUserRepository(db)
	if _, err := users.GetUserByEmail(ctx, acct.Email); err == nil {
		log.Info("admin account already exists", "email", acct.Email)
		return nil
	} else if !errors.Is(err, mindrepo.ErrNotFound) {
		return err
	}
	hash, err := acct.hash()
	if err != nil {
		return err
	}
	user := &mindmodels.User{
		Name:        acct.Name,
		Email:       acct.Email,
		Password:    hash,
		Role:        mindmodels.RoleAdmin,
		Preferences: mindmodels.DefaultPreferences(),
		IsActive:    true,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin account created", "email", acct.Email)
	return nil
}

func seedArtisanmart(ctx context.Context, db *mongo.Database, acct admin, log *logger.Logger) error {
	if !acct.enabled() {
		log.Info("nothing to seed without --admin-email")
		return nil
	}
	users := marketrepo.NewMongoUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	hash, err := acct.hash()
	if err != nil {
		return err
	}
	err = users.Create(ctx, &marketmodels.User{Name: acct.Name, Email: acct.Email, Password: hash, Role: marketmodels.RoleAdmin})
	switch {
	case errors.Is(err, marketrepo.ErrDuplicate):
		log.Info("admin account already exists", "email", acct.Email)
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	default:
		log.Info("admin account created", "email", acct.Email)
	}
	return nil
}

func seedPapers(ctx context.Context, db *gorm.DB, acct admin, log *logger.Logger) error {
	if err := paperrepo.Migrate(db); err != nil {
		return err
	}
	added, err := paperrepo.NewGormCategoryRepository(db).Seed(ctx, papermodels.DefaultCategories)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	log.Info("categories seeded", "added", added)

	if !acct.enabled() {
		return nil
	}
	hash, err := acct.hash()
	if err != nil {
		return err
	}
	err = paperrepo.NewGormUserRepository(db).Create(ctx, &papermodels.User{
		Name: acct.Name, Email: acct.Email, Password: hash, Role: papermodels.RoleAdmin,
	})
	switch {
	case errors.Is(err, paperrepo.ErrDuplicate):
		log.Info("admin account already exists", "email", acct.Email)
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	default:
		log.Info("admin account created", "email", acct.Email)
	}
	return nil
}

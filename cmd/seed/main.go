package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/thidaswick/WorqHub/internal/access"
	"github.com/thidaswick/WorqHub/internal/model"
	"github.com/thidaswick/WorqHub/internal/repository"
	"github.com/thidaswick/WorqHub/internal/service"
	"github.com/thidaswick/WorqHub/pkg/config"
	"github.com/thidaswick/WorqHub/pkg/database"
	"github.com/thidaswick/WorqHub/pkg/logger"
	"github.com/thidaswick/WorqHub/pkg/password"
)

const demoSlug = "demo"

func main() {
	email := flag.String("email", "admin@worqhub.com", "admin email")
	pass := flag.String("password", "Admin@123", "admin password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	db, err := database.Open(&cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	repos, err := repository.New(db)
	if err != nil {
		log.Fatal("Failed to initialize repositories", zap.Error(err))
	}
	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal("Failed to initialize password hasher", zap.Error(err))
	}

	ctx := context.Background()
	tenant, err := demoTenant(ctx, repos.Tenants)
	if err != nil {
		log.Fatal("Failed to seed tenant", zap.Error(err))
	}

	normalized := service.NormalizeEmail(*email)
	if _, err := repos.Users.FindActiveByTenantEmail(ctx, tenant.ID, normalized); err == nil {
		log.Info("Admin user already exists", zap.String("email", normalized))
		return
	}

	hash, err := hasher.Hash(*pass)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}
	admin := &model.User{
		Email:        normalized,
		PasswordHash: hash,
		Name:         "Admin",
		Role:         access.RoleAdmin,
		Active:       true,
	}
	if err := repos.Users.Create(ctx, tenant.ID, admin); err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	}

	log.Info("Seed complete",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("email", admin.Email))
}

func demoTenant(ctx context.Context, tenants *repository.TenantRepository) (*model.Tenant, error) {
	all, err := tenants.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Slug != nil && *all[i].Slug == demoSlug {
			return &all[i], nil
		}
	}

	slug := demoSlug
	tenant := &model.Tenant{Name: "Demo Company", Slug: &slug, Plan: model.PlanStandard, Active: true}
	if err := tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

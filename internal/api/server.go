package api

import (
	"log"

	"github.com/SundayYogurt/directory_service/config"
	"github.com/SundayYogurt/directory_service/infra/queue"
	"github.com/SundayYogurt/directory_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/directory_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/directory_service/internal/domain"
	"github.com/SundayYogurt/directory_service/internal/helper"
	"github.com/SundayYogurt/directory_service/internal/repository"
	"github.com/SundayYogurt/directory_service/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func StartServer(cfg config.Config) {
	app := fiber.New()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	// ---------- CORS ----------
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization, token",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	logger.Info("database connected")

	// ---------- MIGRATION + SEED (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260311

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Business{},
		&domain.Role{},
		&domain.Permission{},
		&domain.RolePermission{},
		&domain.UserRole{},
		&domain.BusinessRole{},
		&domain.AuthToken{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	logger.Info("migration successful")

	seedRolesAndPermissions(db)

	// ---------- Infra ----------
	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)

	authHelper := helper.SetupAuth(cfg.AccessSecret, cfg.AccessTTL, cfg.RefreshTTL)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	userRoleRepo := repository.NewUserRoleRepository(db)
	businessRoleRepo := repository.NewBusinessRoleRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// ---------- Services ----------
	rbacSvc := services.NewRBACService(roleRepo, permRepo, userRoleRepo, businessRoleRepo)
	userSvc := services.NewUserService(userRepo, roleRepo, userRoleRepo, tokenRepo, authHelper, kafkaProducer, logger)
	businessSvc := services.NewBusinessService(businessRepo, roleRepo, businessRoleRepo, tokenRepo, authHelper, kafkaProducer, logger)

	// ---------- Guard ----------
	guard := middleware.NewGuard(authHelper, rbacSvc, middleware.DefaultRegistry(), logger)

	// ---------- Handlers ----------
	handlers.NewUserHandler(userSvc, rbacSvc).SetupRoutes(app, guard)
	handlers.NewBusinessHandler(businessSvc).SetupRoutes(app, guard)
	handlers.NewRoleHandler(rbacSvc).SetupRoutes(app, guard)
	handlers.NewDirectoryHandler(businessSvc).SetupRoutes(app, guard)

	// ---------- Consumer ----------
	if cfg.KafkaBroker != "" && cfg.KafkaGroupID != "" {
		eventHandler := services.NewAccountEventHandler(userRoleRepo, businessRoleRepo, tokenRepo, logger)
		consumer := queue.NewKafkaConsumer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaGroupID, eventHandler)
		go consumer.Listen()
	}

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	logger.Info("listening", zap.String("addr", addr))
	log.Fatal(app.Listen(addr))
}

// seedRolesAndPermissions makes sure the base roles and permission codes
// exist and that ADMIN holds everything.
func seedRolesAndPermissions(db *gorm.DB) {
	roleCodes := []string{"ADMIN", "DIRUSER", "BUSINESS"}
	for _, code := range roleCodes {
		var r domain.Role
		err := db.Where("code = ?", code).First(&r).Error
		if err == gorm.ErrRecordNotFound {
			_ = db.Create(&domain.Role{
				Code:   code,
				Name:   code,
				Status: domain.StatusActive,
			}).Error
		}
	}

	permCodes := map[string]string{
		"USRCREALL": "create any user",
		"USRLISALL": "list all users",
		"USRLISOWN": "list own user record",
		"USRDELALL": "delete any user",
		"ROLASSALL": "assign roles and permissions",
		"BURCREALL": "create any business",
		"BURLISALL": "list all businesses",
	}
	for code, description := range permCodes {
		var p domain.Permission
		err := db.Where("code = ?", code).First(&p).Error
		if err == gorm.ErrRecordNotFound {
			_ = db.Create(&domain.Permission{
				Code:        code,
				Description: description,
				Status:      domain.StatusActive,
			}).Error
		}
	}

	// ADMIN gets every seeded permission
	var admin domain.Role
	if err := db.Where("code = ?", "ADMIN").First(&admin).Error; err != nil {
		return
	}
	var perms []domain.Permission
	if err := db.Find(&perms).Error; err != nil {
		return
	}
	for _, p := range perms {
		var grant domain.RolePermission
		err := db.Where("role_id = ? AND permission_id = ?", admin.ID, p.ID).First(&grant).Error
		if err == gorm.ErrRecordNotFound {
			_ = db.Create(&domain.RolePermission{
				RoleID:       admin.ID,
				PermissionID: p.ID,
			}).Error
		}
	}
}

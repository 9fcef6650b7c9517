// container.go
package main

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/siivi-app/siivi-server/pkg/ai/llm"
	aiopenai "github.com/siivi-app/siivi-server/pkg/ai/providers/openai"
	"github.com/siivi-app/siivi-server/pkg/chat/chatapi"
	"github.com/siivi-app/siivi-server/pkg/chat/chatinfra"
	"github.com/siivi-app/siivi-server/pkg/chat/chatsrv"
	"github.com/siivi-app/siivi-server/pkg/config"
	"github.com/siivi-app/siivi-server/pkg/device/deviceapi"
	"github.com/siivi-app/siivi-server/pkg/device/devicesrv"
	"github.com/siivi-app/siivi-server/pkg/donation/donationapi"
	"github.com/siivi-app/siivi-server/pkg/donation/donationsrv"
	"github.com/siivi-app/siivi-server/pkg/draft"
	"github.com/siivi-app/siivi-server/pkg/draft/draftapi"
	"github.com/siivi-app/siivi-server/pkg/draft/draftinfra"
	"github.com/siivi-app/siivi-server/pkg/draft/draftsrv"
	"github.com/siivi-app/siivi-server/pkg/export/exportapi"
	"github.com/siivi-app/siivi-server/pkg/export/exportinfra"
	"github.com/siivi-app/siivi-server/pkg/export/exportsrv"
	"github.com/siivi-app/siivi-server/pkg/fsx"
	"github.com/siivi-app/siivi-server/pkg/fsx/fsxlocal"
	"github.com/siivi-app/siivi-server/pkg/fsx/fsxs3"
	"github.com/siivi-app/siivi-server/pkg/iam/auth"
	"github.com/siivi-app/siivi-server/pkg/iam/auth/authinfra"
	"github.com/siivi-app/siivi-server/pkg/iam/user/userinfra"
	"github.com/siivi-app/siivi-server/pkg/iam/user/usersrv"
	"github.com/siivi-app/siivi-server/pkg/knowledge/knowledgeapi"
	"github.com/siivi-app/siivi-server/pkg/knowledge/knowledgeinfra"
	"github.com/siivi-app/siivi-server/pkg/knowledge/knowledgesrv"
	"github.com/siivi-app/siivi-server/pkg/kv"
	"github.com/siivi-app/siivi-server/pkg/kv/kvredis"
	"github.com/siivi-app/siivi-server/pkg/logx"
	"github.com/siivi-app/siivi-server/pkg/mood/moodapi"
	"github.com/siivi-app/siivi-server/pkg/mood/moodinfra"
	"github.com/siivi-app/siivi-server/pkg/mood/moodsrv"
	"github.com/siivi-app/siivi-server/pkg/reminder/reminderapi"
	"github.com/siivi-app/siivi-server/pkg/reminder/reminderinfra"
	"github.com/siivi-app/siivi-server/pkg/reminder/remindersrv"
	"github.com/siivi-app/siivi-server/pkg/session/sessionapi"
	"github.com/siivi-app/siivi-server/pkg/session/sessioninfra"
	"github.com/siivi-app/siivi-server/pkg/session/sessionsrv"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB         *sqlx.DB
	Redis      *redis.Client
	KVStore    kv.Store
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	// Domain Services
	SessionService   *sessionsrv.GuestSessionService
	DeviceService    *devicesrv.DeviceLimitService
	CounterService   *donationsrv.MessageCounterService
	DraftService     *draftsrv.DraftService
	ChatService      *chatsrv.ChatService
	UserService      *usersrv.UserService
	MoodService      *moodsrv.MoodService
	ReminderService  *remindersrv.ReminderService
	KnowledgeService *knowledgesrv.KnowledgeService
	ExportService    *exportsrv.ExportService

	// API Handlers
	AuthHandlers      *auth.AuthHandlers
	SessionHandlers   *sessionapi.SessionHandlers
	DeviceHandlers    *deviceapi.DeviceHandlers
	DonationHandlers  *donationapi.DonationHandlers
	DraftHandlers     *draftapi.DraftHandlers
	ChatHandlers      *chatapi.ChatHandlers
	MoodHandlers      *moodapi.MoodHandlers
	ReminderHandlers  *reminderapi.ReminderHandlers
	KnowledgeHandlers *knowledgeapi.KnowledgeHandlers
	ExportHandlers    *exportapi.ExportHandlers

	// Middleware
	AuthMiddleware *auth.AuthMiddleware

	// Background Services
	CleanupService *sessioninfra.CleanupService
	DueService     *reminderinfra.DueService
}

// NewContainer initializes the dependency injection container
func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing dependency container...")

	c := &Container{
		Config: cfg,
	}

	c.initInfrastructure()
	c.initRepositories()

	logx.Info("✅ Container initialized successfully")
	return c
}

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database Connection
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Config.Database.Host,
		c.Config.Database.Port,
		c.Config.Database.User,
		c.Config.Database.Password,
		c.Config.Database.Name,
		c.Config.Database.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("✅ Database connected")

	// 2. Redis Connection (sessions, device limits, counters, draft queue)
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required for guest sessions)", err)
	} else {
		logx.Info("✅ Redis connected")
	}
	c.KVStore = kvredis.NewRedisStore(c.Redis, "")

	// 3. File Storage Configuration (Local or S3)
	c.initFileStorage()

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initFileStorage() {
	switch c.Config.Storage.Mode {
	case "s3":
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(c.Config.Storage.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(cfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, c.Config.Storage.AWSBucket, "")
		logx.Infof("✅ S3 file system configured (bucket: %s, region: %s)", c.Config.Storage.AWSBucket, c.Config.Storage.AWSRegion)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(c.Config.Storage.LocalPath)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("✅ Local file system configured (path: %s)", localFS.GetBasePath())

	default:
		logx.Fatalf("Unknown STORAGE_MODE: %s (use 'local' or 's3')", c.Config.Storage.Mode)
	}
}

func (c *Container) initRepositories() {
	logx.Info("🗄️  Initializing repositories and services...")

	// --- Repositories ---
	guestRepo := sessioninfra.NewPostgresGuestRepository(c.DB)
	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	conversationRepo := chatinfra.NewPostgresConversationRepository(c.DB)
	messageRepo := chatinfra.NewPostgresMessageRepository(c.DB)
	draftRepo := draftinfra.NewPostgresDraftRepository(c.DB)
	moodRepo := moodinfra.NewPostgresMoodRepository(c.DB)
	reminderRepo := reminderinfra.NewPostgresReminderRepository(c.DB)
	knowledgeRepo := knowledgeinfra.NewPostgresKnowledgeRepository(c.DB)
	exportRepo := exportinfra.NewPostgresExportRepository(c.DB)

	// --- Infrastructure Services ---

	// Password Service
	passwordSvc := authinfra.NewBcryptPasswordService(c.Config.Auth.Password.BcryptCost)

	// Token Service
	tokenSvc := auth.NewJWTServiceFromConfig(&c.Config.Auth.JWT)

	// AI Model Gateway
	provider := aiopenai.NewOpenAIProvider(
		c.Config.AI.APIKey,
		c.Config.AI.BaseURL,
		c.Config.AI.ImageModel,
	)
	model := llm.NewClient(provider)

	// --- Domain Services ---
	c.SessionService = sessionsrv.NewGuestSessionService(
		c.KVStore,
		guestRepo,
		guestRepo,
		sessionsrv.Config{
			SessionDuration: c.Config.Limits.GuestSessionDuration,
			MessageLimit:    c.Config.Limits.GuestMessageLimit,
		},
	)

	c.DeviceService = devicesrv.NewDeviceLimitService(
		c.KVStore,
		devicesrv.Config{
			MaxAccounts:          c.Config.Limits.MaxAccountsPerDevice,
			GuestSessionCooldown: c.Config.Limits.GuestSessionCooldown,
		},
	)

	c.CounterService = donationsrv.NewMessageCounterService(
		c.KVStore,
		c.Config.Limits.DonationInterval,
	)

	c.DraftService = draftsrv.NewDraftService(
		draftRepo,
		draftinfra.NewKVQueue(c.KVStore),
		draft.NewSwitchMonitor(true),
	)

	c.ChatService = chatsrv.NewChatService(
		conversationRepo,
		messageRepo,
		model,
		c.SessionService,
		c.CounterService,
		c.FileSystem,
		chatsrv.Config{
			ChatModel:   c.Config.AI.ChatModel,
			Temperature: float32(c.Config.AI.Temperature),
			MaxTokens:   c.Config.AI.MaxTokens,
		},
	)

	c.UserService = usersrv.NewUserService(
		userRepo,
		passwordSvc,
		tokenSvc,
		c.DeviceService,
	)

	c.MoodService = moodsrv.NewMoodService(moodRepo)
	c.ReminderService = remindersrv.NewReminderService(reminderRepo)
	c.KnowledgeService = knowledgesrv.NewKnowledgeService(knowledgeRepo)

	c.ExportService = exportsrv.NewExportService(
		exportRepo,
		exportRepo,
		userRepo,
		c.CounterService,
		c.FileSystem,
	)

	// --- API Handlers ---
	c.AuthHandlers = auth.NewAuthHandlers(c.UserService)
	c.SessionHandlers = sessionapi.NewSessionHandlers(c.SessionService, c.DeviceService)
	c.DeviceHandlers = deviceapi.NewDeviceHandlers(c.DeviceService)
	c.DonationHandlers = donationapi.NewDonationHandlers(c.CounterService)
	c.DraftHandlers = draftapi.NewDraftHandlers(c.DraftService)
	c.ChatHandlers = chatapi.NewChatHandlers(c.ChatService)
	c.MoodHandlers = moodapi.NewMoodHandlers(c.MoodService)
	c.ReminderHandlers = reminderapi.NewReminderHandlers(c.ReminderService)
	c.KnowledgeHandlers = knowledgeapi.NewKnowledgeHandlers(c.KnowledgeService)
	c.ExportHandlers = exportapi.NewExportHandlers(c.ExportService)

	// --- Middleware ---
	c.AuthMiddleware = auth.NewAuthMiddleware(tokenSvc, c.SessionService)

	// --- Background Services ---
	c.CleanupService = sessioninfra.NewCleanupService(
		guestRepo,
		guestRepo,
		c.Config.Limits.GuestCleanupInterval,
	)
	c.DueService = reminderinfra.NewDueService(
		reminderRepo,
		reminderinfra.NewLogNotifier(),
		c.Config.Limits.ReminderTickInterval,
	)

	logx.Info("✅ All services and handlers initialized")
}

// StartBackgroundServices starts background workers
func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	// Expired guest session sweeper
	go c.CleanupService.Start(ctx)
	logx.Info("✅ Guest session cleanup service started")

	// Due reminder checker
	go c.DueService.Start(ctx)
	logx.Info("✅ Reminder due-check service started")
}

// Cleanup closes all connections and stops workers
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	// Close database connection
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("✅ Database connection closed")
		}
	}

	// Close Redis connection
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup completed")
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/maze-solver/api"
	api_i "github.com/beka-birhanu/maze-solver/api/i"
	"github.com/beka-birhanu/maze-solver/api/identity"
	mazeapi "github.com/beka-birhanu/maze-solver/api/maze"
	"github.com/beka-birhanu/maze-solver/config"
	pb "github.com/beka-birhanu/maze-solver/game/pb_encoder"
	logger "github.com/beka-birhanu/maze-solver/infrastruture/log"
	"github.com/beka-birhanu/maze-solver/infrastruture/repo"
	"github.com/beka-birhanu/maze-solver/infrastruture/sortedstorage"
	"github.com/beka-birhanu/maze-solver/infrastruture/token"
	"github.com/beka-birhanu/maze-solver/service"
	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const leaderboardTTL = 7 * 24 * time.Hour

// Global variables for dependencies
var (
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	runRepo        i.RunRepo
	leaderboard    i.Leaderboard
	sessionManager *service.SessionManager
	jwtTokenizer   i.Tokenizer
	mazeController api_i.Controller
	router         *api.Router
	appLogger      i.Logger
)

func newLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	if config.Envs.DBHost == "" {
		appLogger.Warning("DB_HOST not set, run history disabled")
		return
	}

	uri := fmt.Sprintf("mongodb://%s:%v", config.Envs.DBHost, config.Envs.DBPort)
	if config.Envs.DBUser != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRunRepo(client *mongo.Client) {
	if client == nil {
		return
	}
	runRepo = repo.NewRunRepo(client, config.Envs.DBName, "runs")
	appLogger.Info("Run repository initialized")
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		appLogger.Warning("REDIS_ADDR not set, leaderboard disabled")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initLeaderboard(client *redis.Client) {
	if client == nil {
		return
	}
	var err error
	leaderboard, err = sortedstorage.NewRedisLeaderboard(client, int64(config.Envs.LeaderboardSize), leaderboardTTL)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard initialized")
}

func initSessionManager() {
	var err error
	sessionManager, err = service.NewSessionManager(&service.Config{
		RunRepo:      runRepo,
		Leaderboard:  leaderboard,
		Logger:       newLogger("SESSION-MANAGER", config.ColorCyan),
		MaxDimension: config.Envs.MaxDimension,
		Speed:        config.Envs.DefaultSpeed,
		TickUnit:     time.Duration(config.Envs.TickUnitMS) * time.Millisecond,
		SessionTTL:   time.Duration(config.Envs.SessionTTLMin) * time.Minute,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initMazeController() {
	var err error
	mazeController, err = mazeapi.NewController(mazeapi.Config{
		Sessions:    sessionManager,
		Tokenizer:   jwtTokenizer,
		RunRepo:     runRepo,
		Leaderboard: leaderboard,
		Encoder:     &pb.Protobuf{},
		DefaultRows: config.Envs.DefaultRows,
		DefaultCols: config.Envs.DefaultCols,
		TokenTTL:    time.Duration(config.Envs.SessionTTLMin) * time.Minute,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating maze controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Maze controller initialized")
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Mode:                    config.Envs.GinMode,
		Controllers:             []api_i.Controller{mazeController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var err error
	appLogger, err = logger.New("APP", config.ColorGreen, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating app logger: %v\n", err)
		os.Exit(1)
	}

	initMongo(ctx)
	if mongoClient != nil {
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}
	initRunRepo(mongoClient)

	initRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	initLeaderboard(redisClient)

	initSessionManager()
	defer sessionManager.StopAll()

	initJWTTokenizer()
	initMazeController()
	initRouter(jwtTokenizer)

	// Run HTTP server
	if err := router.Run(); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		os.Exit(1)
	}
}

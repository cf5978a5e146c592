package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/gridnav/api"
	api_i "github.com/beka-birhanu/gridnav/api/i"
	"github.com/beka-birhanu/gridnav/api/identity"
	simulationapi "github.com/beka-birhanu/gridnav/api/simulation"
	"github.com/beka-birhanu/gridnav/config"
	"github.com/beka-birhanu/gridnav/grid"
	logger "github.com/beka-birhanu/gridnav/infrastruture/log"
	"github.com/beka-birhanu/gridnav/infrastruture/repo"
	"github.com/beka-birhanu/gridnav/infrastruture/sortedstorage"
	"github.com/beka-birhanu/gridnav/infrastruture/token"
	"github.com/beka-birhanu/gridnav/navigator"
	"github.com/beka-birhanu/gridnav/oracle"
	"github.com/beka-birhanu/gridnav/service"
	"github.com/beka-birhanu/gridnav/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const operatorTokenLifetime = 30 * 24 * time.Hour

// Global variables for dependencies
var (
	envs                 config.Config
	mongoClient          *mongo.Client
	redisClient          *redis.Client
	sharedGrid           *grid.Grid
	decisionOracle       navigator.Oracle
	runRepo              i.RunRepo
	runQueue             i.SortedQueue
	simulation           *service.Simulation
	simulationController api_i.Controller
	jwtTokenizer         i.Tokenizer
	router               *api.Router
	appLogger            *log.Logger
)

func fatal(format string, args ...any) {
	logger.Error(appLogger, format, args...)
	os.Exit(1)
}

func newLogger(component, color string) *log.Logger {
	l, err := logger.New(component, color, os.Stdout)
	if err != nil {
		fatal("Creating %s logger: %v", component, err)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", envs.DBUser, envs.DBPassword, envs.DBHost, envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		fatal("Failed to connect to MongoDB: %v", err)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		fatal("MongoDB ping failed: %v", err)
	}
	logger.Info(appLogger, "Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     envs.RedisAddr,
		Password: envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fatal("Redis ping failed: %v", err)
	}
	logger.Info(appLogger, "Connected to Redis")
}

func initRunRepo(client *mongo.Client) {
	runRepo = repo.NewRunRepo(client, envs.DBName, "runs")
	logger.Info(appLogger, "Run repository initialized")
}

func initRunQueue(client *redis.Client) {
	var err error
	runQueue, err = sortedstorage.NewRedisSortedQueue(client, envs.QueueTTL)
	if err != nil {
		fatal("Creating run queue: %v", err)
	}
	logger.Info(appLogger, "Run queue initialized")
}

func initGrid() {
	seed := envs.GridSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var err error
	sharedGrid, err = grid.Generate(grid.Config{
		XSize:       envs.GridX,
		YSize:       envs.GridY,
		Probability: envs.GridProbability,
		Rand:        rand.New(rand.NewSource(seed)),
		Open:        []grid.Coordinate{{X: 0, Y: 0}, {X: envs.GridX - 1, Y: envs.GridY - 1}},
	})
	if err != nil {
		fatal("Generating grid: %v", err)
	}

	stats := sharedGrid.Stats()
	logger.Info(appLogger, "Grid generated: %dx%d seed=%d blocked=%d open=%d", stats.XSize, stats.YSize, seed, stats.Blocked, stats.Open)
}

func initOracle(ctx context.Context) {
	oracleLogger := newLogger("ORACLE", config.ColorMagenta)

	if envs.OracleURL == "" {
		decisionOracle = oracle.NewManhattan()
		logger.Warn(appLogger, "ORACLE_URL not set, using the manhattan oracle")
	} else {
		remote, err := oracle.NewRemote(ctx, oracle.RemoteConfig{
			URL:     envs.OracleURL,
			Timeout: time.Duration(envs.OracleTimeout) * time.Millisecond,
			Logger:  oracleLogger,
		})
		if err != nil {
			fatal("Connecting to model server: %v", err)
		}
		decisionOracle = remote
	}

	if envs.OracleCacheTTL > 0 {
		cached, err := oracle.NewCached(oracle.CachedConfig{
			Next:   decisionOracle,
			Client: redisClient,
			TTL:    time.Duration(envs.OracleCacheTTL) * time.Second,
			Logger: oracleLogger,
		})
		if err != nil {
			fatal("Creating prediction cache: %v", err)
		}
		decisionOracle = cached
	}

	if envs.OracleSerialize {
		decisionOracle = oracle.NewSerialized(decisionOracle)
	}
	logger.Info(appLogger, "Oracle initialized")
}

func sensing() navigator.Sensing {
	switch envs.Sensing {
	case "neighbours4":
		return navigator.SenseNeighbours4
	case "blindfolded":
		return navigator.SenseBlindfolded
	default:
		fatal("Unknown SENSING %q", envs.Sensing)
		return navigator.SenseNeighbours4
	}
}

func initSimulation() {
	var err error
	simulation, err = service.NewSimulation(service.SimulationConfig{
		Grid:        sharedGrid,
		Oracle:      decisionOracle,
		Queue:       runQueue,
		Repo:        runRepo,
		Logger:      newLogger("SIMULATION", config.ColorBlue),
		Sensing:     sensing(),
		Workers:     envs.Workers,
		BatchSize:   int64(envs.BatchSize),
		MaxSteps:    envs.MaxSteps,
		Probability: envs.GridProbability,
	})
	if err != nil {
		fatal("Creating simulation service: %v", err)
	}
	simulationController = simulationapi.NewController(simulation)
	logger.Info(appLogger, "Simulation service initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
	logger.Info(appLogger, "JWT Tokenizer initialized")
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", envs.HostIP, envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{simulationController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	logger.Info(appLogger, "Router initialized")
}

// printOperatorToken mints a bearer token for the protected routes: `gridnav token <operator>`.
func printOperatorToken(operator string) {
	tok, err := jwtTokenizer.Generate(map[string]any{"operator": operator}, operatorTokenLifetime)
	if err != nil {
		fatal("Generating token: %v", err)
	}
	fmt.Println(tok)
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	envs = config.Load()
	gin.SetMode(envs.GinMode)
	initJWTTokenizer()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		operator := "operator"
		if len(os.Args) > 2 {
			operator = os.Args[2]
		}
		printOperatorToken(operator)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	initMongo(setupCtx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	initRedis(setupCtx)
	defer redisClient.Close()

	initRunRepo(mongoClient)
	initRunQueue(redisClient)
	initGrid()
	initOracle(setupCtx)
	initSimulation()
	initRouter(jwtTokenizer)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		err := simulation.Run(ctx, time.Duration(envs.PollInterval)*time.Millisecond)
		logger.Info(appLogger, "Simulation worker stopped: %v", err)
	}()

	// The first signal starts a graceful shutdown; a second one kills the process.
	go func() {
		<-ctx.Done()
		stop()
		logger.Info(appLogger, "Shutting down")
	}()

	// Run HTTP server
	if err := router.Serve(ctx); err != nil {
		fatal("Starting server: %v", err)
	}
	<-workerDone
}

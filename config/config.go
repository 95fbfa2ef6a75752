package config

import (
	"context"
	"time"

	"cellscope/filestore"
	"cellscope/services/disk"
	"cellscope/services/gcstorage"
	"cellscope/services/inference"
	serviceS3 "cellscope/services/s3"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DEVELOPMENT = "development"
	PRODUCTION  = "production"

	StoreBackendMongoDB = "mongodb"
	StoreBackendMemory  = "memory"

	FileStoreBackendS3   = "s3"
	FileStoreBackendGCS  = "gcs"
	FileStoreBackendDisk = "disk"

	// Analyze endpoints selected by deployment environment when none is
	// configured explicitly.
	prodAnalyzeEndpoint = "https://ptsd-model-api.onrender.com/analyze"
	devAnalyzeEndpoint  = "http://127.0.0.1:6000/analyze"
)

type Configuration struct {
	AppName string
	Env     string
	Port    int

	APPDomain string

	MongoURI     string
	MongoDBName  string
	StoreBackend string

	FileStoreBackend string
	AWSRegion        string
	BucketName       string
	GCSBucketName    string
	DiskStoreDir     string
	DiskStoreBaseURL string

	AnalyzeEndpoint   string
	AnalyzeTimeoutSec int

	StagingDir string
}

// envOverrides are deployment values injected through the process
// environment (CELLSCOPE_*), taking precedence over flags.
type envOverrides struct {
	MongoURI        string `envconfig:"MONGO_URI"`
	MongoDBName     string `envconfig:"MONGO_DB_NAME"`
	AWSRegion       string `envconfig:"AWS_REGION"`
	BucketName      string `envconfig:"AWS_BUCKET_NAME"`
	GCSBucketName   string `envconfig:"GCS_BUCKET_NAME"`
	AnalyzeEndpoint string `envconfig:"ANALYZE_ENDPOINT"`
}

type Services struct {
	mongoClient *mongo.Client

	Db        *mongo.Database
	FileStore filestore.FileManager
	Analyzer  inference.Analyzer
}

var configuration *Configuration = nil
var services *Services = nil

func initLogging() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

func applyEnvOverrides(config *Configuration) error {
	var env envOverrides
	if err := envconfig.Process("cellscope", &env); err != nil {
		return err
	}

	if env.MongoURI != "" {
		config.MongoURI = env.MongoURI
	}
	if env.MongoDBName != "" {
		config.MongoDBName = env.MongoDBName
	}
	if env.AWSRegion != "" {
		config.AWSRegion = env.AWSRegion
	}
	if env.BucketName != "" {
		config.BucketName = env.BucketName
	}
	if env.GCSBucketName != "" {
		config.GCSBucketName = env.GCSBucketName
	}
	if env.AnalyzeEndpoint != "" {
		config.AnalyzeEndpoint = env.AnalyzeEndpoint
	}
	return nil
}

func initServices(config *Configuration) error {
	services = &Services{}

	if config.StoreBackend != StoreBackendMemory {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI))
		if err != nil {
			log.WithError(err).Error("Failed Db Initialization")
			return err
		}
		if err := client.Ping(ctx, nil); err != nil {
			log.WithError(err).Error("Failed Db ping")
			return err
		}

		services.mongoClient = client
		services.Db = client.Database(config.MongoDBName)

		if err := ensureIndexes(ctx, services.Db); err != nil {
			log.WithError(err).Error("Failed creating indexes")
			return err
		}
		log.Info("Db Service initialized")
	}

	fileStore, err := newFileStore(config)
	if err != nil {
		return err
	}
	services.FileStore = fileStore

	services.Analyzer = inference.NewClient(config.AnalyzeEndpoint,
		time.Duration(config.AnalyzeTimeoutSec)*time.Second)

	return nil
}

func newFileStore(config *Configuration) (filestore.FileManager, error) {
	switch config.FileStoreBackend {
	case FileStoreBackendS3:
		return serviceS3.New(config.BucketName, config.AWSRegion), nil
	case FileStoreBackendGCS:
		return gcstorage.New(config.GCSBucketName)
	case FileStoreBackendDisk:
		return disk.New(config.DiskStoreDir, config.DiskStoreBaseURL), nil
	}
	return nil, errors.Errorf("unknown file store backend %q", config.FileStoreBackend)
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := true

	_, err := db.Collection("datasets").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "user", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	return err
}

// Init initializes configuration and service connections. To be called
// once at process start; services are reused across requests after that.
func Init(config *Configuration) error {
	configuration = config

	if err := applyEnvOverrides(configuration); err != nil {
		return err
	}

	if configuration.AnalyzeEndpoint == "" {
		if IsProduction() {
			configuration.AnalyzeEndpoint = prodAnalyzeEndpoint
		} else {
			configuration.AnalyzeEndpoint = devAnalyzeEndpoint
		}
	}

	initLogging()
	return initServices(configuration)
}

// InitTestServices wires the given configuration and services directly,
// skipping connection setup. For tests.
func InitTestServices(config *Configuration, testServices *Services) {
	configuration = config
	services = testServices
	initLogging()
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}

func IsDevelopment() bool {
	return configuration.Env == DEVELOPMENT
}

func IsProduction() bool {
	return configuration.Env == PRODUCTION
}

package main

import (
	"flag"
	"strconv"

	C "cellscope/config"
	H "cellscope/handler"
	mid "cellscope/middleware"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ./app --env=development --api_http_port=8080 --app_domain=localhost:3000 --mongo_uri=mongodb://localhost:27017 --db_name=cellscope --file_store=disk --disk_store_dir=/usr/local/var/cellscope/files
func main() {

	env := flag.String("env", "development", "")
	port := flag.Int("api_http_port", 8080, "")
	appDomain := flag.String("app_domain", "localhost:3000", "")

	mongoURI := flag.String("mongo_uri", "mongodb://localhost:27017", "")
	dbName := flag.String("db_name", "cellscope", "")
	storeBackend := flag.String("store", C.StoreBackendMongoDB, "Dataset store backend. mongodb or memory.")

	fileStoreBackend := flag.String("file_store", C.FileStoreBackendDisk, "File store backend. s3, gcs or disk.")
	awsRegion := flag.String("aws_region", "us-east-1", "")
	bucketName := flag.String("bucket_name", "cellscope-uploads", "")
	gcsBucketName := flag.String("gcs_bucket_name", "cellscope-uploads", "")
	diskStoreDir := flag.String("disk_store_dir", "/usr/local/var/cellscope/files", "")
	diskStoreBaseURL := flag.String("disk_store_base_url", "http://localhost:8080/files", "")

	analyzeEndpoint := flag.String("analyze_endpoint", "", "Inference service URL. Defaults by env when empty.")
	analyzeTimeout := flag.Int("analyze_timeout", 120, "Inference request timeout in seconds.")

	stagingDir := flag.String("staging_dir", "", "Dir for staging uploads before analysis. Defaults to the OS temp dir.")
	flag.Parse()

	config := &C.Configuration{
		AppName:          "app_server",
		Env:              *env,
		Port:             *port,
		APPDomain:        *appDomain,
		MongoURI:         *mongoURI,
		MongoDBName:      *dbName,
		StoreBackend:     *storeBackend,
		FileStoreBackend: *fileStoreBackend,
		AWSRegion:        *awsRegion,
		BucketName:       *bucketName,
		GCSBucketName:    *gcsBucketName,
		DiskStoreDir:     *diskStoreDir,
		DiskStoreBaseURL: *diskStoreBaseURL,

		AnalyzeEndpoint:   *analyzeEndpoint,
		AnalyzeTimeoutSec: *analyzeTimeout,

		StagingDir: *stagingDir,
	}

	// Initialize configs and connections.
	err := C.Init(config)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize.")
		return
	}

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Root middleware for cors.
	r.Use(mid.CustomCors())
	r.Use(mid.RequestIdGenerator())
	r.Use(mid.Logger())
	r.Use(mid.Recovery())

	// Initialize routes.
	H.InitAppRoutes(r)
	r.Run(":" + strconv.Itoa(C.GetConfig().Port))
}

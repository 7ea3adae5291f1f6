package main

import (
	"log"

	"github.com/dhanavadh/formbuilder-backend/internal"
	"github.com/dhanavadh/formbuilder-backend/internal/config"
	"github.com/dhanavadh/formbuilder-backend/internal/handlers"
	"github.com/dhanavadh/formbuilder-backend/internal/services"
	"github.com/dhanavadh/formbuilder-backend/internal/storage"
	"github.com/dhanavadh/formbuilder-backend/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	var gateway storage.Gateway
	if cfg.Storage.GCSBucketName != "" {
		gcsGateway, err := storage.NewGCSGateway(cfg.Storage.GCSBucketName, cfg.Storage.GCSCredentialsPath)
		if err != nil {
			log.Fatal("Failed to initialize GCS gateway:", err)
		}
		defer gcsGateway.Close()
		gateway = gcsGateway
		log.Println("Using GCS persistence gateway")
	} else {
		boltGateway, err := storage.NewBoltGateway(cfg.Storage.BoltPath())
		if err != nil {
			log.Fatal("Failed to initialize bolt gateway:", err)
		}
		defer boltGateway.Close()
		gateway = boltGateway
		log.Printf("Using bolt persistence gateway at %s", cfg.Storage.BoltPath())
	}

	formStore, err := store.New(gateway)
	if err != nil {
		// The store stays usable with an empty collection.
		log.Printf("Warning: could not load saved forms: %v", err)
	}

	builderHandler := handlers.NewBuilderHandler(formStore)
	formsHandler := handlers.NewFormsHandler(formStore)
	previewHandler := handlers.NewPreviewHandler(formStore)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	{
		api.GET("/builder", builderHandler.GetState)
		api.PUT("/builder/title", builderHandler.SetTitle)
		api.PUT("/builder/description", builderHandler.SetDescription)
		api.POST("/builder/fields", builderHandler.AddField)
		api.PATCH("/builder/fields/:id", builderHandler.UpdateField)
		api.DELETE("/builder/fields/:id", builderHandler.DeleteField)
		api.POST("/builder/fields/:id/duplicate", builderHandler.DuplicateField)
		api.PUT("/builder/fields/order", builderHandler.ReorderFields)
		api.PUT("/builder/selection", builderHandler.SetSelectedField)
		api.POST("/builder/save", builderHandler.SaveForm)
		api.POST("/builder/new", builderHandler.NewForm)

		api.GET("/forms", formsHandler.GetAll)
		api.GET("/forms/:id", formsHandler.GetByID)
		api.POST("/forms/:id/load", formsHandler.Load)
		api.DELETE("/forms/:id", formsHandler.Delete)

		api.POST("/preview/check", previewHandler.Check)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
	}

	// Submission persistence is optional; it needs a configured MySQL
	// database.
	if cfg.Database.DBName != "" {
		if err := internal.InitDB(cfg); err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer internal.CloseDB()

		submissionService := services.NewSubmissionService()
		submissionHandler := handlers.NewSubmissionHandler(submissionService, formStore)

		api.POST("/forms/:id/submissions", submissionHandler.Submit)
		api.GET("/forms/:id/submissions", submissionHandler.GetByFormID)
		api.GET("/submissions/:id", submissionHandler.GetByID)
		api.DELETE("/submissions/:id", submissionHandler.Delete)
	} else {
		log.Println("DB_NAME not set, submission persistence disabled")
	}

	log.Printf("Server starting on :%s", cfg.Server.Port)
	r.Run(":" + cfg.Server.Port)
}

package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/taxproc/tax-document-processor/client"
	"github.com/taxproc/tax-document-processor/config"
	"github.com/taxproc/tax-document-processor/handler"
	"github.com/taxproc/tax-document-processor/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadConfig()

	// Tesseract v5 reads its data path from the environment as well.
	os.Setenv("TESSDATA_PREFIX", cfg.TessdataPrefix)

	tesseractClient := client.NewTesseractClient(cfg.TessdataPrefix)
	pdfProcessor := service.NewPDFProcessor()

	var extractor service.FieldExtractor
	if cfg.OpenAIAPIKey != "" {
		extractor = client.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout, logger)
	} else {
		logger.Warn("openai api key not set, document extraction will be unavailable")
	}

	parserService := service.NewParserService(pdfProcessor, tesseractClient, extractor, cfg.ProcessConcurrency, logger)
	filingHandler := handler.NewFilingHandler(parserService, cfg.F1040TemplatePath, logger)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Tax Document Processor",
		})
	})

	api := router.Group("/api/v1")
	{
		filings := api.Group("/filings")
		{
			filings.POST("/process", filingHandler.ProcessForms)
		}
	}

	logger.Info("starting tax document processor", "port", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

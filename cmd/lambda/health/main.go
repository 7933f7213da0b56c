// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"voice-call-relay/internal/app"
	"voice-call-relay/internal/config"
	"voice-call-relay/internal/handlers"
	"voice-call-relay/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	relay := app.New(context.Background(), cfg, utils.GetLogger())
	handler := handlers.NewHealthHandler(relay.Agent, cfg.Stage)

	// Start Lambda
	lambda.Start(handlers.NewLambdaAdapter(handler).Handle)
}
